// Package store defines the persistence interfaces the core depends on.
// Implementations live in the memory and postgres subpackages.
package store

import (
	"context"
	"errors"

	"github.com/docuvault/docuvault/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// DocumentEmbedding pairs a stored embedding blob with its document, the
// unit the search engine scans.
type DocumentEmbedding struct {
	Document models.Document
	Vector   []byte
}

// DocumentStore persists documents. Deleting a document also deletes its
// embedding; the two share a lifetime.
type DocumentStore interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (models.Document, error)
	UpdateDocument(ctx context.Context, doc *models.Document) error
	DeleteDocument(ctx context.Context, id string) error
	// ListDocuments returns documents newest first.
	ListDocuments(ctx context.Context, limit, offset int) ([]models.Document, error)
}

// EmbeddingStore persists one vector blob per document.
type EmbeddingStore interface {
	// UpsertEmbedding creates or replaces the document's embedding.
	UpsertEmbedding(ctx context.Context, emb models.Embedding) error
	GetEmbedding(ctx context.Context, documentID string) (models.Embedding, error)
	// ListEmbeddings returns every stored embedding joined with its
	// document, in a stable iteration order.
	ListEmbeddings(ctx context.Context) ([]DocumentEmbedding, error)
}

// AccessLogStore appends and lists user action records.
type AccessLogStore interface {
	AppendAccessLog(ctx context.Context, entry models.AccessLog) error
	// ListAccessLogs returns entries newest first.
	ListAccessLogs(ctx context.Context, limit int) ([]models.AccessLog, error)
}

// ChatSessionStore persists chat sessions and their histories.
type ChatSessionStore interface {
	CreateSession(ctx context.Context, session *models.ChatSession) error
	GetSession(ctx context.Context, id string) (models.ChatSession, error)
	UpdateSession(ctx context.Context, session *models.ChatSession) error
}

// Store is the full persistence surface consumed by the services.
type Store interface {
	DocumentStore
	EmbeddingStore
	AccessLogStore
	ChatSessionStore
}
