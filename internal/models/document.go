package models

import (
	"time"
)

// FileType is the tag recorded for an uploaded file, derived from its extension.
type FileType string

const (
	FileTypePDF   FileType = "pdf"
	FileTypeDocx  FileType = "docx"
	FileTypeDoc   FileType = "doc"
	FileTypeTxt   FileType = "txt"
	FileTypeCSV   FileType = "csv"
	FileTypeOther FileType = "other"
)

// Category labels form the fixed candidate set for zero-shot classification.
// CategoryUnknown doubles as the default before processing completes.
const (
	CategoryFinance   = "Finance"
	CategoryHR        = "HR"
	CategoryLegal     = "Legal"
	CategoryContracts = "Contracts"
	CategoryTech      = "Technical Reports"
	CategoryInvoices  = "Invoices"
	CategoryUnknown   = "Unknown"
)

// Categories lists every candidate label in classification order.
var Categories = []string{
	CategoryFinance,
	CategoryHR,
	CategoryLegal,
	CategoryContracts,
	CategoryTech,
	CategoryInvoices,
	CategoryUnknown,
}

// Entity is a named-entity span recognized in the document text.
// Entities keep their order of appearance and are not de-duplicated.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Document carries the uploaded file reference and the fields derived by the
// processing pipeline. The pipeline mutates a Document exactly once, right
// after creation; later edits belong to the CRUD surface.
type Document struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	FileType   FileType  `json:"fileType"`
	Author     string    `json:"author,omitempty"`
	Date       string    `json:"date,omitempty"` // YYYY-MM-DD when detected
	FileKey    string    `json:"fileKey"`
	Summary    string    `json:"summary,omitempty"`
	Entities   []Entity  `json:"entities,omitempty"`
	UploaderID string    `json:"uploaderId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Embedding is owned 1:1 by a Document and holds its semantic vector in the
// opaque encoding of internal/vector. Deleted together with its document.
type Embedding struct {
	DocumentID string `json:"documentId"`
	Vector     []byte `json:"-"`
}

// AccessLog records a user action against a document.
type AccessLog struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	DocumentID string    `json:"documentId,omitempty"`
	Action     string    `json:"action"` // upload, view, update, delete, chat
	Timestamp  time.Time `json:"timestamp"`
}

// ChatMessage is one turn of a chat session history.
type ChatMessage struct {
	Role string `json:"role"` // "user" or "bot"
	Text string `json:"text"`
}

// ChatSession binds a user to a document for summary-grounded Q&A.
// SummaryVector is the encoded embedding of the document summary, computed
// when the session is created.
type ChatSession struct {
	ID            string        `json:"sessionId"`
	UserID        string        `json:"userId"`
	DocumentID    string        `json:"documentId"`
	SummaryVector []byte        `json:"-"`
	History       []ChatMessage `json:"history"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}
