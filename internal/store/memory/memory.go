// Package memory is an in-process store used for tests and single-node
// development runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/docuvault/docuvault/internal/models"
	"github.com/docuvault/docuvault/internal/store"
)

// Store keeps everything in maps guarded by a single RWMutex. Embedding
// iteration order follows document insertion order so scans are stable.
type Store struct {
	mu sync.RWMutex

	documents  map[string]models.Document
	embeddings map[string][]byte
	docOrder   []string
	logs       []models.AccessLog
	sessions   map[string]models.ChatSession
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		documents:  make(map[string]models.Document),
		embeddings: make(map[string][]byte),
		sessions:   make(map[string]models.ChatSession),
	}
}

func (s *Store) CreateDocument(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	s.docOrder = append(s.docOrder, doc.ID)
	return nil
}

func (s *Store) GetDocument(ctx context.Context, id string) (models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return models.Document{}, store.ErrNotFound
	}
	return doc, nil
}

func (s *Store) UpdateDocument(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[doc.ID]; !ok {
		return store.ErrNotFound
	}
	s.documents[doc.ID] = *doc
	return nil
}

func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.documents, id)
	delete(s.embeddings, id)
	for i, docID := range s.docOrder {
		if docID == id {
			s.docOrder = append(s.docOrder[:i], s.docOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) ListDocuments(ctx context.Context, limit, offset int) ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]models.Document, 0, len(s.docOrder))
	for _, id := range s.docOrder {
		docs = append(docs, s.documents[id])
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	if offset >= len(docs) {
		return nil, nil
	}
	docs = docs[offset:]
	if limit > 0 && limit < len(docs) {
		docs = docs[:limit]
	}
	return docs, nil
}

func (s *Store) UpsertEmbedding(ctx context.Context, emb models.Embedding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[emb.DocumentID]; !ok {
		return store.ErrNotFound
	}
	vec := make([]byte, len(emb.Vector))
	copy(vec, emb.Vector)
	s.embeddings[emb.DocumentID] = vec
	return nil
}

func (s *Store) GetEmbedding(ctx context.Context, documentID string) (models.Embedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vec, ok := s.embeddings[documentID]
	if !ok {
		return models.Embedding{}, store.ErrNotFound
	}
	return models.Embedding{DocumentID: documentID, Vector: vec}, nil
}

func (s *Store) ListEmbeddings(ctx context.Context) ([]store.DocumentEmbedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.DocumentEmbedding, 0, len(s.embeddings))
	for _, id := range s.docOrder {
		vec, ok := s.embeddings[id]
		if !ok {
			continue
		}
		out = append(out, store.DocumentEmbedding{Document: s.documents[id], Vector: vec})
	}
	return out, nil
}

func (s *Store) AppendAccessLog(ctx context.Context, entry models.AccessLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
	return nil
}

func (s *Store) ListAccessLogs(ctx context.Context, limit int) ([]models.AccessLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AccessLog, 0, len(s.logs))
	for i := len(s.logs) - 1; i >= 0; i-- {
		out = append(out, s.logs[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) CreateSession(ctx context.Context, session *models.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = cloneSession(*session)
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (models.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return models.ChatSession{}, store.ErrNotFound
	}
	return cloneSession(session), nil
}

func (s *Store) UpdateSession(ctx context.Context, session *models.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; !ok {
		return store.ErrNotFound
	}
	s.sessions[session.ID] = cloneSession(*session)
	return nil
}

func cloneSession(session models.ChatSession) models.ChatSession {
	history := make([]models.ChatMessage, len(session.History))
	copy(history, session.History)
	session.History = history
	return session
}
