// Package chat implements summary-grounded question answering. A session
// binds a user to one document; every answer is generated from that
// document's summary, never the full text.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/docuvault/docuvault/internal/models"
	"github.com/docuvault/docuvault/internal/nlp"
	"github.com/docuvault/docuvault/internal/store"
	"github.com/docuvault/docuvault/internal/vector"
	"github.com/docuvault/docuvault/pkg/logger"
)

// Apology is the fixed fallback answer when generation fails. Callers depend
// on this exact string, treat it as part of the API.
const Apology = "Sorry, I couldn't generate an answer at this time."

var (
	// ErrSummaryMissing rejects sessions on documents that have not been
	// summarized yet.
	ErrSummaryMissing = errors.New("document summary is missing")

	// ErrSessionNotFound covers both unknown sessions and sessions owned by
	// another user; callers cannot tell the two apart.
	ErrSessionNotFound = errors.New("session not found")

	// ErrQuestionRequired rejects blank questions.
	ErrQuestionRequired = errors.New("question is required")
)

// Service manages chat sessions.
type Service struct {
	documents store.DocumentStore
	sessions  store.ChatSessionStore
	embedder  nlp.Embedder
	answerer  Answerer
	logger    logger.Logger
}

// NewService creates the chat service. The embedder should be the shared
// instance so session vectors live in the same space as document vectors.
func NewService(documents store.DocumentStore, sessions store.ChatSessionStore, embedder nlp.Embedder, answerer Answerer, log logger.Logger) *Service {
	return &Service{
		documents: documents,
		sessions:  sessions,
		embedder:  embedder,
		answerer:  answerer,
		logger:    log,
	}
}

// CreateSession opens a session on a document for a user. The document must
// already have a summary; its embedding is computed up front and kept on the
// session.
func (s *Service) CreateSession(ctx context.Context, userID, documentID string) (models.ChatSession, error) {
	doc, err := s.documents.GetDocument(ctx, documentID)
	if err != nil {
		return models.ChatSession{}, fmt.Errorf("load document %s: %w", documentID, err)
	}
	if doc.Summary == "" {
		return models.ChatSession{}, ErrSummaryMissing
	}

	session := models.ChatSession{
		ID:         uuid.NewString(),
		UserID:     userID,
		DocumentID: documentID,
		History:    []models.ChatMessage{},
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	// The summary vector is optional; a session without one still answers
	// questions, it just cannot be used for semantic lookups.
	vec, err := s.embedder.Embed(ctx, doc.Summary)
	if err != nil {
		s.logger.Warn("failed to embed session summary",
			logger.String("documentId", documentID),
			logger.Error(err),
		)
	} else {
		session.SummaryVector = vector.Encode(vec)
	}

	if err := s.sessions.CreateSession(ctx, &session); err != nil {
		return models.ChatSession{}, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// Ask answers a question within a session and appends both turns to its
// history. Generation failures degrade to the fixed apology answer; the
// exchange is still recorded.
func (s *Service) Ask(ctx context.Context, userID, sessionID, question string) (string, models.ChatSession, error) {
	if question == "" {
		return "", models.ChatSession{}, ErrQuestionRequired
	}

	session, err := s.getOwnedSession(ctx, userID, sessionID)
	if err != nil {
		return "", models.ChatSession{}, err
	}

	doc, err := s.documents.GetDocument(ctx, session.DocumentID)
	if err != nil {
		return "", models.ChatSession{}, fmt.Errorf("load document %s: %w", session.DocumentID, err)
	}
	if doc.Summary == "" {
		return "", models.ChatSession{}, ErrSummaryMissing
	}

	answer, err := s.answerer.Answer(ctx, doc.Summary, question)
	if err != nil {
		s.logger.Warn("answer generation failed",
			logger.String("sessionId", sessionID),
			logger.Error(err),
		)
		answer = Apology
	}

	session.History = append(session.History,
		models.ChatMessage{Role: "user", Text: question},
		models.ChatMessage{Role: "bot", Text: answer},
	)
	session.UpdatedAt = time.Now()
	if err := s.sessions.UpdateSession(ctx, &session); err != nil {
		return "", models.ChatSession{}, fmt.Errorf("save session: %w", err)
	}

	return answer, session, nil
}

// GetSession returns a session if it belongs to the user.
func (s *Service) GetSession(ctx context.Context, userID, sessionID string) (models.ChatSession, error) {
	return s.getOwnedSession(ctx, userID, sessionID)
}

func (s *Service) getOwnedSession(ctx context.Context, userID, sessionID string) (models.ChatSession, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return models.ChatSession{}, ErrSessionNotFound
	}
	if err != nil {
		return models.ChatSession{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if session.UserID != userID {
		return models.ChatSession{}, ErrSessionNotFound
	}
	return session, nil
}
