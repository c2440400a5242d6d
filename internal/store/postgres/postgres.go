// Package postgres backs the store interfaces with a pgx connection pool.
// Embedding vectors are opaque BYTEA blobs encoded by internal/vector and
// decoded in-process by the search engine.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docuvault/docuvault/internal/models"
	"github.com/docuvault/docuvault/internal/store"
)

// Store implements store.Store on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the database and creates the schema if missing.
func NewStore(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id          TEXT PRIMARY KEY,
			title       TEXT,
			category    TEXT NOT NULL DEFAULT 'Unknown',
			file_type   TEXT NOT NULL DEFAULT 'other',
			author      TEXT,
			doc_date    TEXT,
			file_key    TEXT NOT NULL,
			summary     TEXT,
			entities    JSONB,
			uploader_id TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS embeddings (
			document_id TEXT PRIMARY KEY REFERENCES documents(id) ON DELETE CASCADE,
			vector      BYTEA NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS access_logs (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			document_id TEXT,
			action      TEXT NOT NULL,
			ts          TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS chat_sessions (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			document_id    TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			summary_vector BYTEA,
			history        JSONB NOT NULL DEFAULT '[]',
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) CreateDocument(ctx context.Context, doc *models.Document) error {
	entities, err := json.Marshal(doc.Entities)
	if err != nil {
		return fmt.Errorf("marshal entities: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO documents (id, title, category, file_type, author, doc_date, file_key, summary, entities, uploader_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		doc.ID, doc.Title, doc.Category, string(doc.FileType), doc.Author, doc.Date,
		doc.FileKey, doc.Summary, entities, doc.UploaderID, doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *Store) GetDocument(ctx context.Context, id string) (models.Document, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, title, category, file_type, author, doc_date, file_key, summary, entities, uploader_id, created_at
		FROM documents WHERE id = $1`, id)
	return scanDocument(row)
}

func (s *Store) UpdateDocument(ctx context.Context, doc *models.Document) error {
	entities, err := json.Marshal(doc.Entities)
	if err != nil {
		return fmt.Errorf("marshal entities: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE documents
		SET title = $2, category = $3, file_type = $4, author = $5, doc_date = $6,
		    file_key = $7, summary = $8, entities = $9
		WHERE id = $1`,
		doc.ID, doc.Title, doc.Category, string(doc.FileType), doc.Author, doc.Date,
		doc.FileKey, doc.Summary, entities,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListDocuments(ctx context.Context, limit, offset int) ([]models.Document, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, category, file_type, author, doc_date, file_key, summary, entities, uploader_id, created_at
		FROM documents ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *Store) UpsertEmbedding(ctx context.Context, emb models.Embedding) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO embeddings (document_id, vector)
		VALUES ($1, $2)
		ON CONFLICT (document_id) DO UPDATE SET vector = EXCLUDED.vector`,
		emb.DocumentID, emb.Vector,
	)
	if err != nil {
		return fmt.Errorf("upsert embedding: %w", err)
	}
	return nil
}

func (s *Store) GetEmbedding(ctx context.Context, documentID string) (models.Embedding, error) {
	emb := models.Embedding{DocumentID: documentID}
	err := s.pool.QueryRow(ctx,
		`SELECT vector FROM embeddings WHERE document_id = $1`, documentID,
	).Scan(&emb.Vector)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Embedding{}, store.ErrNotFound
	}
	if err != nil {
		return models.Embedding{}, fmt.Errorf("get embedding: %w", err)
	}
	return emb, nil
}

func (s *Store) ListEmbeddings(ctx context.Context) ([]store.DocumentEmbedding, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT d.id, d.title, d.category, d.file_type, d.author, d.doc_date, d.file_key,
		       d.summary, d.entities, d.uploader_id, d.created_at, e.vector
		FROM embeddings e
		JOIN documents d ON d.id = e.document_id
		ORDER BY d.created_at`)
	if err != nil {
		return nil, fmt.Errorf("list embeddings: %w", err)
	}
	defer rows.Close()

	var out []store.DocumentEmbedding
	for rows.Next() {
		var (
			doc      models.Document
			fileType string
			entities []byte
			vector   []byte
		)
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Category, &fileType, &doc.Author,
			&doc.Date, &doc.FileKey, &doc.Summary, &entities, &doc.UploaderID,
			&doc.CreatedAt, &vector); err != nil {
			return nil, fmt.Errorf("scan embedding row: %w", err)
		}
		doc.FileType = models.FileType(fileType)
		if len(entities) > 0 {
			if err := json.Unmarshal(entities, &doc.Entities); err != nil {
				return nil, fmt.Errorf("unmarshal entities: %w", err)
			}
		}
		out = append(out, store.DocumentEmbedding{Document: doc, Vector: vector})
	}
	return out, rows.Err()
}

func (s *Store) AppendAccessLog(ctx context.Context, entry models.AccessLog) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO access_logs (id, user_id, document_id, action, ts)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)`,
		entry.ID, entry.UserID, entry.DocumentID, entry.Action, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append access log: %w", err)
	}
	return nil
}

func (s *Store) ListAccessLogs(ctx context.Context, limit int) ([]models.AccessLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, COALESCE(document_id, ''), action, ts
		FROM access_logs ORDER BY ts DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list access logs: %w", err)
	}
	defer rows.Close()

	var out []models.AccessLog
	for rows.Next() {
		var entry models.AccessLog
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.DocumentID, &entry.Action, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("scan access log: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *Store) CreateSession(ctx context.Context, session *models.ChatSession) error {
	history, err := json.Marshal(session.History)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO chat_sessions (id, user_id, document_id, summary_vector, history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		session.ID, session.UserID, session.DocumentID, session.SummaryVector,
		history, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert chat session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (models.ChatSession, error) {
	var (
		session models.ChatSession
		history []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, document_id, summary_vector, history, created_at, updated_at
		FROM chat_sessions WHERE id = $1`, id,
	).Scan(&session.ID, &session.UserID, &session.DocumentID, &session.SummaryVector,
		&history, &session.CreatedAt, &session.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ChatSession{}, store.ErrNotFound
	}
	if err != nil {
		return models.ChatSession{}, fmt.Errorf("get chat session: %w", err)
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &session.History); err != nil {
			return models.ChatSession{}, fmt.Errorf("unmarshal history: %w", err)
		}
	}
	return session, nil
}

func (s *Store) UpdateSession(ctx context.Context, session *models.ChatSession) error {
	history, err := json.Marshal(session.History)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE chat_sessions SET history = $2, updated_at = $3 WHERE id = $1`,
		session.ID, history, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update chat session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (models.Document, error) {
	var (
		doc      models.Document
		fileType string
		entities []byte
	)
	err := row.Scan(&doc.ID, &doc.Title, &doc.Category, &fileType, &doc.Author,
		&doc.Date, &doc.FileKey, &doc.Summary, &entities, &doc.UploaderID, &doc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Document{}, store.ErrNotFound
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("scan document: %w", err)
	}
	doc.FileType = models.FileType(fileType)
	if len(entities) > 0 {
		if err := json.Unmarshal(entities, &doc.Entities); err != nil {
			return models.Document{}, fmt.Errorf("unmarshal entities: %w", err)
		}
	}
	return doc, nil
}
