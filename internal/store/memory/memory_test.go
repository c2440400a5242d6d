package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuvault/docuvault/internal/models"
	"github.com/docuvault/docuvault/internal/store"
)

func doc(id string, createdAt time.Time) *models.Document {
	return &models.Document{
		ID:         id,
		Category:   models.CategoryUnknown,
		FileType:   models.FileTypeTxt,
		FileKey:    "uploads/" + id,
		UploaderID: "u1",
		CreatedAt:  createdAt,
	}
}

func TestDocumentLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.CreateDocument(ctx, doc("d1", time.Now())))

	got, err := s.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryUnknown, got.Category)

	got.Category = models.CategoryHR
	got.Summary = "a summary"
	require.NoError(t, s.UpdateDocument(ctx, &got))

	got, err = s.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryHR, got.Category)
	assert.Equal(t, "a summary", got.Summary)

	require.NoError(t, s.DeleteDocument(ctx, "d1"))
	_, err = s.GetDocument(ctx, "d1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetMissingDocument(t *testing.T) {
	s := NewStore()
	_, err := s.GetDocument(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListDocumentsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Now()
	require.NoError(t, s.CreateDocument(ctx, doc("old", base.Add(-2*time.Hour))))
	require.NoError(t, s.CreateDocument(ctx, doc("new", base)))
	require.NoError(t, s.CreateDocument(ctx, doc("mid", base.Add(-time.Hour))))

	docs, err := s.ListDocuments(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "new", docs[0].ID)
	assert.Equal(t, "mid", docs[1].ID)
	assert.Equal(t, "old", docs[2].ID)

	page, err := s.ListDocuments(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "mid", page[0].ID)
}

func TestEmbeddingOwnership(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	// No document, no embedding.
	err := s.UpsertEmbedding(ctx, models.Embedding{DocumentID: "ghost", Vector: []byte{1}})
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.CreateDocument(ctx, doc("d1", time.Now())))
	require.NoError(t, s.UpsertEmbedding(ctx, models.Embedding{DocumentID: "d1", Vector: []byte{1, 2}}))

	// Replace, not duplicate.
	require.NoError(t, s.UpsertEmbedding(ctx, models.Embedding{DocumentID: "d1", Vector: []byte{3, 4}}))
	emb, err := s.GetEmbedding(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 4}, emb.Vector)

	all, err := s.ListEmbeddings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	// Deleting the document deletes the embedding with it.
	require.NoError(t, s.DeleteDocument(ctx, "d1"))
	_, err = s.GetEmbedding(ctx, "d1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListEmbeddingsStableOrder(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	now := time.Now()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.CreateDocument(ctx, doc(id, now)))
		require.NoError(t, s.UpsertEmbedding(ctx, models.Embedding{DocumentID: id, Vector: []byte(id)}))
	}
	for i := 0; i < 5; i++ {
		all, err := s.ListEmbeddings(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "a", all[0].Document.ID)
		assert.Equal(t, "b", all[1].Document.ID)
		assert.Equal(t, "c", all[2].Document.ID)
	}
}

func TestAccessLogsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for i, action := range []string{"upload", "view", "delete"} {
		require.NoError(t, s.AppendAccessLog(ctx, models.AccessLog{
			ID: string(rune('a' + i)), UserID: "u1", Action: action, Timestamp: time.Now(),
		}))
	}
	logs, err := s.ListAccessLogs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "delete", logs[0].Action)
	assert.Equal(t, "view", logs[1].Action)
}

func TestChatSessionHistoryIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	session := &models.ChatSession{ID: "s1", UserID: "u1", DocumentID: "d1"}
	require.NoError(t, s.CreateSession(ctx, session))

	got, err := s.GetSession(ctx, "s1")
	require.NoError(t, err)
	got.History = append(got.History, models.ChatMessage{Role: "user", Text: "hi"})
	require.NoError(t, s.UpdateSession(ctx, &got))

	// Mutating the returned copy must not leak into the store.
	got.History[0].Text = "tampered"
	fresh, err := s.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, fresh.History, 1)
	assert.Equal(t, "hi", fresh.History[0].Text)
}
