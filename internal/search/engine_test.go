package search

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuvault/docuvault/internal/access"
	"github.com/docuvault/docuvault/internal/models"
	"github.com/docuvault/docuvault/internal/store/memory"
	"github.com/docuvault/docuvault/internal/vector"
	"github.com/docuvault/docuvault/pkg/logger"
)

// stubEmbedder returns a fixed query vector.
type stubEmbedder struct {
	vec []float32
	err error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.vec, s.err
}

func (s *stubEmbedder) Dimension() int { return len(s.vec) }

// docWithSimilarity stores a document whose vector has exactly the given
// cosine similarity to the unit query vector (1, 0).
func docWithSimilarity(t *testing.T, s *memory.Store, id, category string, sim float64) {
	t.Helper()
	doc := &models.Document{
		ID:         id,
		Category:   category,
		FileType:   models.FileTypeTxt,
		FileKey:    "uploads/" + id,
		UploaderID: "u1",
		CreatedAt:  time.Now(),
	}
	require.NoError(t, s.CreateDocument(context.Background(), doc))
	vec := []float32{float32(sim), float32(math.Sqrt(1 - sim*sim))}
	require.NoError(t, s.UpsertEmbedding(context.Background(), models.Embedding{
		DocumentID: id,
		Vector:     vector.Encode(vec),
	}))
}

func newEngine(s *memory.Store) *Engine {
	return NewEngine(s, &stubEmbedder{vec: []float32{1, 0}}, logger.NewTestLogger())
}

func TestSearchRanksBySimilarity(t *testing.T) {
	s := memory.NewStore()
	docWithSimilarity(t, s, "low", models.CategoryHR, 0.2)
	docWithSimilarity(t, s, "high", models.CategoryHR, 0.9)
	docWithSimilarity(t, s, "mid", models.CategoryHR, 0.5)

	results, err := newEngine(s).Search(context.Background(), "anything", access.AllowAll(), 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "high", results[0].Document.ID)
	assert.Equal(t, "mid", results[1].Document.ID)
	assert.InDelta(t, 0.9, results[0].Score, 1e-6)
	assert.InDelta(t, 0.5, results[1].Score, 1e-6)
}

func TestSearchAccessFilterBeatsSimilarity(t *testing.T) {
	s := memory.NewStore()
	docWithSimilarity(t, s, "forbidden", models.CategoryFinance, 0.99)
	docWithSimilarity(t, s, "allowed", models.CategoryHR, 0.1)

	filter := access.ForIdentity(access.Identity{UserID: "u1", Role: models.CategoryHR})
	results, err := newEngine(s).Search(context.Background(), "q", filter, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "allowed", results[0].Document.ID)
}

func TestSearchUnknownCategoryVisibleToEveryRole(t *testing.T) {
	s := memory.NewStore()
	docWithSimilarity(t, s, "unclassified", models.CategoryUnknown, 0.7)

	filter := access.ForIdentity(access.Identity{UserID: "u1", Role: models.CategoryLegal})
	results, err := newEngine(s).Search(context.Background(), "q", filter, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestSearchPrivilegedSeesEverything(t *testing.T) {
	s := memory.NewStore()
	docWithSimilarity(t, s, "finance", models.CategoryFinance, 0.4)
	docWithSimilarity(t, s, "legal", models.CategoryLegal, 0.6)

	filter := access.ForIdentity(access.Identity{UserID: "admin", Role: models.CategoryHR, Privileged: true})
	results, err := newEngine(s).Search(context.Background(), "q", filter, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	s := memory.NewStore()
	_, err := newEngine(s).Search(context.Background(), "   ", access.AllowAll(), 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearchSkipsCorruptVector(t *testing.T) {
	s := memory.NewStore()
	docWithSimilarity(t, s, "good", models.CategoryHR, 0.5)

	corrupt := &models.Document{
		ID: "corrupt", Category: models.CategoryHR, FileType: models.FileTypeTxt,
		FileKey: "uploads/corrupt", UploaderID: "u1", CreatedAt: time.Now(),
	}
	require.NoError(t, s.CreateDocument(context.Background(), corrupt))
	require.NoError(t, s.UpsertEmbedding(context.Background(), models.Embedding{
		DocumentID: "corrupt",
		Vector:     []byte("not a vector"),
	}))

	log := logger.NewTestLogger()
	engine := NewEngine(s, &stubEmbedder{vec: []float32{1, 0}}, log)
	results, err := engine.Search(context.Background(), "q", access.AllowAll(), 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "good", results[0].Document.ID)

	var warned bool
	for _, entry := range log.Entries() {
		if entry.Level == "WARN" {
			warned = true
		}
	}
	assert.True(t, warned, "corrupt vector should be logged")
}

func TestSearchDefaultTopK(t *testing.T) {
	s := memory.NewStore()
	for i := 0; i < 8; i++ {
		docWithSimilarity(t, s, string(rune('a'+i)), models.CategoryHR, float64(i)/10)
	}
	results, err := newEngine(s).Search(context.Background(), "q", access.AllowAll(), 0)
	require.NoError(t, err)
	assert.Len(t, results, DefaultTopK)
}

func TestSearchEmbedderFailure(t *testing.T) {
	s := memory.NewStore()
	engine := NewEngine(s, &stubEmbedder{err: errors.New("model down")}, logger.NewTestLogger())
	_, err := engine.Search(context.Background(), "q", access.AllowAll(), 5)
	assert.Error(t, err)
}
