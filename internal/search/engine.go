// Package search ranks stored documents against a free-text query by cosine
// similarity of their embeddings. Every query is a full scan over the
// embedding store; fine for small-to-medium corpora, and the known
// bottleneck if the corpus grows past that.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/docuvault/docuvault/internal/access"
	"github.com/docuvault/docuvault/internal/models"
	"github.com/docuvault/docuvault/internal/nlp"
	"github.com/docuvault/docuvault/internal/store"
	"github.com/docuvault/docuvault/internal/vector"
	"github.com/docuvault/docuvault/pkg/logger"
)

// DefaultTopK is the result limit when the caller passes topK <= 0.
const DefaultTopK = 5

// ErrEmptyQuery rejects blank queries before any work is done.
var ErrEmptyQuery = errors.New("query is required")

// Result is one ranked hit.
type Result struct {
	Document models.Document `json:"document"`
	Score    float64         `json:"score"`
}

// Engine embeds queries and scans the embedding store. It shares its
// embedder instance with the pipeline so both sides use the same vector
// space.
type Engine struct {
	embeddings store.EmbeddingStore
	embedder   nlp.Embedder
	logger     logger.Logger
}

// NewEngine creates a search engine.
func NewEngine(embeddings store.EmbeddingStore, embedder nlp.Embedder, log logger.Logger) *Engine {
	return &Engine{embeddings: embeddings, embedder: embedder, logger: log}
}

// Search returns the topK documents most similar to the query, restricted to
// those passing the access filter. Stored vectors that fail to decode are
// skipped with a warning; one corrupt record never fails the whole scan.
func (e *Engine) Search(ctx context.Context, query string, filter access.Filter, topK int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if filter == nil {
		filter = access.AllowAll()
	}

	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := e.embeddings.ListEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list embeddings: %w", err)
	}

	results := make([]Result, 0, len(candidates))
	for _, candidate := range candidates {
		if !filter(candidate.Document) {
			continue
		}
		docVec, err := vector.Decode(candidate.Vector)
		if err != nil {
			e.logger.Warn("skipping undecodable embedding",
				logger.String("documentId", candidate.Document.ID),
				logger.Error(err),
			)
			continue
		}
		results = append(results, Result{
			Document: candidate.Document,
			Score:    vector.Cosine(queryVec, docVec),
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}
