package nlp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaEmbedder produces sentence embeddings from an Ollama server. One
// instance is constructed at process start and shared by the pipeline and
// the search engine so both sides live in the same vector space.
type OllamaEmbedder struct {
	llm     *ollama.LLM
	timeout time.Duration

	mu  sync.Mutex
	dim int
}

// EmbedderConfig configures the embedding client.
type EmbedderConfig struct {
	BaseURL   string
	Model     string
	Dimension int // 0 pins the dimension to the first result
	Timeout   time.Duration
}

// NewOllamaEmbedder creates an embedder client.
func NewOllamaEmbedder(cfg EmbedderConfig) (*OllamaEmbedder, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "nomic-embed-text:latest"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	llm, err := ollama.New(
		ollama.WithModel(cfg.Model),
		ollama.WithServerURL(cfg.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("initialize embedding model: %w", err)
	}

	return &OllamaEmbedder{
		llm:     llm,
		timeout: cfg.Timeout,
		dim:     cfg.Dimension,
	}, nil
}

// Embed returns the embedding vector for the text. Every result is checked
// against the pinned dimension; vectors of mixed dimensions are never valid.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	embeddings, err := e.llm.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, fmt.Errorf("embedding model returned no vector")
	}
	vec := embeddings[0]

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dim == 0 {
		e.dim = len(vec)
	} else if len(vec) != e.dim {
		return nil, fmt.Errorf("embedding dimension changed: got %d, expected %d", len(vec), e.dim)
	}
	return vec, nil
}

// Dimension reports the pinned vector dimension, 0 before the first embed
// when no dimension was configured.
func (e *OllamaEmbedder) Dimension() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dim
}
