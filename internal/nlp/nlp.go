// Package nlp holds the clients for the three external model services the
// core depends on: the zero-shot classifier, the named-entity recognizer and
// the sentence embedder. Each is replaceable behind a small interface so the
// pipeline and search engine never see transport details.
package nlp

import (
	"context"

	"github.com/docuvault/docuvault/internal/models"
)

// Classifier scores a text against a fixed candidate label set and returns
// the top label with its confidence.
type Classifier interface {
	Classify(ctx context.Context, text string, labels []string) (label string, score float64, err error)
}

// Recognizer extracts named-entity spans from text, in order of appearance.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]models.Entity, error)
}

// Embedder maps text to a fixed-dimension dense vector. The same instance
// must embed both documents and queries or similarity scores are meaningless.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// Truncate returns at most n runes of s. Model inputs are bounded for
// latency; slicing runes rather than bytes keeps multibyte text intact.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
