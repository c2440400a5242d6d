// Package metadata derives document metadata from extracted text: title,
// author and date by pattern matching, entities by named-entity recognition.
package metadata

import (
	"context"
	"regexp"
	"strings"

	"github.com/docuvault/docuvault/internal/models"
	"github.com/docuvault/docuvault/internal/nlp"
	"github.com/docuvault/docuvault/pkg/logger"
)

// EntityWindow bounds how much text is sent to the recognizer, for latency.
const EntityWindow = 2000

var (
	authorPattern = regexp.MustCompile(`(?i)(Author|By):\s*(.+)`)
	datePattern   = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
)

// Metadata is the result of extraction; empty fields mean "not found".
type Metadata struct {
	Title    string
	Author   string
	Date     string
	Entities []models.Entity
}

// Extractor derives metadata from text. Pure and deterministic given the
// recognizer; a recognizer failure degrades to an empty entity list.
type Extractor struct {
	recognizer nlp.Recognizer
	logger     logger.Logger
}

// NewExtractor creates a metadata extractor.
func NewExtractor(recognizer nlp.Recognizer, log logger.Logger) *Extractor {
	return &Extractor{recognizer: recognizer, logger: log}
}

// Extract returns the metadata found in text.
func (e *Extractor) Extract(ctx context.Context, text string) Metadata {
	md := Metadata{
		Title:  firstNonEmptyLine(text),
		Author: matchAuthor(text),
		Date:   datePattern.FindString(text),
	}

	if text == "" {
		return md
	}
	entities, err := e.recognizer.Recognize(ctx, nlp.Truncate(text, EntityWindow))
	if err != nil {
		e.logger.Warn("entity recognition failed", logger.Error(err))
		return md
	}
	md.Entities = entities
	return md
}

func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func matchAuthor(text string) string {
	m := authorPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[2])
}
