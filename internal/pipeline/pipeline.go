// Package pipeline runs the per-document processing chain: fetch the stored
// file, extract text, derive metadata and a summary, classify, and embed.
// Every stage degrades rather than aborts; a document that yields nothing
// usable simply stays Unknown with no embedding, and the pipeline is safe to
// re-run because it recomputes from the stored file and overwrites.
package pipeline

import (
	"context"
	"fmt"

	"github.com/docuvault/docuvault/internal/extract"
	"github.com/docuvault/docuvault/internal/metadata"
	"github.com/docuvault/docuvault/internal/models"
	"github.com/docuvault/docuvault/internal/nlp"
	"github.com/docuvault/docuvault/internal/store"
	"github.com/docuvault/docuvault/internal/summarizer"
	"github.com/docuvault/docuvault/internal/vector"
	"github.com/docuvault/docuvault/pkg/logger"
	"github.com/docuvault/docuvault/pkg/storage"
)

// ClassifyWindow bounds how much text is sent to the zero-shot classifier.
const ClassifyWindow = 1000

// Pipeline wires the processing stages together. The embedder instance must
// be the one the search engine queries with.
type Pipeline struct {
	documents  store.DocumentStore
	embeddings store.EmbeddingStore
	files      storage.Storage
	extractor  *extract.Extractor
	metadata   *metadata.Extractor
	summarizer *summarizer.Summarizer
	classifier nlp.Classifier
	embedder   nlp.Embedder
	sentences  int
	logger     logger.Logger
}

// Params collects the pipeline's collaborators.
type Params struct {
	Documents  store.DocumentStore
	Embeddings store.EmbeddingStore
	Files      storage.Storage
	Extractor  *extract.Extractor
	Metadata   *metadata.Extractor
	Summarizer *summarizer.Summarizer
	Classifier nlp.Classifier
	Embedder   nlp.Embedder

	// SummarySentences <= 0 falls back to the summarizer default.
	SummarySentences int
}

// New creates a processing pipeline.
func New(p Params, log logger.Logger) *Pipeline {
	return &Pipeline{
		documents:  p.Documents,
		embeddings: p.Embeddings,
		files:      p.Files,
		extractor:  p.Extractor,
		metadata:   p.Metadata,
		summarizer: p.Summarizer,
		classifier: p.Classifier,
		embedder:   p.Embedder,
		sentences:  p.SummarySentences,
		logger:     log,
	}
}

// Process runs the full chain for one stored document. It returns an error
// only when the document or its file cannot be loaded or the result cannot be
// persisted; model failures degrade and are logged.
func (p *Pipeline) Process(ctx context.Context, documentID string) error {
	doc, err := p.documents.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document %s: %w", documentID, err)
	}

	if doc.FileType == models.FileTypeOther {
		p.logger.Info("skipping document with unsupported file type",
			logger.String("documentId", doc.ID),
		)
		return nil
	}

	rc, err := p.files.Get(ctx, doc.FileKey)
	if err != nil {
		return fmt.Errorf("fetch file %s: %w", doc.FileKey, err)
	}
	text := p.extractor.Extract(ctx, rc, doc.FileType)
	rc.Close()

	if text == "" {
		p.logger.Warn("no text extracted, leaving document unprocessed",
			logger.String("documentId", doc.ID),
			logger.String("fileType", string(doc.FileType)),
		)
		return nil
	}

	md := p.metadata.Extract(ctx, text)
	if md.Title != "" {
		doc.Title = md.Title
	}
	if md.Author != "" {
		doc.Author = md.Author
	}
	if md.Date != "" {
		doc.Date = md.Date
	}
	doc.Entities = md.Entities
	doc.Summary = p.summarizer.Summarize(text, p.sentences)
	doc.Category = p.classify(ctx, doc.ID, text)

	if err := p.documents.UpdateDocument(ctx, &doc); err != nil {
		return fmt.Errorf("persist document %s: %w", doc.ID, err)
	}

	p.embed(ctx, doc, text)

	p.logger.Info("document processed",
		logger.String("documentId", doc.ID),
		logger.String("category", doc.Category),
	)
	return nil
}

// classify labels the head of the text against the fixed category set. Any
// failure leaves the document Unknown.
func (p *Pipeline) classify(ctx context.Context, documentID, text string) string {
	label, score, err := p.classifier.Classify(ctx, nlp.Truncate(text, ClassifyWindow), models.Categories)
	if err != nil {
		p.logger.Warn("classification failed",
			logger.String("documentId", documentID),
			logger.Error(err),
		)
		return models.CategoryUnknown
	}
	p.logger.Debug("document classified",
		logger.String("documentId", documentID),
		logger.String("label", label),
		logger.Float64("score", score),
	)
	return label
}

// embed computes and stores the document vector. Title plus summary is the
// preferred input; only when both are empty does the raw text head stand in.
func (p *Pipeline) embed(ctx context.Context, doc models.Document, text string) {
	input := doc.Title + " " + doc.Summary
	if doc.Title == "" && doc.Summary == "" {
		input = nlp.Truncate(text, ClassifyWindow)
	}

	vec, err := p.embedder.Embed(ctx, input)
	if err != nil {
		p.logger.Warn("embedding failed, document will not be searchable",
			logger.String("documentId", doc.ID),
			logger.Error(err),
		)
		return
	}

	err = p.embeddings.UpsertEmbedding(ctx, models.Embedding{
		DocumentID: doc.ID,
		Vector:     vector.Encode(vec),
	})
	if err != nil {
		p.logger.Error("failed to store embedding",
			logger.String("documentId", doc.ID),
			logger.Error(err),
		)
	}
}
