// Package extract converts uploaded files into plain text. Extraction never
// propagates parse failures: a file that cannot be read yields empty text and
// a logged warning, and the pipeline skips the document.
package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/docuvault/docuvault/internal/models"
	"github.com/docuvault/docuvault/pkg/logger"
)

// Extractor pulls plain text out of raw file bytes by detected type.
type Extractor struct {
	logger logger.Logger
}

// NewExtractor creates a text extractor.
func NewExtractor(log logger.Logger) *Extractor {
	return &Extractor{logger: log}
}

// Extract reads the whole file and returns its text, trimmed. Unsupported
// types and unreadable files return "".
func (e *Extractor) Extract(ctx context.Context, r io.Reader, fileType models.FileType) string {
	content, err := io.ReadAll(r)
	if err != nil {
		e.logger.Warn("failed to read file contents",
			logger.String("fileType", string(fileType)),
			logger.Error(err),
		)
		return ""
	}

	var text string
	switch fileType {
	case models.FileTypePDF:
		text, err = e.extractPDF(ctx, content)
	case models.FileTypeDocx, models.FileTypeDoc:
		text, err = extractDocx(content)
	case models.FileTypeTxt:
		// Lenient decode: invalid byte sequences are dropped, not fatal.
		text = strings.ToValidUTF8(string(content), "")
	case models.FileTypeCSV:
		text, err = extractCSV(content)
	default:
		return ""
	}
	if err != nil {
		e.logger.Warn("text extraction failed",
			logger.String("fileType", string(fileType)),
			logger.Error(err),
		)
		return ""
	}
	return strings.TrimSpace(text)
}

// extractPDF concatenates the plain text of every page in order. Pages whose
// text cannot be read contribute nothing.
func (e *Extractor) extractPDF(ctx context.Context, content []byte) (text string, err error) {
	// The pdf library panics on some malformed files; treat that as an
	// unreadable document, same as a parse error.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= pdfReader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn("skipping unreadable pdf page",
				logger.Int("page", i),
				logger.Error(err),
			)
			continue
		}
		sb.WriteString(pageText)
	}
	return sb.String(), nil
}

// extractCSV flattens every row's cell values into one space-joined blob in
// row order.
func extractCSV(content []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var cells []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		cells = append(cells, record...)
	}
	return strings.Join(cells, " "), nil
}
