// Package document is the application service behind the document API:
// upload and validation, CRUD with visibility rules, background processing
// dispatch, and access logging.
package document

import (
	"context"
	"io"
	"mime/multipart"

	"github.com/docuvault/docuvault/internal/access"
	"github.com/docuvault/docuvault/internal/models"
	"github.com/docuvault/docuvault/pkg/queue"
)

// UploadInput is one file to ingest.
type UploadInput struct {
	Reader   io.Reader
	Filename string
	Size     int64
}

// UploadResult pairs the created document with its processing task.
type UploadResult struct {
	Document models.Document `json:"document"`
	TaskID   string          `json:"taskId"`
}

// Service is the document application service consumed by the HTTP handlers.
type Service interface {
	Upload(ctx context.Context, id access.Identity, in UploadInput) (*UploadResult, error)
	UploadBatch(ctx context.Context, id access.Identity, files []*multipart.FileHeader) ([]*UploadResult, error)
	Get(ctx context.Context, id access.Identity, documentID string) (models.Document, error)
	List(ctx context.Context, id access.Identity, limit, offset int) ([]models.Document, error)
	Update(ctx context.Context, id access.Identity, documentID string, update Update) (models.Document, error)
	Delete(ctx context.Context, id access.Identity, documentID string) error
	Reprocess(ctx context.Context, id access.Identity, documentID string) (taskID string, err error)
	ProcessingStatus(ctx context.Context, taskID string) (*queue.TaskStatus, error)
	CancelProcessing(ctx context.Context, taskID string) error
	// AccessLogs returns the audit trail, privileged callers only.
	AccessLogs(ctx context.Context, id access.Identity, limit int) ([]models.AccessLog, error)
}

// Update carries the caller-editable document fields; nil means unchanged.
type Update struct {
	Title    *string `json:"title"`
	Category *string `json:"category"`
}
