package document

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/docuvault/docuvault/internal/access"
	"github.com/docuvault/docuvault/internal/extract"
	"github.com/docuvault/docuvault/internal/models"
	"github.com/docuvault/docuvault/internal/store"
	"github.com/docuvault/docuvault/pkg/logger"
	"github.com/docuvault/docuvault/pkg/queue"
	"github.com/docuvault/docuvault/pkg/storage"
)

var (
	// ErrFileTooLarge rejects uploads over the configured limit.
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")

	// ErrExtensionNotAllowed rejects uploads outside the allow-list, when
	// one is configured.
	ErrExtensionNotAllowed = errors.New("file extension not allowed")

	// ErrNotVisible hides documents the caller's filter rejects. It maps to
	// the same response as a missing document so visibility leaks nothing.
	ErrNotVisible = errors.New("document not visible")

	// ErrForbidden rejects mutations by callers other than the uploader.
	ErrForbidden = errors.New("operation not permitted")

	// ErrInvalidCategory rejects updates to a label outside the fixed set.
	ErrInvalidCategory = errors.New("invalid category")
)

type service struct {
	store   store.Store
	files   storage.Storage
	queue   queue.Queue
	logger  logger.Logger
	maxSize int64
	// allowed extensions in lowercase with leading dot; empty allows all.
	allowed []string
}

// Config tunes upload validation.
type Config struct {
	MaxFileSize       int64
	AllowedExtensions []string
}

// NewService creates the document service.
func NewService(st store.Store, files storage.Storage, q queue.Queue, cfg Config, log logger.Logger) Service {
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = 50 * 1024 * 1024
	}
	return &service{
		store:   st,
		files:   files,
		queue:   q,
		logger:  log,
		maxSize: cfg.MaxFileSize,
		allowed: cfg.AllowedExtensions,
	}
}

func (s *service) Upload(ctx context.Context, id access.Identity, in UploadInput) (*UploadResult, error) {
	if err := s.validate(in); err != nil {
		s.logger.Warn("Upload rejected",
			logger.String("filename", in.Filename),
			logger.Int64("size", in.Size),
			logger.Error(err),
		)
		return nil, err
	}

	doc := models.Document{
		ID:         uuid.NewString(),
		Title:      in.Filename,
		Category:   models.CategoryUnknown,
		FileType:   extract.DetectFileType(in.Filename),
		UploaderID: id.UserID,
		CreatedAt:  time.Now(),
	}
	doc.FileKey = "uploads/" + doc.ID + strings.ToLower(filepath.Ext(in.Filename))

	if _, err := s.files.Store(ctx, in.Reader, doc.FileKey); err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}
	if err := s.store.CreateDocument(ctx, &doc); err != nil {
		// Don't leave an orphaned file behind.
		if delErr := s.files.Delete(ctx, doc.FileKey); delErr != nil {
			s.logger.Error("Failed to remove orphaned file",
				logger.String("fileKey", doc.FileKey),
				logger.Error(delErr),
			)
		}
		return nil, fmt.Errorf("create document: %w", err)
	}

	s.audit(ctx, id.UserID, doc.ID, "upload")

	taskID, err := s.enqueue(ctx, queue.TaskTypeDocumentProcess, doc.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Document uploaded",
		logger.String("documentId", doc.ID),
		logger.String("filename", in.Filename),
		logger.String("taskId", taskID),
	)
	return &UploadResult{Document: doc, TaskID: taskID}, nil
}

func (s *service) UploadBatch(ctx context.Context, id access.Identity, files []*multipart.FileHeader) ([]*UploadResult, error) {
	results := make([]*UploadResult, 0, len(files))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, header := range files {
		header := header
		g.Go(func() error {
			f, err := header.Open()
			if err != nil {
				return fmt.Errorf("open file %s: %w", header.Filename, err)
			}
			defer f.Close()

			result, err := s.Upload(ctx, id, UploadInput{
				Reader:   f,
				Filename: header.Filename,
				Size:     header.Size,
			})
			if err != nil {
				return fmt.Errorf("upload %s: %w", header.Filename, err)
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (s *service) Get(ctx context.Context, id access.Identity, documentID string) (models.Document, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return models.Document{}, err
	}
	if !s.visible(id, doc) {
		return models.Document{}, ErrNotVisible
	}
	s.audit(ctx, id.UserID, doc.ID, "view")
	return doc, nil
}

// listBatchSize is how many documents List pulls from the store per round
// while filling a page of visible ones.
const listBatchSize = 100

func (s *service) List(ctx context.Context, id access.Identity, limit, offset int) ([]models.Document, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	// Visibility is applied before pagination: limit and offset count only
	// documents the caller may see, so a run of newer invisible documents
	// cannot push a visible one off the page.
	filter := access.ForIdentity(id)
	visible := make([]models.Document, 0, limit)
	toSkip := offset
	for storeOffset := 0; ; storeOffset += listBatchSize {
		batch, err := s.store.ListDocuments(ctx, listBatchSize, storeOffset)
		if err != nil {
			return nil, err
		}
		for _, doc := range batch {
			if !filter(doc) && doc.UploaderID != id.UserID {
				continue
			}
			if toSkip > 0 {
				toSkip--
				continue
			}
			visible = append(visible, doc)
			if len(visible) == limit {
				return visible, nil
			}
		}
		if len(batch) < listBatchSize {
			return visible, nil
		}
	}
}

func (s *service) Update(ctx context.Context, id access.Identity, documentID string, update Update) (models.Document, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return models.Document{}, err
	}
	if doc.UploaderID != id.UserID && !id.Privileged {
		return models.Document{}, ErrForbidden
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title != "" {
			doc.Title = title
		}
	}
	if update.Category != nil {
		if !validCategory(*update.Category) {
			return models.Document{}, fmt.Errorf("%w: %s", ErrInvalidCategory, *update.Category)
		}
		doc.Category = *update.Category
	}

	if err := s.store.UpdateDocument(ctx, &doc); err != nil {
		return models.Document{}, fmt.Errorf("update document: %w", err)
	}
	s.audit(ctx, id.UserID, doc.ID, "update")
	return doc, nil
}

func (s *service) Delete(ctx context.Context, id access.Identity, documentID string) error {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.UploaderID != id.UserID && !id.Privileged {
		return ErrForbidden
	}

	if err := s.files.Delete(ctx, doc.FileKey); err != nil {
		s.logger.Error("Failed to delete stored file",
			logger.String("documentId", doc.ID),
			logger.String("fileKey", doc.FileKey),
			logger.Error(err),
		)
	}
	if err := s.store.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	s.audit(ctx, id.UserID, documentID, "delete")
	return nil
}

func (s *service) Reprocess(ctx context.Context, id access.Identity, documentID string) (string, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}
	if doc.UploaderID != id.UserID && !id.Privileged {
		return "", ErrForbidden
	}
	return s.enqueue(ctx, queue.TaskTypeDocumentReprocess, documentID)
}

func (s *service) ProcessingStatus(ctx context.Context, taskID string) (*queue.TaskStatus, error) {
	return s.queue.GetTaskStatus(ctx, taskID)
}

func (s *service) CancelProcessing(ctx context.Context, taskID string) error {
	if err := s.queue.CancelTask(ctx, taskID); err != nil {
		return err
	}
	s.logger.Info("Processing task cancelled", logger.String("taskId", taskID))
	return nil
}

func (s *service) AccessLogs(ctx context.Context, id access.Identity, limit int) ([]models.AccessLog, error) {
	if !id.Privileged {
		return nil, ErrForbidden
	}
	if limit <= 0 {
		limit = 100
	}
	return s.store.ListAccessLogs(ctx, limit)
}

func (s *service) enqueue(ctx context.Context, taskType, documentID string) (string, error) {
	task := &queue.Task{
		ID:        uuid.NewString(),
		Type:      taskType,
		Payload:   map[string]string{"documentId": documentID},
		CreatedAt: time.Now(),
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		return "", fmt.Errorf("enqueue task: %w", err)
	}

	initial := &queue.TaskStatus{
		TaskID:    task.ID,
		Status:    "pending",
		StartedAt: task.CreatedAt,
	}
	if err := s.queue.SaveFinalStatus(ctx, initial); err != nil {
		s.logger.Error("Failed to save initial task status",
			logger.String("taskId", task.ID),
			logger.Error(err),
		)
	}
	return task.ID, nil
}

func (s *service) validate(in UploadInput) error {
	if in.Size > s.maxSize {
		return fmt.Errorf("%w: %d bytes", ErrFileTooLarge, in.Size)
	}
	if len(s.allowed) == 0 {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(in.Filename))
	for _, allowed := range s.allowed {
		if allowed == ext {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrExtensionNotAllowed, ext)
}

// visible applies the role filter, with the uploader always able to see
// their own documents.
func (s *service) visible(id access.Identity, doc models.Document) bool {
	if doc.UploaderID == id.UserID {
		return true
	}
	return access.ForIdentity(id)(doc)
}

func (s *service) audit(ctx context.Context, userID, documentID, action string) {
	err := s.store.AppendAccessLog(ctx, models.AccessLog{
		ID:         uuid.NewString(),
		UserID:     userID,
		DocumentID: documentID,
		Action:     action,
		Timestamp:  time.Now(),
	})
	if err != nil {
		s.logger.Error("Failed to append access log",
			logger.String("documentId", documentID),
			logger.String("action", action),
			logger.Error(err),
		)
	}
}

func validCategory(category string) bool {
	for _, c := range models.Categories {
		if c == category {
			return true
		}
	}
	return false
}
