package document

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuvault/docuvault/config"
	"github.com/docuvault/docuvault/internal/access"
	"github.com/docuvault/docuvault/internal/models"
	"github.com/docuvault/docuvault/internal/store"
	"github.com/docuvault/docuvault/internal/store/memory"
	"github.com/docuvault/docuvault/pkg/logger"
	"github.com/docuvault/docuvault/pkg/queue"
	"github.com/docuvault/docuvault/pkg/storage/local"
)

type stubQueue struct {
	enqueued  []*queue.Task
	cancelled []string
	statuses  map[string]*queue.TaskStatus
}

func newStubQueue() *stubQueue {
	return &stubQueue{statuses: make(map[string]*queue.TaskStatus)}
}

func (q *stubQueue) Enqueue(ctx context.Context, task *queue.Task) error {
	q.enqueued = append(q.enqueued, task)
	return nil
}

func (q *stubQueue) GetTaskStatus(ctx context.Context, taskID string) (*queue.TaskStatus, error) {
	status, ok := q.statuses[taskID]
	if !ok {
		return nil, queue.ErrTaskNotFound
	}
	return status, nil
}

func (q *stubQueue) CancelTask(ctx context.Context, taskID string) error {
	if _, ok := q.statuses[taskID]; !ok {
		return queue.ErrTaskNotFound
	}
	q.cancelled = append(q.cancelled, taskID)
	return nil
}

func (q *stubQueue) SaveFinalStatus(ctx context.Context, status *queue.TaskStatus) error {
	q.statuses[status.TaskID] = status
	return nil
}

type fixture struct {
	store   *memory.Store
	queue   *stubQueue
	service Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewTestLogger()
	files, err := local.New(config.LocalStorageConfig{Dir: t.TempDir()}, log)
	require.NoError(t, err)

	s := memory.NewStore()
	q := newStubQueue()
	svc := NewService(s, files, q, Config{MaxFileSize: 1024}, log)
	return &fixture{store: s, queue: q, service: svc}
}

var uploader = access.Identity{UserID: "u1", Role: models.CategoryHR}

func TestUploadCreatesDocumentAndEnqueues(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	result, err := f.service.Upload(ctx, uploader, UploadInput{
		Reader:   strings.NewReader("some text"),
		Filename: "notes.txt",
		Size:     9,
	})
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "notes.txt", doc.Title)
	assert.Equal(t, models.CategoryUnknown, doc.Category)
	assert.Equal(t, models.FileTypeTxt, doc.FileType)
	assert.Equal(t, "u1", doc.UploaderID)
	assert.Contains(t, doc.FileKey, doc.ID)

	stored, err := f.store.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, stored.ID)

	require.Len(t, f.queue.enqueued, 1)
	task := f.queue.enqueued[0]
	assert.Equal(t, queue.TaskTypeDocumentProcess, task.Type)
	assert.Equal(t, doc.ID, task.Payload["documentId"])
	assert.Equal(t, result.TaskID, task.ID)

	status, err := f.service.ProcessingStatus(ctx, result.TaskID)
	require.NoError(t, err)
	assert.Equal(t, "pending", status.Status)

	logs, err := f.store.ListAccessLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "upload", logs[0].Action)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Upload(context.Background(), uploader, UploadInput{
		Reader:   strings.NewReader("x"),
		Filename: "big.txt",
		Size:     2048,
	})
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Empty(t, f.queue.enqueued)
}

func TestUploadExtensionAllowList(t *testing.T) {
	log := logger.NewTestLogger()
	files, err := local.New(config.LocalStorageConfig{Dir: t.TempDir()}, log)
	require.NoError(t, err)
	svc := NewService(memory.NewStore(), files, newStubQueue(), Config{
		MaxFileSize:       1024,
		AllowedExtensions: []string{".pdf", ".txt"},
	}, log)

	_, err = svc.Upload(context.Background(), uploader, UploadInput{
		Reader: strings.NewReader("x"), Filename: "notes.txt", Size: 1,
	})
	require.NoError(t, err)

	_, err = svc.Upload(context.Background(), uploader, UploadInput{
		Reader: strings.NewReader("x"), Filename: "movie.avi", Size: 1,
	})
	assert.ErrorIs(t, err, ErrExtensionNotAllowed)
}

func TestGetAppliesVisibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	result, err := f.service.Upload(ctx, uploader, UploadInput{
		Reader: strings.NewReader("x"), Filename: "notes.txt", Size: 1,
	})
	require.NoError(t, err)

	// Classify it so the role filter bites.
	doc := result.Document
	doc.Category = models.CategoryFinance
	require.NoError(t, f.store.UpdateDocument(ctx, &doc))

	// The uploader still sees their own document.
	_, err = f.service.Get(ctx, uploader, doc.ID)
	require.NoError(t, err)

	// Another HR user does not see a Finance document.
	_, err = f.service.Get(ctx, access.Identity{UserID: "u2", Role: models.CategoryHR}, doc.ID)
	assert.ErrorIs(t, err, ErrNotVisible)

	// A Finance user does.
	_, err = f.service.Get(ctx, access.Identity{UserID: "u3", Role: models.CategoryFinance}, doc.ID)
	require.NoError(t, err)

	// So does a privileged user of any role.
	_, err = f.service.Get(ctx, access.Identity{UserID: "admin", Role: models.CategoryHR, Privileged: true}, doc.ID)
	require.NoError(t, err)
}

func TestListFiltersByRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, category := range []string{models.CategoryFinance, models.CategoryHR, models.CategoryUnknown} {
		result, err := f.service.Upload(ctx, uploader, UploadInput{
			Reader: strings.NewReader("x"), Filename: "doc.txt", Size: 1,
		})
		require.NoError(t, err)
		doc := result.Document
		doc.Category = category
		require.NoError(t, f.store.UpdateDocument(ctx, &doc))
	}

	// HR viewer: sees HR and Unknown, not Finance.
	docs, err := f.service.List(ctx, access.Identity{UserID: "viewer", Role: models.CategoryHR}, 10, 0)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, doc := range docs {
		assert.NotEqual(t, models.CategoryFinance, doc.Category)
	}

	// The uploader sees all three regardless of category.
	docs, err = f.service.List(ctx, uploader, 10, 0)
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestListPaginatesVisibleDocumentsOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// One HR document, then ten newer Finance ones on top of it.
	categories := []string{models.CategoryHR}
	for i := 0; i < 10; i++ {
		categories = append(categories, models.CategoryFinance)
	}
	var hrDocID string
	for i, category := range categories {
		result, err := f.service.Upload(ctx, uploader, UploadInput{
			Reader: strings.NewReader("x"), Filename: "doc.txt", Size: 1,
		})
		require.NoError(t, err)
		doc := result.Document
		doc.Category = category
		require.NoError(t, f.store.UpdateDocument(ctx, &doc))
		if i == 0 {
			hrDocID = doc.ID
		}
	}

	// The HR document lands on the HR caller's first page even though ten
	// newer Finance documents precede it in the store.
	viewer := access.Identity{UserID: "viewer", Role: models.CategoryHR}
	docs, err := f.service.List(ctx, viewer, 5, 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, hrDocID, docs[0].ID)

	// Offset counts visible documents, so the next page is empty.
	docs, err = f.service.List(ctx, viewer, 5, 1)
	require.NoError(t, err)
	assert.Empty(t, docs)

	// A Finance caller pages through the ten Finance documents.
	financeViewer := access.Identity{UserID: "viewer", Role: models.CategoryFinance}
	docs, err = f.service.List(ctx, financeViewer, 6, 0)
	require.NoError(t, err)
	assert.Len(t, docs, 6)
	docs, err = f.service.List(ctx, financeViewer, 6, 6)
	require.NoError(t, err)
	assert.Len(t, docs, 4)
}

func TestUpdateOwnershipAndCategory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	result, err := f.service.Upload(ctx, uploader, UploadInput{
		Reader: strings.NewReader("x"), Filename: "doc.txt", Size: 1,
	})
	require.NoError(t, err)
	docID := result.Document.ID

	title := "Quarterly Report"
	category := models.CategoryFinance
	updated, err := f.service.Update(ctx, uploader, docID, Update{Title: &title, Category: &category})
	require.NoError(t, err)
	assert.Equal(t, "Quarterly Report", updated.Title)
	assert.Equal(t, models.CategoryFinance, updated.Category)

	bad := "Gossip"
	_, err = f.service.Update(ctx, uploader, docID, Update{Category: &bad})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = f.service.Update(ctx, access.Identity{UserID: "u2", Role: models.CategoryFinance}, docID, Update{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteRemovesDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	result, err := f.service.Upload(ctx, uploader, UploadInput{
		Reader: strings.NewReader("x"), Filename: "doc.txt", Size: 1,
	})
	require.NoError(t, err)
	docID := result.Document.ID

	err = f.service.Delete(ctx, access.Identity{UserID: "u2", Role: models.CategoryHR}, docID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.service.Delete(ctx, uploader, docID))
	_, err = f.store.GetDocument(ctx, docID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAccessLogsPrivilegedOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.service.Upload(ctx, uploader, UploadInput{
		Reader: strings.NewReader("x"), Filename: "doc.txt", Size: 1,
	})
	require.NoError(t, err)

	_, err = f.service.AccessLogs(ctx, uploader, 10)
	assert.ErrorIs(t, err, ErrForbidden)

	logs, err := f.service.AccessLogs(ctx, access.Identity{UserID: "admin", Privileged: true}, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "upload", logs[0].Action)
}

func TestCancelProcessing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	result, err := f.service.Upload(ctx, uploader, UploadInput{
		Reader: strings.NewReader("x"), Filename: "doc.txt", Size: 1,
	})
	require.NoError(t, err)

	require.NoError(t, f.service.CancelProcessing(ctx, result.TaskID))
	assert.Equal(t, []string{result.TaskID}, f.queue.cancelled)

	err = f.service.CancelProcessing(ctx, "no-such-task")
	assert.ErrorIs(t, err, queue.ErrTaskNotFound)
}

func TestReprocessEnqueuesReprocessTask(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	result, err := f.service.Upload(ctx, uploader, UploadInput{
		Reader: strings.NewReader("x"), Filename: "doc.txt", Size: 1,
	})
	require.NoError(t, err)

	taskID, err := f.service.Reprocess(ctx, uploader, result.Document.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, taskID)

	require.Len(t, f.queue.enqueued, 2)
	assert.Equal(t, queue.TaskTypeDocumentReprocess, f.queue.enqueued[1].Type)
}
