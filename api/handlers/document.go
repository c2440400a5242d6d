package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/docuvault/docuvault/api/middleware"
	"github.com/docuvault/docuvault/internal/service/document"
	"github.com/docuvault/docuvault/internal/store"
	"github.com/docuvault/docuvault/pkg/logger"
	"github.com/docuvault/docuvault/pkg/queue"
)

type DocumentHandler struct {
	service document.Service
	logger  logger.Logger
}

func NewDocumentHandler(service document.Service, log logger.Logger) *DocumentHandler {
	return &DocumentHandler{service: service, logger: log}
}

// Upload ingests one file and schedules its processing.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid file upload", err)
		return
	}
	defer file.Close()

	result, err := h.service.Upload(c.Request.Context(), middleware.CallerIdentity(c), document.UploadInput{
		Reader:   file,
		Filename: header.Filename,
		Size:     header.Size,
	})
	if err != nil {
		h.handleError(c, uploadErrorStatus(err), "Failed to upload file", err)
		return
	}

	c.JSON(http.StatusAccepted, result)
}

// UploadBatch ingests every file in the multipart form.
func (h *DocumentHandler) UploadBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid form data", err)
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		h.handleError(c, http.StatusBadRequest, "No files provided", nil)
		return
	}

	results, err := h.service.UploadBatch(c.Request.Context(), middleware.CallerIdentity(c), files)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to upload files", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": fmt.Sprintf("Processing %d documents", len(results)),
		"results": results,
	})
}

// List returns the documents visible to the caller, newest first.
func (h *DocumentHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	docs, err := h.service.List(c.Request.Context(), middleware.CallerIdentity(c), limit, offset)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to list documents", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// Get returns one document if the caller may see it.
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.service.Get(c.Request.Context(), middleware.CallerIdentity(c), c.Param("id"))
	if err != nil {
		h.handleError(c, documentErrorStatus(err), "Failed to get document", err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Update edits a document's caller-editable fields.
func (h *DocumentHandler) Update(c *gin.Context) {
	var update document.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	doc, err := h.service.Update(c.Request.Context(), middleware.CallerIdentity(c), c.Param("id"), update)
	if err != nil {
		status := documentErrorStatus(err)
		if errors.Is(err, document.ErrInvalidCategory) {
			status = http.StatusBadRequest
		}
		h.handleError(c, status, "Failed to update document", err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Delete removes a document, its stored file and its embedding.
func (h *DocumentHandler) Delete(c *gin.Context) {
	err := h.service.Delete(c.Request.Context(), middleware.CallerIdentity(c), c.Param("id"))
	if err != nil {
		h.handleError(c, documentErrorStatus(err), "Failed to delete document", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}

// Reprocess schedules the document through the pipeline again.
func (h *DocumentHandler) Reprocess(c *gin.Context) {
	taskID, err := h.service.Reprocess(c.Request.Context(), middleware.CallerIdentity(c), c.Param("id"))
	if err != nil {
		h.handleError(c, documentErrorStatus(err), "Failed to reprocess document", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"taskId": taskID})
}

// GetStatus reports the state of a processing task.
func (h *DocumentHandler) GetStatus(c *gin.Context) {
	status, err := h.service.ProcessingStatus(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, queue.ErrTaskNotFound) {
			code = http.StatusNotFound
		}
		h.handleError(c, code, "Failed to get status", err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// CancelTask withdraws a processing task that has not run yet.
func (h *DocumentHandler) CancelTask(c *gin.Context) {
	err := h.service.CancelProcessing(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, queue.ErrTaskNotFound) {
			code = http.StatusNotFound
		}
		h.handleError(c, code, "Failed to cancel task", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task cancelled"})
}

// AccessLogs returns the audit trail to privileged callers.
func (h *DocumentHandler) AccessLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	logs, err := h.service.AccessLogs(c.Request.Context(), middleware.CallerIdentity(c), limit)
	if err != nil {
		h.handleError(c, documentErrorStatus(err), "Failed to list access logs", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func uploadErrorStatus(err error) int {
	switch {
	case errors.Is(err, document.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, document.ErrExtensionNotAllowed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func documentErrorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, document.ErrNotVisible):
		return http.StatusNotFound
	case errors.Is(err, document.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (h *DocumentHandler) handleError(c *gin.Context, status int, message string, err error) {
	h.logger.Error(message,
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)

	response := ErrorResponse{Message: message}
	if err != nil {
		response.Error = err.Error()
	}
	c.JSON(status, response)
}
