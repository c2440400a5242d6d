package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docuvault/docuvault/api/middleware"
	"github.com/docuvault/docuvault/internal/chat"
	"github.com/docuvault/docuvault/internal/store"
	"github.com/docuvault/docuvault/pkg/logger"
)

type ChatHandler struct {
	service *chat.Service
	logger  logger.Logger
}

func NewChatHandler(service *chat.Service, log logger.Logger) *ChatHandler {
	return &ChatHandler{service: service, logger: log}
}

type createSessionRequest struct {
	DocumentID string `json:"documentId"`
}

// CreateSession opens a chat session on a processed document.
func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DocumentID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "documentId is required"})
		return
	}

	id := middleware.CallerIdentity(c)
	session, err := h.service.CreateSession(c.Request.Context(), id.UserID, req.DocumentID)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, chat.ErrSummaryMissing):
			status = http.StatusBadRequest
		case errors.Is(err, store.ErrNotFound):
			status = http.StatusNotFound
		}
		h.logger.Error("Failed to create chat session",
			logger.String("documentId", req.DocumentID),
			logger.Error(err),
		)
		c.JSON(status, ErrorResponse{Message: "Failed to create session", Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": session.ID,
		"history":   session.History,
	})
}

type askRequest struct {
	SessionID string `json:"sessionId"`
	Question  string `json:"question"`
}

// Ask answers a question within a session.
func (h *ChatHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" || req.Question == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "sessionId and question are required"})
		return
	}

	id := middleware.CallerIdentity(c)
	answer, session, err := h.service.Ask(c.Request.Context(), id.UserID, req.SessionID, req.Question)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, chat.ErrSessionNotFound):
			status = http.StatusNotFound
		case errors.Is(err, chat.ErrSummaryMissing), errors.Is(err, chat.ErrQuestionRequired):
			status = http.StatusBadRequest
		}
		h.logger.Error("Failed to answer question",
			logger.String("sessionId", req.SessionID),
			logger.Error(err),
		)
		c.JSON(status, ErrorResponse{Message: "Failed to answer question", Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"answer":    answer,
		"sessionId": session.ID,
		"history":   session.History,
	})
}

// GetSession returns a session and its history.
func (h *ChatHandler) GetSession(c *gin.Context) {
	id := middleware.CallerIdentity(c)
	session, err := h.service.GetSession(c.Request.Context(), id.UserID, c.Param("sessionId"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chat.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, ErrorResponse{Message: "Failed to get session", Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}
