package handlers

import (
	"github.com/docuvault/docuvault/internal/chat"
	"github.com/docuvault/docuvault/internal/search"
	"github.com/docuvault/docuvault/internal/service/document"
	"github.com/docuvault/docuvault/pkg/logger"
)

// Handlers bundles the HTTP handlers for route setup.
type Handlers struct {
	Document *DocumentHandler
	Search   *SearchHandler
	Chat     *ChatHandler
}

func NewHandlers(
	documentService document.Service,
	searchEngine *search.Engine,
	chatService *chat.Service,
	defaultTopK int,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Document: NewDocumentHandler(documentService, log),
		Search:   NewSearchHandler(searchEngine, defaultTopK, log),
		Chat:     NewChatHandler(chatService, log),
	}
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
}
