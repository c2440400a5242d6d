package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docuvault/docuvault/api/middleware"
	"github.com/docuvault/docuvault/internal/access"
	"github.com/docuvault/docuvault/internal/search"
	"github.com/docuvault/docuvault/pkg/logger"
)

type SearchHandler struct {
	engine      *search.Engine
	defaultTopK int
	logger      logger.Logger
}

func NewSearchHandler(engine *search.Engine, defaultTopK int, log logger.Logger) *SearchHandler {
	return &SearchHandler{engine: engine, defaultTopK: defaultTopK, logger: log}
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"topK"`
}

// Search ranks the caller's visible documents against a free-text query.
func (h *SearchHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}

	topK := req.TopK
	if topK <= 0 {
		topK = h.defaultTopK
	}

	filter := access.ForIdentity(middleware.CallerIdentity(c))
	results, err := h.engine.Search(c.Request.Context(), req.Query, filter, topK)
	if err != nil {
		if errors.Is(err, search.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Query is required"})
			return
		}
		h.logger.Error("Search failed",
			logger.String("query", req.Query),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Search failed",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}
