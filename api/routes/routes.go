package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docuvault/docuvault/api/handlers"
	"github.com/docuvault/docuvault/api/middleware"
)

// SetupRoutes wires all endpoints onto the engine.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, allowedOrigins []string) {
	r.Use(middleware.CORS(allowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Identity())

	docs := v1.Group("/documents")
	{
		docs.POST("", h.Document.Upload)
		docs.POST("/batch", h.Document.UploadBatch)
		docs.GET("", h.Document.List)
		docs.GET("/:id", h.Document.Get)
		docs.PUT("/:id", h.Document.Update)
		docs.DELETE("/:id", h.Document.Delete)
		docs.POST("/:id/reprocess", h.Document.Reprocess)
		docs.GET("/status/:taskId", h.Document.GetStatus)
		docs.DELETE("/status/:taskId", h.Document.CancelTask)
	}

	v1.POST("/search", h.Search.Search)
	v1.GET("/admin/access-logs", h.Document.AccessLogs)

	chat := v1.Group("/chat")
	{
		chat.POST("/sessions", h.Chat.CreateSession)
		chat.GET("/sessions/:sessionId", h.Chat.GetSession)
		chat.POST("/ask", h.Chat.Ask)
	}
}
