package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docuvault/docuvault/internal/access"
)

const identityKey = "identity"

// Identity reads the caller identity established by the upstream auth proxy
// from request headers. Requests without a user ID are rejected; this service
// never authenticates on its own.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing X-User-ID header",
			})
			return
		}

		c.Set(identityKey, access.Identity{
			UserID:     userID,
			Role:       c.GetHeader("X-User-Role"),
			Privileged: c.GetHeader("X-User-Privileged") == "true",
		})
		c.Next()
	}
}

// CallerIdentity returns the identity stored by the Identity middleware.
func CallerIdentity(c *gin.Context) access.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(access.Identity); ok {
			return id
		}
	}
	return access.Identity{}
}
