package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/logging"
)

const (
	HeaderRequestID = "X-Request-ID"
	// ContextKeyRequestID is the gin context key holding the request ID.
	ContextKeyRequestID = "request_id"
)

// RequestID reuses an incoming X-Request-ID or assigns a new one, echoes it
// on the response and stores it in both the gin and request contexts.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(logging.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// GetRequestID returns the ID set by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}
