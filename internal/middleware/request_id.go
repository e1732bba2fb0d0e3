package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// RequestID honors a caller-supplied X-Request-Id only when it is a valid
// UUID; anything else is replaced so logs cannot be polluted.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}

		c.Set(requestIDHeader, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)

		c.Next()
	}
}

// RequestIDFrom returns the id assigned to this request, or "" when the
// middleware has not run.
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDHeader)
}
