package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type requestIDKey struct{}

// RequestID tags every request with an identifier, echoed back in the
// X-Request-ID response header. An identifier supplied by an upstream proxy
// is reused so traces line up across hops.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}

		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), requestIDKey{}, id))
		c.Set("requestID", id)
		c.Header("X-Request-ID", id)

		c.Next()
	}
}

// RequestIDFromContext extracts the identifier placed by RequestID, or ""
// when the middleware did not run.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
