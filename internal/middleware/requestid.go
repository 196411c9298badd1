package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID is the request id header honored and echoed by RequestID.
const HeaderRequestID = "X-Request-ID"

// ContextRequestID is the gin context key the request id is stored under.
const ContextRequestID = "request_id"

// RequestID tags every request with an id for log correlation, generating
// one when the client did not send its own.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Next()
	}
}
