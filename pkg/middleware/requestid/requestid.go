// Package requestid correlates log lines and error envelopes per request.
package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the correlation id. A client-supplied value is kept so
// the frontend can tie a review submission to its server-side log lines.
const Header = "X-Request-ID"

const contextKey = "request_id"

// maxClientIDLength bounds what we accept from the wire before minting
// our own id instead.
const maxClientIDLength = 64

// Middleware ensures every request carries a correlation id and echoes it
// back on the response.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" || len(id) > maxClientIDLength {
			id = uuid.NewString()
		}

		c.Set(contextKey, id)
		c.Header(Header, id)

		c.Next()
	}
}

// Value returns the request id assigned by Middleware, or "" outside it.
func Value(c *gin.Context) string {
	if v, exists := c.Get(contextKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
