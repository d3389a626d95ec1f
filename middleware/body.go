package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// LimitBody refuses requests whose body is larger than limit bytes. A
// declared length over the limit is refused before reading; otherwise reads
// past the limit fail with *http.MaxBytesError.
func LimitBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			HTTPHelper.SendPayloadTooLargeError(c, TooLargeMessage(limit))
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// TooLargeMessage is the reply text for a body over limit.
func TooLargeMessage(limit int64) string {
	return fmt.Sprintf("Upload must be %dMB or smaller", limit>>20)
}
