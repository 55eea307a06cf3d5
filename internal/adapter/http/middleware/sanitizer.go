package middleware

import (
	"net/http"

	"money-transfer-service/pkg/apperror"
	"money-transfer-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// MaxBodySize limits the request body. A declared Content-Length over the limit is
// rejected up front; otherwise the reader fails once the limit is crossed and the
// handler reports it as 413.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, apperror.ErrBodyTooLarge())
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
