package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/erp/erpcore/internal/interfaces/http/dto"
)

// BodyLimit caps the request body at maxBytes. Requests that declare a larger
// Content-Length are answered with 413 before the handler runs; bodies of
// unknown length fail with *http.MaxBytesError when the handler reads past
// the cap.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	msg := fmt.Sprintf("request body exceeds the %d byte limit", maxBytes)
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeRequestTooLarge, msg, "", GetRequestID(c)))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
