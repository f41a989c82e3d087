package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/erpcore/internal/interfaces/http/dto"
)

// limitedRouter echoes the body length, or reports the read error type
func limitedRouter(maxBytes int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.POST("/vendors", BodyLimit(maxBytes), func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.String(http.StatusRequestEntityTooLarge, "limit %d", tooLarge.Limit)
			return
		}
		c.String(http.StatusOK, "%d", len(body))
	})
	return r
}

func TestBodyLimit_WithinLimit(t *testing.T) {
	r := limitedRouter(64)
	req := httptest.NewRequest(http.MethodPost, "/vendors", strings.NewReader(`{"name":"Acme"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "15", w.Body.String())
}

func TestBodyLimit_DeclaredLengthRejectedUpFront(t *testing.T) {
	r := limitedRouter(16)
	req := httptest.NewRequest(http.MethodPost, "/vendors", strings.NewReader(strings.Repeat("x", 40)))
	req.Header.Set(RequestIDHeader, "req-413")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeRequestTooLarge, resp.Error.Code)
	assert.Equal(t, "req-413", resp.Error.RequestID)
	assert.Contains(t, resp.Error.Message, "16 byte")
}

func TestBodyLimit_StreamedBodyFailsOnRead(t *testing.T) {
	r := limitedRouter(16)
	req := httptest.NewRequest(http.MethodPost, "/vendors", strings.NewReader(strings.Repeat("x", 40)))
	req.ContentLength = -1
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "limit 16", w.Body.String())
}
