package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/erp/erpcore/internal/application/ingest"
	"github.com/erp/erpcore/internal/domain/shared"
	"github.com/erp/erpcore/internal/interfaces/http/dto"
	"github.com/erp/erpcore/internal/interfaces/http/middleware"
)

// DefaultMaxUploadSize applies when no upload limit is configured
const DefaultMaxUploadSize int64 = 32 << 20

// UploadHandler serves bulk uploads of CSV, TSV and XLSX files
type UploadHandler struct {
	BaseHandler
	ingest        *ingest.Engine
	maxUploadSize int64
}

// NewUploadHandler creates a new UploadHandler. maxUploadSize of zero or
// less means DefaultMaxUploadSize.
func NewUploadHandler(engine *ingest.Engine, maxUploadSize int64) *UploadHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return &UploadHandler{ingest: engine, maxUploadSize: maxUploadSize}
}

// RegisterRoutes mounts the upload route on rg with its own body limit
func (h *UploadHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:entity/upload", middleware.BodyLimit(h.maxUploadSize), h.Upload)
}

// Upload handles POST /{entity}/upload: bulk load a file into an entity
func (h *UploadHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			h.HandleError(c, err)
		case errors.Is(err, http.ErrMissingFile):
			h.HandleError(c, shared.Validation("file", "file is required"))
		default:
			h.BadRequest(c, "request must be multipart/form-data with a file field")
		}
		return
	}
	defer func() { _ = file.Close() }()

	var req dto.UploadRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	hint := ingest.FormatHint{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Sheet:       req.Sheet,
	}
	result, err := h.ingest.Ingest(c.Request.Context(), c.Param("entity"), file, hint, ingest.Options{Mode: ingest.Mode(req.Mode)})
	if err != nil {
		if result != nil {
			h.HandleErrorWithData(c, err, result)
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
