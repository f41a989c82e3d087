package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/erp/erpcore/internal/application/search"
	"github.com/erp/erpcore/internal/interfaces/http/dto"
	"github.com/erp/erpcore/internal/interfaces/http/middleware"
)

// SearchHandler serves the cross-entity search
type SearchHandler struct {
	BaseHandler
	engine *search.Engine
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(engine *search.Engine) *SearchHandler {
	return &SearchHandler{engine: engine}
}

// RegisterRoutes mounts the search route on rg
func (h *SearchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search", h.Search)
}

// Search handles GET /search: search names and SKUs across master data
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	hits, err := h.engine.Search(c.Request.Context(), req.Q, req.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, hits)
}
