package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erp/erpcore/internal/domain/shared"
	"github.com/erp/erpcore/internal/infrastructure/logger"
	"github.com/erp/erpcore/internal/interfaces/http/dto"
	"github.com/erp/erpcore/internal/interfaces/http/middleware"
)

// healthTimeout bounds the store ping of one health check
const healthTimeout = 2 * time.Second

// Pinger checks that the store answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and store health check
type HealthHandler struct {
	BaseHandler
	db Pinger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health handles GET /health: service and database health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logger.L(ctx).Warn("Health check failed", zap.Error(err))
		resp := dto.NewErrorResponseWithRequestID(shared.CodeStoreUnavailable,
			"database is unavailable", "", middleware.GetRequestID(c))
		resp.Data = dto.HealthResponse{Status: "degraded", Database: "unavailable"}
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	h.Success(c, dto.HealthResponse{Status: "ok", Database: "ok"})
}
