package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/erp/erpcore/internal/domain/shared"
	"github.com/erp/erpcore/internal/infrastructure/logger"
	"github.com/erp/erpcore/internal/interfaces/http/dto"
	"github.com/erp/erpcore/internal/interfaces/http/handler"
	"github.com/erp/erpcore/internal/interfaces/http/middleware"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		registrars: make([]RouteRegistrar, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)

	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// Config holds the settings of the gin engine
type Config struct {
	ServiceName    string
	Tracing        bool
	TrustedProxies []string
	// Meter records HTTP server metrics; nil disables them
	Meter metric.Meter
}

// NewEngine creates a gin engine with recovery, request ids, tracing,
// metrics and request logging installed
func NewEngine(cfg Config, log *zap.Logger) (*gin.Engine, error) {
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{ServiceName: cfg.ServiceName, Enabled: cfg.Tracing}),
		middleware.SpanAttributes(),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(cfg.Meter),
		logger.GinMiddleware(log),
	)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			shared.CodeNotFound, "route not found", "", middleware.GetRequestID(c)))
	})
	return engine, nil
}

// Handlers groups the handlers served by the engine
type Handlers struct {
	Entities *handler.EntityHandler
	Uploads  *handler.UploadHandler
	Search   *handler.SearchHandler
	Reports  *handler.ReportHandler
	Health   *handler.HealthHandler
}

// Mount registers the health check at the root and the API handlers under
// /api/<version>
func Mount(engine *gin.Engine, h Handlers, opts ...RouterOption) *Router {
	if h.Health != nil {
		engine.GET("/health", h.Health.Health)
	}

	r := NewRouter(engine, opts...)
	if h.Search != nil {
		r.Register(h.Search)
	}
	if h.Reports != nil {
		r.Register(h.Reports)
	}
	if h.Uploads != nil {
		r.Register(h.Uploads)
	}
	if h.Entities != nil {
		r.Register(h.Entities)
	}
	r.Setup()
	return r
}
