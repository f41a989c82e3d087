package router

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erp/erpcore/internal/application/crud"
	"github.com/erp/erpcore/internal/application/ingest"
	reportapp "github.com/erp/erpcore/internal/application/report"
	"github.com/erp/erpcore/internal/application/search"
	"github.com/erp/erpcore/internal/domain/schema"
	"github.com/erp/erpcore/internal/infrastructure/persistence"
	"github.com/erp/erpcore/internal/interfaces/http/handler"
	"github.com/erp/erpcore/internal/testutil"
)

type pingRoutes struct{}

func (pingRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/test/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	NewRouter(engine, WithAPIVersion("v1")).Register(pingRoutes{}).Setup()

	w := testutil.PerformRequest(engine, http.MethodGet, "/api/v1/test/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestNewEngine_NoRouteEnvelope(t *testing.T) {
	engine, err := NewEngine(Config{ServiceName: "test"}, zap.NewNop())
	require.NoError(t, err)

	w := testutil.PerformRequest(engine, http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	resp := testutil.DecodeJSON(t, w)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "NOT_FOUND", resp["error"].(map[string]any)["code"])
}

func TestNewEngine_RecoversPanics(t *testing.T) {
	engine, err := NewEngine(Config{ServiceName: "test"}, zap.NewNop())
	require.NoError(t, err)
	engine.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := testutil.PerformRequest(engine, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func newAPI(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	store := persistence.NewGormEntityStore(db)
	registry := schema.Default()
	c := crud.NewEngine(registry, store)

	engine, err := NewEngine(Config{ServiceName: "test"}, zap.NewNop())
	require.NoError(t, err)
	Mount(engine, Handlers{
		Entities: handler.NewEntityHandler(c, 0),
		Uploads:  handler.NewUploadHandler(ingest.NewEngine(c), 0),
		Search:   handler.NewSearchHandler(search.NewEngine(registry, store)),
		Reports:  handler.NewReportHandler(reportapp.NewReportService(persistence.NewGormReportRepository(db))),
		Health:   handler.NewHealthHandler(db),
	})
	return engine
}

func TestMount_RoutesDoNotShadowEachOther(t *testing.T) {
	api := newAPI(t)

	w := testutil.PerformRequest(api, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = testutil.PerformRequest(api, http.MethodPost, "/api/v1/products", map[string]any{"sku": "S-1", "name": "Spanner"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = testutil.PerformRequest(api, http.MethodPost, "/api/v1/warehouses", map[string]any{"name": "Main"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = testutil.PerformRequest(api, http.MethodGet, "/api/v1/search?q=span", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	hits := testutil.DecodeJSON(t, w)["data"].([]any)
	require.Len(t, hits, 1)
	assert.Equal(t, "products", hits[0].(map[string]any)["entity"])

	w = testutil.PerformRequest(api, http.MethodPost, "/api/v1/inventory/upsert",
		map[string]any{"product_id": 1, "warehouse_id": 1, "quantity": "4"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "inventory.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("product_id,warehouse_id,quantity\n1,1,6\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = httptest.NewRecorder()
	api.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(1), testutil.DecodeJSON(t, w)["data"].(map[string]any)["updated"])

	w = testutil.PerformRequest(api, http.MethodGet, "/api/v1/inventory/1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "10", testutil.DecodeJSON(t, w)["data"].(map[string]any)["quantity"])

	w = testutil.PerformRequest(api, http.MethodGet, "/api/v1/reports/inventory_metrics", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
