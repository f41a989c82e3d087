package handler

import (
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/erp/erpcore/internal/application/crud"
	"github.com/erp/erpcore/internal/application/ingest"
	reportapp "github.com/erp/erpcore/internal/application/report"
	"github.com/erp/erpcore/internal/application/search"
	"github.com/erp/erpcore/internal/domain/schema"
	"github.com/erp/erpcore/internal/infrastructure/persistence"
	"github.com/erp/erpcore/internal/interfaces/http/middleware"
	"github.com/erp/erpcore/internal/testutil"
)

type testServer struct {
	router *gin.Engine
	db     *persistence.Database
	crud   *crud.Engine
}

// newTestServer mounts every API handler on a fresh in-memory database
func newTestServer(t *testing.T, maxUpload int64) *testServer {
	t.Helper()
	middleware.SetupValidator()

	db := testutil.NewTestDatabase(t)
	store := persistence.NewGormEntityStore(db)
	registry := schema.Default()
	c := crud.NewEngine(registry, store)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.GET("/health", NewHealthHandler(db).Health)
	api := router.Group("/api/v1")
	NewSearchHandler(search.NewEngine(registry, store)).RegisterRoutes(api)
	NewReportHandler(reportapp.NewReportService(persistence.NewGormReportRepository(db))).RegisterRoutes(api)
	NewUploadHandler(ingest.NewEngine(c), maxUpload).RegisterRoutes(api)
	NewEntityHandler(c, 0).RegisterRoutes(api)

	return &testServer{router: router, db: db, crud: c}
}

func errorOf(resp map[string]any) map[string]any {
	e, _ := resp["error"].(map[string]any)
	return e
}
