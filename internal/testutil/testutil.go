// Package testutil provides helpers shared by the package tests: migrated
// in-memory databases, sqlmock-backed databases and gin test requests.
package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"

	"github.com/erp/erpcore/internal/domain/schema"
	"github.com/erp/erpcore/internal/infrastructure/config"
	"github.com/erp/erpcore/internal/infrastructure/persistence"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewTestDatabase opens an in-memory sqlite database with every entity of
// the default schema migrated. It is closed when the test ends.
func NewTestDatabase(t *testing.T) *persistence.Database {
	t.Helper()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:   config.DriverSQLite,
		Path:     ":memory:",
		LogLevel: "silent",
	}, zap.NewNop())
	require.NoError(t, err, "Failed to open sqlite database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.AutoMigrate(context.Background(), schema.Default()), "Failed to migrate")
	return db
}

// MockDB wraps a database backed by sqlmock with the postgres dialector.
type MockDB struct {
	Database *persistence.Database
	Mock     sqlmock.Sqlmock
	SqlDB    *sql.DB
}

// NewMockDB creates a sqlmock database. It is closed when the test ends.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := persistence.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), nil)
	require.NoError(t, err, "Failed to open GORM connection")

	return &MockDB{
		Database: &persistence.Database{DB: gormDB},
		Mock:     mock,
		SqlDB:    mockDB,
	}
}

// ExpectationsWereMet verifies that all expectations were met.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// PerformRequest sends a request through router and returns the recorder.
// A non-nil body that is not an io.Reader is sent as JSON.
func PerformRequest(router http.Handler, method, path string, body any, headers ...map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	isJSON := false
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	default:
		data, err := json.Marshal(b)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewReader(data)
		isJSON = true
	}

	req := httptest.NewRequest(method, path, reader)
	if isJSON {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for k, v := range h {
			req.Header.Set(k, v)
		}
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// DecodeJSON unmarshals the recorded response body into a generic map.
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "Failed to decode response: %s", w.Body.String())
	return out
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
