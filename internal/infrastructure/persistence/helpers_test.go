package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"

	"github.com/erp/erpcore/internal/domain/schema"
	"github.com/erp/erpcore/internal/infrastructure/config"
)

// newTestDatabase opens a migrated in-memory sqlite database
func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{
		Driver:   config.DriverSQLite,
		Path:     ":memory:",
		LogLevel: "silent",
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.AutoMigrate(context.Background(), schema.Default()))
	return db
}

// newMockDatabase creates a Database over sqlmock with the postgres dialector
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), nil)
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

func ptr[T any](v T) *T {
	return &v
}
