package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/erpcore/internal/infrastructure/config"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		driver string
		name   string
	}{
		{config.DriverPostgres, "postgres"},
		{config.DriverSQLite, "sqlite"},
		{config.DriverMySQL, "mysql"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := Dialector(&config.DatabaseConfig{Driver: tt.driver, Path: ":memory:", Host: "localhost", Port: 1})
			require.NoError(t, err)
			assert.Equal(t, tt.name, d.Name())
		})
	}

	_, err := Dialector(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestNewDatabase_SQLite(t *testing.T) {
	db := newTestDatabase(t)

	require.NoError(t, db.Ping(context.Background()))

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)

	for _, table := range []string{"vendors", "journal_entry_lines", "inventory", "calendar_events", "fx_rates"} {
		assert.True(t, db.DB.Migrator().HasTable(table), table)
	}
	assert.True(t, db.DB.Migrator().HasIndex("inventory", "idx_inventory_product_warehouse"))
}

func TestDatabase_PingAfterClose(t *testing.T) {
	db := newTestDatabase(t)

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}
