package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/erpcore/internal/application/crud"
	"github.com/erp/erpcore/internal/domain/inventory"
	"github.com/erp/erpcore/internal/domain/partner"
	"github.com/erp/erpcore/internal/domain/schema"
	"github.com/erp/erpcore/internal/domain/shared"
	"github.com/erp/erpcore/internal/infrastructure/persistence"
	"github.com/erp/erpcore/internal/testutil"
)

func fixedClock() time.Time {
	return time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
}

func newEngine(t *testing.T) *crud.Engine {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	return crud.NewEngine(schema.Default(), persistence.NewGormEntityStore(db))
}

func TestSeeder_Run(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()

	sum, err := New(engine, WithClock(fixedClock)).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, Vendors, sum["vendors"])
	assert.Equal(t, Products*Warehouses, sum["inventory"])
	assert.Equal(t, Orders*3, sum["sales_order_lines"])
	assert.Equal(t, Journals*2, sum["journal_lines"])
	assert.Equal(t, OpenItems, sum["accounts_receivable"])
	assert.Equal(t, 12, sum["forecasts"])
	assert.Equal(t, 1, sum["calendar_events"])

	rec, err := engine.Get(ctx, "vendors", 3)
	require.NoError(t, err)
	assert.Equal(t, "Vendor 3", rec.(*partner.Vendor).Name)
}

func TestSeeder_SkipsSeededStore(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()
	s := New(engine, WithClock(fixedClock))

	_, err := s.Run(ctx)
	require.NoError(t, err)

	sum, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Nil(t, sum)

	rows, err := engine.List(ctx, "vendors", shared.Page{Limit: 100})
	require.NoError(t, err)
	assert.Len(t, rows, Vendors)
}

func TestSeeder_Deterministic(t *testing.T) {
	ctx := context.Background()
	quantities := func() []string {
		engine := newEngine(t)
		_, err := New(engine, WithClock(fixedClock), WithSeed(7)).Run(ctx)
		require.NoError(t, err)
		rows, err := engine.List(ctx, "inventory", shared.Page{Limit: 10})
		require.NoError(t, err)
		out := make([]string, len(rows))
		for i, r := range rows {
			out[i] = r.(*inventory.Inventory).Quantity.String()
		}
		return out
	}

	assert.Equal(t, quantities(), quantities())
}
