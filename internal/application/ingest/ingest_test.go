package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/erp/erpcore/internal/application/crud"
	"github.com/erp/erpcore/internal/domain/catalog"
	"github.com/erp/erpcore/internal/domain/inventory"
	"github.com/erp/erpcore/internal/domain/schema"
	"github.com/erp/erpcore/internal/domain/shared"
	"github.com/erp/erpcore/internal/infrastructure/persistence"
	"github.com/erp/erpcore/internal/infrastructure/tabular"
	"github.com/erp/erpcore/internal/infrastructure/telemetry"
	"github.com/erp/erpcore/internal/testutil"
)

func newTestEngines(t *testing.T, opts ...Option) (*Engine, *crud.Engine) {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	c := crud.NewEngine(schema.Default(), persistence.NewGormEntityStore(db))
	return NewEngine(c, opts...), c
}

// vendorCSV builds a vendors file of n rows; rows listed in blank have no name
func vendorCSV(n int, blank ...int) string {
	var b strings.Builder
	b.WriteString("Name,Email,Phone\n")
	for i := 1; i <= n; i++ {
		name := fmt.Sprintf("Vendor %02d", i)
		for _, j := range blank {
			if i == j {
				name = ""
			}
		}
		fmt.Fprintf(&b, "%s,v%d@example.test,555-%04d\n", name, i, i)
	}
	return b.String()
}

func csvHint() FormatHint {
	return FormatHint{Filename: "upload.csv"}
}

func count(t *testing.T, c *crud.Engine, name string) int {
	t.Helper()
	records, err := c.List(context.Background(), name, shared.Page{Limit: 1000})
	require.NoError(t, err)
	return len(records)
}

func TestIngest_CollectsRowErrors(t *testing.T) {
	e, c := newTestEngines(t)

	result, err := e.Ingest(context.Background(), "vendors", strings.NewReader(vendorCSV(10, 5)), csvHint(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 9, result.Inserted)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, ModeCollect, result.Mode)
	assert.Equal(t, tabular.FormatCSV, result.Format)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 5, result.Errors[0].Row)
	assert.Equal(t, shared.CodeValidation, result.Errors[0].Code)
	assert.Equal(t, "name", result.Errors[0].Column)
	assert.False(t, result.Truncated)

	assert.Equal(t, 9, count(t, c, "vendors"))
}

func TestIngest_AbortRollsBackBatch(t *testing.T) {
	e, c := newTestEngines(t)

	result, err := e.Ingest(context.Background(), "vendors", strings.NewReader(vendorCSV(10, 5)), csvHint(),
		Options{Mode: ModeAbort})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))
	assert.Contains(t, err.Error(), "row 5")

	require.NotNil(t, result)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, count(t, c, "vendors"))
}

func TestIngest_DefaultModeFromEngine(t *testing.T) {
	e, _ := newTestEngines(t, WithDefaults(Options{Mode: ModeAbort}))

	_, err := e.Ingest(context.Background(), "vendors", strings.NewReader(vendorCSV(3, 2)), csvHint(), Options{})
	assert.Error(t, err)
}

func TestIngest_ErrorListIsCapped(t *testing.T) {
	e, _ := newTestEngines(t)

	result, err := e.Ingest(context.Background(), "vendors", strings.NewReader(vendorCSV(6, 1, 2, 3, 4)), csvHint(),
		Options{MaxErrors: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 4, result.Failed)
	assert.Len(t, result.Errors, 2)
	assert.True(t, result.Truncated)
	assert.Equal(t, []int{1, 2}, []int{result.Errors[0].Row, result.Errors[1].Row})
}

func TestIngest_DuplicateWithinFileIsConflict(t *testing.T) {
	e, _ := newTestEngines(t)
	data := "name\nAcme\nGlobex\nacme\nAcme\n"

	result, err := e.Ingest(context.Background(), "customers", strings.NewReader(data), csvHint(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Inserted)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 4, result.Errors[0].Row)
	assert.Equal(t, shared.CodeConflict, result.Errors[0].Code)
}

func TestIngest_BlankRowsAreSkipped(t *testing.T) {
	e, c := newTestEngines(t)
	data := "name,email\nA,\n,\nB,\n"

	result, err := e.Ingest(context.Background(), "warehouses", strings.NewReader(data), csvHint(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 2, count(t, c, "warehouses"))
}

func TestIngest_InvalidUTF8PastSniffWindowIsRowError(t *testing.T) {
	e, c := newTestEngines(t)
	data := vendorCSV(200) + "Bad\xff\xfeName,bad@example.test,555-9999\n"
	require.Greater(t, len(data), 4096)

	result, err := e.Ingest(context.Background(), "vendors", strings.NewReader(data), csvHint(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 200, result.Inserted)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 201, result.Errors[0].Row)
	assert.Equal(t, "name", result.Errors[0].Column)
	assert.Equal(t, shared.CodeValidation, result.Errors[0].Code)
	assert.Equal(t, 200, count(t, c, "vendors"))
}

func TestIngest_OutOfRangeValuesAreRowErrors(t *testing.T) {
	e, c := newTestEngines(t)
	data := "sku,name,price\nA-1,Anvil,10\nB-2,Bolt,123456789012345678.99\nC-3,Clamp,5\n"

	result, err := e.Ingest(context.Background(), "products", strings.NewReader(data), csvHint(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Inserted)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Equal(t, "price", result.Errors[0].Column)
	assert.Equal(t, shared.CodeValidation, result.Errors[0].Code)
	assert.Equal(t, 2, count(t, c, "products"))
}

func TestIngest_InventoryUpsertAccumulates(t *testing.T) {
	e, c := newTestEngines(t)
	ctx := context.Background()
	_, err := c.Create(ctx, "products", crud.Fields{"sku": "P-1", "name": "Widget"})
	require.NoError(t, err)
	_, err = c.Create(ctx, "warehouses", crud.Fields{"name": "Main"})
	require.NoError(t, err)

	data := "product_id,warehouse_id,quantity\n1,1,10\n"
	first, err := e.Ingest(ctx, "inventory", strings.NewReader(data), csvHint(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Inserted)

	second, err := e.Ingest(ctx, "inventory", strings.NewReader(data), csvHint(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 1, second.Updated)

	rows, err := c.List(ctx, "inventory", shared.Page{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].(*inventory.Inventory).Quantity.Equal(decimal.NewFromInt(20)))
}

func TestIngest_Spreadsheet(t *testing.T) {
	e, c := newTestEngines(t)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	rows := [][]any{
		{"SKU", "Name", "Price", "Cost"},
		{"A-1", "Anvil", 49.99, 20},
		{"B-2", "Bolt", "$0.25", nil},
		{"", "Nameless", 1, 1},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	result, err := e.Ingest(context.Background(), "products", bytes.NewReader(buf.Bytes()), FormatHint{}, Options{})
	require.NoError(t, err)
	assert.Equal(t, tabular.FormatXLSX, result.Format)
	assert.Equal(t, 2, result.Inserted)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, "sku", result.Errors[0].Column)

	records, err := c.List(context.Background(), "products", shared.Page{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	anvil := records[0].(*catalog.Product)
	assert.True(t, anvil.Price.Equal(decimal.RequireFromString("49.99")))
	bolt := records[1].(*catalog.Product)
	assert.True(t, bolt.Price.Equal(decimal.RequireFromString("0.25")))
	assert.True(t, bolt.Cost.IsZero())
}

func TestIngest_SniffsTabSeparated(t *testing.T) {
	e, c := newTestEngines(t)
	data := "name\tphone\nNorth\t1\nSouth\t2\n"

	result, err := e.Ingest(context.Background(), "customers", strings.NewReader(data), FormatHint{Filename: "blob"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, tabular.FormatTSV, result.Format)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 2, count(t, c, "customers"))
}

func TestIngest_FileErrors(t *testing.T) {
	e, _ := newTestEngines(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		entity string
		data   string
		target error
	}{
		{name: "unknown entity", entity: "spaceships", data: "name\nx\n", target: shared.ErrUnknownEntity},
		{name: "empty file", entity: "vendors", data: "", target: shared.ErrValidation},
		{name: "no header", entity: "vendors", data: "\n\n", target: shared.ErrValidation},
		{name: "no known column", entity: "vendors", data: "colour,size\nred,xl\n", target: shared.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Ingest(ctx, tt.entity, strings.NewReader(tt.data), csvHint(), Options{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeCollect, m)

	m, err = ParseMode("abort")
	require.NoError(t, err)
	assert.Equal(t, ModeAbort, m)

	_, err = ParseMode("yolo")
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestIngest_RecordsRowMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	metrics, err := telemetry.NewEngineMetrics(provider.Meter("test"))
	require.NoError(t, err)

	e, _ := newTestEngines(t, WithMetrics(metrics))
	_, err = e.Ingest(context.Background(), "vendors", strings.NewReader(vendorCSV(10, 5)), csvHint(), Options{})
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	got := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "erp.ingest.rows" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				outcome, _ := dp.Attributes.Value(telemetry.AttrOutcome)
				got[outcome.AsString()] = dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{telemetry.OutcomeInserted: 9, telemetry.OutcomeFailed: 1}, got)
}
