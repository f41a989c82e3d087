package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/erp/erpcore/internal/application/crud"
	"github.com/erp/erpcore/internal/domain/planning"
	"github.com/erp/erpcore/internal/domain/report"
	"github.com/erp/erpcore/internal/domain/schema"
	"github.com/erp/erpcore/internal/domain/shared"
	"github.com/erp/erpcore/internal/infrastructure/persistence"
	"github.com/erp/erpcore/internal/testutil"
)

// =============================================================================
// Mock Repository
// =============================================================================

// MockReportRepository is a mock implementation of report.Repository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) AccountTotals(ctx context.Context, period *report.Period) ([]report.AccountBalance, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.AccountBalance), args.Error(1)
}

func (m *MockReportRepository) TypeTotals(ctx context.Context, period *report.Period) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

func (m *MockReportRepository) NetSales(ctx context.Context, period *report.Period) (decimal.Decimal, error) {
	args := m.Called(ctx, period)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockReportRepository) ForecastTotal(ctx context.Context, metric string, period *report.Period) (decimal.Decimal, error) {
	args := m.Called(ctx, metric, period)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockReportRepository) OpenReceivables(ctx context.Context) ([]report.OpenItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.OpenItem), args.Error(1)
}

func (m *MockReportRepository) InventoryValuation(ctx context.Context) ([]report.InventoryValue, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.InventoryValue), args.Error(1)
}

func (m *MockReportRepository) InventoryValueTotal(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockReportRepository) TopReceivables(ctx context.Context, limit int) ([]report.PartyTotal, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.PartyTotal), args.Error(1)
}

func (m *MockReportRepository) TopPayables(ctx context.Context, limit int) ([]report.PartyTotal, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.PartyTotal), args.Error(1)
}

func (m *MockReportRepository) CalendarEvents(ctx context.Context, start, end *time.Time) ([]planning.CalendarEvent, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]planning.CalendarEvent), args.Error(1)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func fixedClock(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 15, 30, 0, 0, time.UTC) }
}

// =============================================================================
// Unit tests
// =============================================================================

func TestReportService_ProfitAndLossSignConvention(t *testing.T) {
	repo := new(MockReportRepository)
	repo.On("TypeTotals", mock.Anything, (*report.Period)(nil)).Return(map[string]decimal.Decimal{
		"Revenue": dec("-100"),
		"Expense": dec("40"),
		"Asset":   dec("999"),
	}, nil)
	svc := NewReportService(repo)

	pnl, err := svc.ProfitAndLoss(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, pnl.Revenue.Equal(dec("-100")))
	assert.True(t, pnl.Expense.Equal(dec("40")))
	assert.True(t, pnl.NetIncome.Equal(dec("-140")))
	repo.AssertExpectations(t)
}

func TestReportService_InvalidPeriod(t *testing.T) {
	svc := NewReportService(new(MockReportRepository))
	ctx := context.Background()

	_, err := svc.TrialBalance(ctx, "2024-13")
	assert.True(t, errors.Is(err, shared.ErrValidation))
	_, err = svc.ProfitAndLoss(ctx, "January")
	assert.True(t, errors.Is(err, shared.ErrValidation))
	_, err = svc.NetSales(ctx, "2024-1")
	assert.True(t, errors.Is(err, shared.ErrValidation))
	_, err = svc.ActualVsForecast(ctx, "net_sales", "24-01")
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestReportService_ActualVsForecast(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to net sales", func(t *testing.T) {
		repo := new(MockReportRepository)
		repo.On("NetSales", mock.Anything, mock.Anything).Return(dec("200"), nil)
		repo.On("ForecastTotal", mock.Anything, planning.MetricNetSales, mock.Anything).Return(dec("180"), nil)

		got, err := NewReportService(repo).ActualVsForecast(ctx, "", "2024-03")
		require.NoError(t, err)
		assert.Equal(t, planning.MetricNetSales, got.Metric)
		assert.Equal(t, "2024-03", got.Period)
		assert.True(t, got.Variance.Equal(dec("20")))
	})

	t.Run("net profit uses pnl net income", func(t *testing.T) {
		repo := new(MockReportRepository)
		repo.On("TypeTotals", mock.Anything, mock.Anything).Return(map[string]decimal.Decimal{
			"Revenue": dec("-100"), "Expense": dec("40"),
		}, nil)
		repo.On("ForecastTotal", mock.Anything, planning.MetricNetProfit, mock.Anything).Return(dec("10"), nil)

		got, err := NewReportService(repo).ActualVsForecast(ctx, planning.MetricNetProfit, "")
		require.NoError(t, err)
		assert.True(t, got.Actual.Equal(dec("-140")))
		assert.True(t, got.Variance.Equal(dec("-150")))
	})

	t.Run("unknown metric has zero actual", func(t *testing.T) {
		repo := new(MockReportRepository)
		repo.On("ForecastTotal", mock.Anything, "headcount", mock.Anything).Return(dec("12"), nil)

		got, err := NewReportService(repo).ActualVsForecast(ctx, "headcount", "")
		require.NoError(t, err)
		assert.True(t, got.Actual.IsZero())
		assert.True(t, got.Variance.Equal(dec("-12")))
		repo.AssertNotCalled(t, "NetSales", mock.Anything, mock.Anything)
	})
}

func TestReportService_ARAging(t *testing.T) {
	today := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	daysAgo := func(n int) *time.Time {
		d := today.AddDate(0, 0, -n)
		return &d
	}
	repo := new(MockReportRepository)
	repo.On("OpenReceivables", mock.Anything).Return([]report.OpenItem{
		{DueDate: daysAgo(45), Amount: dec("200")},
		{DueDate: daysAgo(-10), Amount: dec("5")},
		{DueDate: daysAgo(30), Amount: dec("1")},
		{DueDate: daysAgo(31), Amount: dec("2")},
		{DueDate: daysAgo(90), Amount: dec("3")},
		{DueDate: daysAgo(91), Amount: dec("4")},
		{DueDate: nil, Amount: dec("1000")},
	}, nil)
	svc := NewReportService(repo, WithClock(fixedClock(2024, 6, 30)))

	buckets, err := svc.ARAging(context.Background())
	require.NoError(t, err)
	assert.True(t, buckets.Get(report.Bucket0To30).Equal(dec("6")))
	assert.True(t, buckets.Get(report.Bucket31To60).Equal(dec("202")))
	assert.True(t, buckets.Get(report.Bucket61To90).Equal(dec("3")))
	assert.True(t, buckets.Get(report.Bucket90Plus).Equal(dec("4")))
}

func TestReportService_InventoryMetrics(t *testing.T) {
	t.Run("turnover is nil without stock", func(t *testing.T) {
		repo := new(MockReportRepository)
		repo.On("TypeTotals", mock.Anything, (*report.Period)(nil)).Return(map[string]decimal.Decimal{"Expense": dec("40")}, nil)
		repo.On("InventoryValueTotal", mock.Anything).Return(decimal.Zero, nil)

		got, err := NewReportService(repo).InventoryMetrics(context.Background())
		require.NoError(t, err)
		assert.True(t, got.COGS.Equal(dec("40")))
		assert.Nil(t, got.Turnover)
	})

	t.Run("turnover is rounded to four places", func(t *testing.T) {
		repo := new(MockReportRepository)
		repo.On("TypeTotals", mock.Anything, (*report.Period)(nil)).Return(map[string]decimal.Decimal{"Expense": dec("100")}, nil)
		repo.On("InventoryValueTotal", mock.Anything).Return(dec("300"), nil)

		got, err := NewReportService(repo).InventoryMetrics(context.Background())
		require.NoError(t, err)
		require.NotNil(t, got.Turnover)
		assert.Equal(t, "0.3333", got.Turnover.String())
	})
}

func TestReportService_TopCustomersVendorsLimits(t *testing.T) {
	tests := []struct {
		name string
		topN int
		opts []Option
		want int
	}{
		{name: "default", topN: 0, want: DefaultTopN},
		{name: "configured default", topN: -1, opts: []Option{WithTopN(5)}, want: 5},
		{name: "explicit", topN: 3, want: 3},
		{name: "clamped", topN: 1000, want: MaxTopN},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockReportRepository)
			repo.On("TopReceivables", mock.Anything, tt.want).Return([]report.PartyTotal{
				{PartyID: 7, Name: testutil.Ptr("Big"), Amount: dec("100.005")},
			}, nil)
			repo.On("TopPayables", mock.Anything, tt.want).Return([]report.PartyTotal{}, nil)

			got, err := NewReportService(repo, tt.opts...).TopCustomersVendors(context.Background(), tt.topN)
			require.NoError(t, err)
			require.Len(t, got.TopCustomers, 1)
			assert.Equal(t, int64(7), got.TopCustomers[0].CustomerID)
			assert.Equal(t, "100.01", got.TopCustomers[0].Amount.StringFixed(2))
			assert.Empty(t, got.TopVendors)
			repo.AssertExpectations(t)
		})
	}
}

func TestReportService_CalendarEventsRange(t *testing.T) {
	repo := new(MockReportRepository)
	svc := NewReportService(repo)
	start := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)

	_, err := svc.CalendarEvents(context.Background(), &start, &end)
	assert.True(t, errors.Is(err, shared.ErrValidation))

	repo.On("CalendarEvents", mock.Anything, (*time.Time)(nil), (*time.Time)(nil)).Return(nil, nil)
	events, err := svc.CalendarEvents(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestReportService_StoreErrorsPropagate(t *testing.T) {
	repo := new(MockReportRepository)
	storeErr := shared.StoreUnavailable(errors.New("down"))
	repo.On("AccountTotals", mock.Anything, mock.Anything).Return(nil, storeErr)
	repo.On("OpenReceivables", mock.Anything).Return(nil, storeErr)
	svc := NewReportService(repo)

	_, err := svc.TrialBalance(context.Background(), "")
	assert.True(t, errors.Is(err, shared.ErrStoreUnavailable))
	_, err = svc.ARAging(context.Background())
	assert.True(t, errors.Is(err, shared.ErrStoreUnavailable))
}

// =============================================================================
// Against a store
// =============================================================================

func TestReportService_EndToEnd(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	c := crud.NewEngine(schema.Default(), persistence.NewGormEntityStore(db))
	svc := NewReportService(persistence.NewGormReportRepository(db), WithClock(fixedClock(2024, 3, 15)))
	ctx := context.Background()

	create := func(entity string, fields crud.Fields) int64 {
		t.Helper()
		rec, err := c.Create(ctx, entity, fields)
		require.NoError(t, err)
		return rec.GetID()
	}

	create("gl_accounts", crud.Fields{"code": "4000", "name": "Sales", "type": "Revenue"})
	create("gl_accounts", crud.Fields{"code": "5000", "name": "COGS", "type": "Expense"})
	journal := create("journal_entries", crud.Fields{"date": "2024-01-20"})
	create("journal_lines", crud.Fields{"journal_id": journal, "account_code": "4000", "credit": "100"})
	create("journal_lines", crud.Fields{"journal_id": journal, "account_code": "5000", "debit": "40"})

	customer := create("customers", crud.Fields{"name": "Acme"})
	create("accounts_receivable", crud.Fields{"customer_id": customer, "due_date": "2024-01-30", "amount": "200"})
	create("accounts_receivable", crud.Fields{"customer_id": customer, "due_date": "2024-01-30", "amount": "75", "status": "Paid"})

	product := create("products", crud.Fields{"sku": "W", "name": "Widget", "cost": "2.50"})
	warehouse := create("warehouses", crud.Fields{"name": "Main"})
	create("inventory", crud.Fields{"product_id": product, "warehouse_id": warehouse, "quantity": "8"})

	tb, err := svc.TrialBalance(ctx, "2024-01")
	require.NoError(t, err)
	require.Len(t, tb, 2)
	assert.Equal(t, "4000", *tb[0].AccountCode)
	assert.Equal(t, "0.00", tb[0].Debit.StringFixed(2))
	assert.True(t, tb[0].Credit.Equal(dec("100")))
	assert.Equal(t, "5000", *tb[1].AccountCode)
	assert.True(t, tb[1].Debit.Equal(dec("40")))

	feb, err := svc.TrialBalance(ctx, "2024-02")
	require.NoError(t, err)
	assert.Empty(t, feb)

	pnl, err := svc.ProfitAndLoss(ctx, "2024-01")
	require.NoError(t, err)
	assert.True(t, pnl.NetIncome.Equal(dec("-140")))

	aging, err := svc.ARAging(ctx)
	require.NoError(t, err)
	assert.True(t, aging.Get(report.Bucket31To60).Equal(dec("200")))
	assert.True(t, aging.Get(report.Bucket0To30).IsZero())

	metrics, err := svc.InventoryMetrics(ctx)
	require.NoError(t, err)
	assert.True(t, metrics.InventoryValue.Equal(dec("20")))
	require.NotNil(t, metrics.Turnover)
	assert.True(t, metrics.Turnover.Equal(dec("2")))

	top, err := svc.TopCustomersVendors(ctx, 0)
	require.NoError(t, err)
	require.Len(t, top.TopCustomers, 1)
	assert.Equal(t, "Acme", *top.TopCustomers[0].CustomerName)
	assert.True(t, top.TopCustomers[0].Amount.Equal(dec("200")))
}
