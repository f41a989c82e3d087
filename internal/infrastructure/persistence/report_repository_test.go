package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/erpcore/internal/domain/catalog"
	"github.com/erp/erpcore/internal/domain/entity"
	"github.com/erp/erpcore/internal/domain/finance"
	"github.com/erp/erpcore/internal/domain/inventory"
	"github.com/erp/erpcore/internal/domain/partner"
	"github.com/erp/erpcore/internal/domain/planning"
	"github.com/erp/erpcore/internal/domain/report"
	"github.com/erp/erpcore/internal/domain/trade"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func date(y int, m time.Month, d int) *entity.CalendarDate {
	v := entity.NewCalendarDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	return &v
}

func seed(t *testing.T, db *Database, records ...any) {
	t.Helper()
	for _, r := range records {
		require.NoError(t, db.DB.Create(r).Error)
	}
}

func seedLedger(t *testing.T, db *Database) {
	seed(t, db,
		&finance.GLAccount{Code: ptr("4000"), Name: ptr("Sales"), Type: ptr(finance.AccountTypeRevenue)},
		&finance.GLAccount{Code: ptr("5000"), Name: ptr("COGS"), Type: ptr(finance.AccountTypeExpense)},
		&finance.GLAccount{Code: ptr("1000"), Name: ptr("Cash"), Type: ptr(finance.AccountTypeAsset)},
		&finance.JournalEntry{Date: date(2024, 1, 15)},
		&finance.JournalEntry{Date: date(2024, 2, 3)},
	)
	seed(t, db,
		&finance.JournalEntryLine{JournalID: ptr(int64(1)), AccountCode: ptr("4000"), Credit: dec("100")},
		&finance.JournalEntryLine{JournalID: ptr(int64(1)), AccountCode: ptr("5000"), Debit: dec("40")},
		&finance.JournalEntryLine{JournalID: ptr(int64(2)), AccountCode: ptr("1000"), Debit: dec("25.50")},
		&finance.JournalEntryLine{JournalID: ptr(int64(2)), AccountCode: ptr("9999"), Debit: dec("7")},
	)
}

func TestReportRepository_AccountTotals(t *testing.T) {
	db := newTestDatabase(t)
	seedLedger(t, db)
	repo := NewGormReportRepository(db)

	all, err := repo.AccountTotals(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"1000", "4000", "5000", "9999"},
		[]string{*all[0].AccountCode, *all[1].AccountCode, *all[2].AccountCode, *all[3].AccountCode})
	assert.True(t, all[1].Credit.Equal(dec("100")))
	assert.True(t, all[1].Debit.IsZero())
	assert.True(t, all[2].Debit.Equal(dec("40")))

	period, err := report.ParsePeriod("2024-01")
	require.NoError(t, err)
	jan, err := repo.AccountTotals(context.Background(), period)
	require.NoError(t, err)
	require.Len(t, jan, 2)
	assert.Equal(t, "4000", *jan[0].AccountCode)
	assert.Equal(t, "5000", *jan[1].AccountCode)
}

func TestReportRepository_AccountTotalsKeepLinesWithoutCode(t *testing.T) {
	db := newTestDatabase(t)
	seedLedger(t, db)
	seed(t, db,
		&finance.JournalEntryLine{JournalID: ptr(int64(1)), Debit: dec("12")},
		&finance.JournalEntryLine{JournalID: ptr(int64(2)), Credit: dec("3.25")},
	)
	repo := NewGormReportRepository(db)

	all, err := repo.AccountTotals(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 5)
	last := all[4]
	assert.Nil(t, last.AccountCode)
	assert.True(t, last.Debit.Equal(dec("12")))
	assert.True(t, last.Credit.Equal(dec("3.25")))

	period, err := report.ParsePeriod("2024-02")
	require.NoError(t, err)
	feb, err := repo.AccountTotals(context.Background(), period)
	require.NoError(t, err)
	require.Len(t, feb, 3)
	assert.Nil(t, feb[2].AccountCode)
	assert.True(t, feb[2].Credit.Equal(dec("3.25")))
}

func TestReportRepository_TypeTotals(t *testing.T) {
	db := newTestDatabase(t)
	seedLedger(t, db)
	repo := NewGormReportRepository(db)

	totals, err := repo.TypeTotals(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, totals, 3)
	assert.True(t, totals[finance.AccountTypeRevenue].Equal(dec("-100")))
	assert.True(t, totals[finance.AccountTypeExpense].Equal(dec("40")))
	assert.True(t, totals[finance.AccountTypeAsset].Equal(dec("25.5")))

	feb, _ := report.ParsePeriod("2024-02")
	totals, err = repo.TypeTotals(context.Background(), feb)
	require.NoError(t, err)
	assert.Len(t, totals, 1)
}

func TestReportRepository_NetSalesAndForecast(t *testing.T) {
	db := newTestDatabase(t)
	seed(t, db,
		&trade.SalesOrder{OrderDate: date(2024, 3, 1), TotalAmount: dec("150.25")},
		&trade.SalesOrder{OrderDate: date(2024, 3, 31), TotalAmount: dec("49.75")},
		&trade.SalesOrder{OrderDate: date(2024, 4, 1), TotalAmount: dec("1000")},
		&planning.Forecast{Period: ptr("2024-03"), Metric: ptr(planning.MetricNetSales), Value: nullDec("180")},
		&planning.Forecast{Period: ptr("2024-04"), Metric: ptr(planning.MetricNetSales), Value: nullDec("900")},
		&planning.Forecast{Period: ptr("2024-03"), Metric: ptr(planning.MetricNetProfit), Value: nullDec("5")},
	)
	repo := NewGormReportRepository(db)
	ctx := context.Background()
	march, _ := report.ParsePeriod("2024-03")

	total, err := repo.NetSales(ctx, nil)
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("1200")))

	total, err = repo.NetSales(ctx, march)
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("200")))

	forecast, err := repo.ForecastTotal(ctx, planning.MetricNetSales, nil)
	require.NoError(t, err)
	assert.True(t, forecast.Equal(dec("1080")))

	forecast, err = repo.ForecastTotal(ctx, planning.MetricNetSales, march)
	require.NoError(t, err)
	assert.True(t, forecast.Equal(dec("180")))

	forecast, err = repo.ForecastTotal(ctx, "headcount", nil)
	require.NoError(t, err)
	assert.True(t, forecast.IsZero())
}

func TestReportRepository_OpenReceivables(t *testing.T) {
	db := newTestDatabase(t)
	seed(t, db,
		&finance.AccountsReceivable{CustomerID: ptr(int64(1)), DueDate: date(2024, 1, 1), Amount: nullDec("200")},
		&finance.AccountsReceivable{CustomerID: ptr(int64(1)), DueDate: date(2024, 1, 1), Amount: nullDec("50"), Status: ptr("Paid")},
		&finance.AccountsReceivable{CustomerID: ptr(int64(2)), Amount: nullDec("75"), Status: ptr("open")},
		&finance.AccountsReceivable{CustomerID: ptr(int64(2)), DueDate: date(2024, 2, 1), Status: ptr("open")},
	)

	items, err := NewGormReportRepository(db).OpenReceivables(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].Amount.Equal(dec("200")))
	assert.True(t, items[0].DueDate.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, items[1].Amount.IsZero())
}

func TestReportRepository_Inventory(t *testing.T) {
	db := newTestDatabase(t)
	seed(t, db,
		&catalog.Product{SKU: "A-1", Name: "Anvil", Cost: dec("12.50")},
		&catalog.Product{SKU: "B-2", Name: "Bolt", Cost: dec("0.10")},
		&catalog.Product{SKU: "C-3", Name: "Crate", Cost: dec("3")},
		&inventory.Inventory{ProductID: ptr(int64(1)), WarehouseID: ptr(int64(1)), Quantity: dec("4")},
		&inventory.Inventory{ProductID: ptr(int64(1)), WarehouseID: ptr(int64(2)), Quantity: dec("6")},
		&inventory.Inventory{ProductID: ptr(int64(2)), WarehouseID: ptr(int64(1)), Quantity: dec("100")},
	)
	repo := NewGormReportRepository(db)

	rows, err := repo.InventoryValuation(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].ProductID)
	assert.Equal(t, "A-1", rows[0].SKU)
	assert.Equal(t, "Anvil", rows[0].Product)
	assert.True(t, rows[0].Quantity.Equal(dec("10")))
	assert.True(t, rows[0].Value.Equal(dec("125")))
	assert.True(t, rows[1].Value.Equal(dec("10")))

	total, err := repo.InventoryValueTotal(context.Background())
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("135")))
}

func TestReportRepository_TopParties(t *testing.T) {
	db := newTestDatabase(t)
	seed(t, db,
		&partner.Customer{Name: "Small"},
		&partner.Customer{Name: "Big"},
		&partner.Vendor{Name: "Supplier"},
		&finance.AccountsReceivable{CustomerID: ptr(int64(1)), Amount: nullDec("10")},
		&finance.AccountsReceivable{CustomerID: ptr(int64(2)), Amount: nullDec("70")},
		&finance.AccountsReceivable{CustomerID: ptr(int64(2)), Amount: nullDec("30")},
		&finance.AccountsReceivable{CustomerID: ptr(int64(1)), Amount: nullDec("500"), Status: ptr("closed")},
		&finance.AccountsReceivable{CustomerID: ptr(int64(42)), Amount: nullDec("5")},
		&finance.AccountsPayable{VendorID: ptr(int64(1)), Amount: nullDec("60")},
	)
	repo := NewGormReportRepository(db)
	ctx := context.Background()

	customers, err := repo.TopReceivables(ctx, 10)
	require.NoError(t, err)
	require.Len(t, customers, 3)
	assert.Equal(t, int64(2), customers[0].PartyID)
	assert.Equal(t, "Big", *customers[0].Name)
	assert.True(t, customers[0].Amount.Equal(dec("100")))
	assert.Equal(t, int64(1), customers[1].PartyID)
	assert.Equal(t, int64(42), customers[2].PartyID)
	assert.Nil(t, customers[2].Name)

	top1, err := repo.TopReceivables(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, top1, 1)

	vendors, err := repo.TopPayables(ctx, 10)
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	assert.Equal(t, "Supplier", *vendors[0].Name)
}

func TestReportRepository_CalendarEvents(t *testing.T) {
	db := newTestDatabase(t)
	at := func(day, hour int) *time.Time {
		v := time.Date(2024, 5, day, hour, 0, 0, 0, time.UTC)
		return &v
	}
	seed(t, db,
		&planning.CalendarEvent{Title: ptr("late"), Start: at(20, 9), End: at(20, 10)},
		&planning.CalendarEvent{Title: ptr("early"), Start: at(2, 9), End: at(2, 10)},
		&planning.CalendarEvent{Title: ptr("long"), Start: at(10, 9), End: at(25, 10)},
	)
	repo := NewGormReportRepository(db)
	ctx := context.Background()

	all, err := repo.CalendarEvents(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "early", *all[0].Title)
	assert.Equal(t, "long", *all[1].Title)

	window, err := repo.CalendarEvents(ctx, at(5, 0), at(21, 0))
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "late", *window[0].Title)
}
