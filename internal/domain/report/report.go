// Package report holds the read models of the financial and inventory
// reports and the repository they are computed from.
package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erp/erpcore/internal/domain/planning"
)

// MoneyScale is the number of fraction digits of every money output
const MoneyScale = 2

// TurnoverScale is the number of fraction digits of the turnover ratio
const TurnoverScale = 4

// Money rounds d to MoneyScale
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// AccountBalance is one trial balance line
type AccountBalance struct {
	// AccountCode is nil for lines posted without an account.
	AccountCode *string         `json:"account_code"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// ProfitAndLoss uses the uniform debit minus credit convention for both
// buckets, so revenue booked as credits shows up negative.
type ProfitAndLoss struct {
	Revenue   decimal.Decimal `json:"revenue"`
	Expense   decimal.Decimal `json:"expense"`
	NetIncome decimal.Decimal `json:"net_income"`
}

// NetSales is the sum of sales order totals
type NetSales struct {
	NetSales decimal.Decimal `json:"net_sales"`
}

// ActualVsForecast compares a metric with its forecast
type ActualVsForecast struct {
	Metric   string          `json:"metric"`
	Period   string          `json:"period,omitempty"`
	Actual   decimal.Decimal `json:"actual"`
	Forecast decimal.Decimal `json:"forecast"`
	Variance decimal.Decimal `json:"variance"`
}

// InventoryValue is the stock value of one product across warehouses
type InventoryValue struct {
	ProductID int64           `json:"product_id"`
	SKU       string          `json:"sku"`
	Product   string          `json:"product"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Value     decimal.Decimal `json:"value"`
}

// InventoryMetrics relates expense activity to stock value.
// Turnover is nil when there is no stock value to divide by.
type InventoryMetrics struct {
	COGS           decimal.Decimal  `json:"cogs"`
	InventoryValue decimal.Decimal  `json:"inventory_value"`
	Turnover       *decimal.Decimal `json:"turnover"`
}

// PartyTotal is the open balance of one customer or vendor.
// Name is nil when the master record no longer exists.
type PartyTotal struct {
	PartyID int64
	Name    *string
	Amount  decimal.Decimal
}

// CustomerTotal is a top-customers line
type CustomerTotal struct {
	CustomerID   int64           `json:"customer_id"`
	CustomerName *string         `json:"customer_name"`
	Amount       decimal.Decimal `json:"amount"`
}

// VendorTotal is a top-vendors line
type VendorTotal struct {
	VendorID   int64           `json:"vendor_id"`
	VendorName *string         `json:"vendor_name"`
	Amount     decimal.Decimal `json:"amount"`
}

// TopCustomersVendors lists the largest open balances on both sides
type TopCustomersVendors struct {
	TopCustomers []CustomerTotal `json:"top_customers"`
	TopVendors   []VendorTotal   `json:"top_vendors"`
}

// OpenItem is an unsettled receivable or payable
type OpenItem struct {
	PartyID *int64
	DueDate *time.Time
	Amount  decimal.Decimal
}

// Repository runs the aggregate queries behind the reports.
// Implementations treat missing data as zero or absent, never as an error.
type Repository interface {
	// AccountTotals sums debit and credit per account code, ordered by code.
	AccountTotals(ctx context.Context, period *Period) ([]AccountBalance, error)
	// TypeTotals sums debit minus credit per GL account type; lines whose
	// code has no GL account are left out.
	TypeTotals(ctx context.Context, period *Period) (map[string]decimal.Decimal, error)
	NetSales(ctx context.Context, period *Period) (decimal.Decimal, error)
	ForecastTotal(ctx context.Context, metric string, period *Period) (decimal.Decimal, error)
	OpenReceivables(ctx context.Context) ([]OpenItem, error)
	InventoryValuation(ctx context.Context) ([]InventoryValue, error)
	InventoryValueTotal(ctx context.Context) (decimal.Decimal, error)
	TopReceivables(ctx context.Context, limit int) ([]PartyTotal, error)
	TopPayables(ctx context.Context, limit int) ([]PartyTotal, error)
	CalendarEvents(ctx context.Context, start, end *time.Time) ([]planning.CalendarEvent, error)
}
