package persistence

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erp/erpcore/internal/domain/finance"
	"github.com/erp/erpcore/internal/domain/planning"
	"github.com/erp/erpcore/internal/domain/report"
)

// GormReportRepository implements report.Repository with portable SQL that
// runs unchanged on postgres, sqlite and mysql.
type GormReportRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

var _ report.Repository = (*GormReportRepository)(nil)

// NewGormReportRepository creates a report repository over the database
func NewGormReportRepository(d *Database) *GormReportRepository {
	return &GormReportRepository{db: d.DB, timeout: d.QueryTimeout}
}

func (r *GormReportRepository) stmt(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if r.timeout <= 0 {
		return r.db.WithContext(ctx), func() {}
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	return r.db.WithContext(ctx), cancel
}

// journalLines selects journal lines, restricted to entries dated in period
func journalLines(db *gorm.DB, period *report.Period) *gorm.DB {
	q := db.Table("journal_entry_lines AS jl")
	if period != nil {
		q = q.Joins("JOIN journal_entries je ON je.id = jl.journal_id").
			Where("je.date >= ? AND je.date < ?", period.Start, period.End)
	}
	return q
}

// openItems restricts q to rows whose status is not a settled status
func openItems(q *gorm.DB, alias string) *gorm.DB {
	col := alias + ".status"
	return q.Where("("+col+" IS NULL OR LOWER("+col+") NOT IN ?)", finance.SettledStatuses)
}

// AccountTotals sums debit and credit per account code. Lines without a
// code form one group, ordered last.
func (r *GormReportRepository) AccountTotals(ctx context.Context, period *report.Period) ([]report.AccountBalance, error) {
	db, cancel := r.stmt(ctx)
	defer cancel()

	var rows []report.AccountBalance
	err := journalLines(db, period).
		Select("jl.account_code AS account_code, " +
			"COALESCE(SUM(jl.debit), 0) AS debit, COALESCE(SUM(jl.credit), 0) AS credit").
		Group("jl.account_code").
		Order("CASE WHEN jl.account_code IS NULL THEN 1 ELSE 0 END, jl.account_code").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError("trial balance", err)
	}
	return rows, nil
}

// TypeTotals sums debit minus credit per GL account type
func (r *GormReportRepository) TypeTotals(ctx context.Context, period *report.Period) (map[string]decimal.Decimal, error) {
	db, cancel := r.stmt(ctx)
	defer cancel()

	var rows []struct {
		Type   string
		Amount decimal.Decimal
	}
	err := journalLines(db, period).
		Select("ga.type AS type, COALESCE(SUM(jl.debit - jl.credit), 0) AS amount").
		Joins("JOIN gl_accounts ga ON ga.code = jl.account_code").
		Where("ga.type IS NOT NULL").
		Group("ga.type").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError("account type totals", err)
	}

	totals := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.Type] = row.Amount
	}
	return totals, nil
}

// NetSales sums sales order totals, ordered in period when given
func (r *GormReportRepository) NetSales(ctx context.Context, period *report.Period) (decimal.Decimal, error) {
	db, cancel := r.stmt(ctx)
	defer cancel()

	q := db.Table("sales_orders")
	if period != nil {
		q = q.Where("order_date >= ? AND order_date < ?", period.Start, period.End)
	}
	return r.scalar(q.Select("COALESCE(SUM(total_amount), 0)"), "net sales")
}

// ForecastTotal sums forecast values of metric, for period when given
func (r *GormReportRepository) ForecastTotal(ctx context.Context, metric string, period *report.Period) (decimal.Decimal, error) {
	db, cancel := r.stmt(ctx)
	defer cancel()

	q := db.Table("forecasts").Where("metric = ?", metric)
	if period != nil {
		q = q.Where("period = ?", period.Month)
	}
	return r.scalar(q.Select("COALESCE(SUM(value), 0)"), "forecast")
}

// OpenReceivables returns unsettled receivables that have a due date
func (r *GormReportRepository) OpenReceivables(ctx context.Context) ([]report.OpenItem, error) {
	db, cancel := r.stmt(ctx)
	defer cancel()

	var rows []finance.AccountsReceivable
	err := openItems(db.Table("accounts_receivable AS ar"), "ar").
		Where("ar.due_date IS NOT NULL").
		Order("ar.id").
		Find(&rows).Error
	if err != nil {
		return nil, translateError("receivables", err)
	}

	items := make([]report.OpenItem, 0, len(rows))
	for _, ar := range rows {
		item := report.OpenItem{PartyID: ar.CustomerID}
		if ar.DueDate != nil {
			due := time.Time(*ar.DueDate)
			item.DueDate = &due
		}
		if ar.Amount.Valid {
			item.Amount = ar.Amount.Decimal
		}
		items = append(items, item)
	}
	return items, nil
}

// InventoryValuation values stock per product with inventory rows
func (r *GormReportRepository) InventoryValuation(ctx context.Context) ([]report.InventoryValue, error) {
	db, cancel := r.stmt(ctx)
	defer cancel()

	var rows []report.InventoryValue
	err := db.Table("products AS p").
		Select("p.id AS product_id, COALESCE(p.sku, '') AS sku, COALESCE(p.name, '') AS product, " +
			"COALESCE(SUM(i.quantity), 0) AS quantity, COALESCE(p.cost, 0) AS unit_cost").
		Joins("JOIN inventory i ON i.product_id = p.id").
		Group("p.id, p.sku, p.name, p.cost").
		Order("p.id").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError("inventory valuation", err)
	}
	for i := range rows {
		rows[i].Value = rows[i].Quantity.Mul(rows[i].UnitCost)
	}
	return rows, nil
}

// InventoryValueTotal sums quantity times product cost over all inventory
func (r *GormReportRepository) InventoryValueTotal(ctx context.Context) (decimal.Decimal, error) {
	db, cancel := r.stmt(ctx)
	defer cancel()

	q := db.Table("inventory AS i").
		Joins("JOIN products p ON p.id = i.product_id").
		Select("COALESCE(SUM(p.cost * i.quantity), 0)")
	return r.scalar(q, "inventory value")
}

// TopReceivables returns customers with the largest open receivables
func (r *GormReportRepository) TopReceivables(ctx context.Context, limit int) ([]report.PartyTotal, error) {
	return r.topParties(ctx, "accounts_receivable", "customer_id", "customers", limit)
}

// TopPayables returns vendors with the largest open payables
func (r *GormReportRepository) TopPayables(ctx context.Context, limit int) ([]report.PartyTotal, error) {
	return r.topParties(ctx, "accounts_payable", "vendor_id", "vendors", limit)
}

func (r *GormReportRepository) topParties(ctx context.Context, table, partyCol, masterTable string, limit int) ([]report.PartyTotal, error) {
	db, cancel := r.stmt(ctx)
	defer cancel()

	var rows []struct {
		PartyID int64
		Name    *string
		Total   decimal.Decimal
	}
	q := db.Table(table+" AS x").
		Select("x."+partyCol+" AS party_id, m.name AS name, COALESCE(SUM(x.amount), 0) AS total").
		Joins("LEFT JOIN "+masterTable+" m ON m.id = x."+partyCol).
		Where("x." + partyCol + " IS NOT NULL")
	err := openItems(q, "x").
		Group("x." + partyCol + ", m.name").
		Order("total DESC, party_id").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(table, err)
	}

	totals := make([]report.PartyTotal, len(rows))
	for i, row := range rows {
		totals[i] = report.PartyTotal{PartyID: row.PartyID, Name: row.Name, Amount: row.Total}
	}
	return totals, nil
}

// CalendarEvents lists events starting at or after start and ending at or
// before end, ordered by start. Nil bounds are open.
func (r *GormReportRepository) CalendarEvents(ctx context.Context, start, end *time.Time) ([]planning.CalendarEvent, error) {
	db, cancel := r.stmt(ctx)
	defer cancel()

	q := db.Model(&planning.CalendarEvent{})
	if start != nil {
		q = q.Where(clause.Gte{Column: clause.Column{Name: "start"}, Value: start.UTC()})
	}
	if end != nil {
		q = q.Where(clause.Lte{Column: clause.Column{Name: "end"}, Value: end.UTC()})
	}

	events := []planning.CalendarEvent{}
	err := q.Order(clause.OrderByColumn{Column: clause.Column{Name: "start"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Find(&events).Error
	if err != nil {
		return nil, translateError("calendar events", err)
	}
	return events, nil
}

func (r *GormReportRepository) scalar(q *gorm.DB, label string) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := q.Row().Scan(&total); err != nil {
		return decimal.Zero, translateError(label, err)
	}
	return total.Decimal, nil
}
