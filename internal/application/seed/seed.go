// Package seed fills an empty store with a deterministic sample data set
// through the CRUD engine, so every record passes the same validation as
// API writes.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/erp/erpcore/internal/application/crud"
	"github.com/erp/erpcore/internal/domain/shared"
	"github.com/erp/erpcore/internal/infrastructure/logger"
)

const dateLayout = "2006-01-02"

// Sizes of the generated master data
const (
	Vendors    = 10
	Customers  = 10
	Products   = 20
	Warehouses = 3
	Orders     = 10
	Journals   = 30
	OpenItems  = 20
)

// Summary counts the records created per entity
type Summary map[string]int

// Seeder creates the sample data set
type Seeder struct {
	engine *crud.Engine
	now    func() time.Time
	rng    *rand.Rand
}

// Option configures a Seeder
type Option func(*Seeder)

// WithClock sets the reference date that order and invoice dates are relative to
func WithClock(now func() time.Time) Option {
	return func(s *Seeder) {
		s.now = now
	}
}

// WithSeed sets the random seed
func WithSeed(seed uint64) Option {
	return func(s *Seeder) {
		s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// New creates a Seeder. The default seed is fixed so two runs produce the
// same data.
func New(engine *crud.Engine, opts ...Option) *Seeder {
	s := &Seeder{engine: engine, now: time.Now}
	WithSeed(42)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seeded reports whether the store already holds vendors
func (s *Seeder) Seeded(ctx context.Context) (bool, error) {
	rows, err := s.engine.List(ctx, "vendors", shared.Page{Limit: 1})
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// Run creates the data set unless the store is already seeded. It returns
// nil and no error when there was nothing to do.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	seeded, err := s.Seeded(ctx)
	if err != nil {
		return nil, err
	}
	if seeded {
		logger.L(ctx).Info("Store already seeded")
		return nil, nil
	}

	sum := Summary{}
	steps := []func(context.Context, Summary) error{
		s.masterData,
		s.inventory,
		s.purchaseOrders,
		s.salesOrders,
		s.ledger,
		s.openItems,
		s.planning,
	}
	for _, step := range steps {
		if err := step(ctx, sum); err != nil {
			return sum, err
		}
	}

	logger.L(ctx).Info("Seed complete", zap.Any("records", map[string]int(sum)))
	return sum, nil
}

func (s *Seeder) create(ctx context.Context, sum Summary, name string, fields crud.Fields) (int64, error) {
	rec, err := s.engine.Create(ctx, name, fields)
	if err != nil {
		return 0, fmt.Errorf("seed %s: %w", name, err)
	}
	sum[name]++
	return rec.GetID(), nil
}

// between returns a random integer in [lo, hi]
func (s *Seeder) between(lo, hi int) int {
	return lo + s.rng.IntN(hi-lo+1)
}

func (s *Seeder) daysAgo(lo, hi int) time.Time {
	return s.now().AddDate(0, 0, -s.between(lo, hi))
}

func (s *Seeder) masterData(ctx context.Context, sum Summary) error {
	for i := 1; i <= Vendors; i++ {
		if _, err := s.create(ctx, sum, "vendors", crud.Fields{
			"name":    fmt.Sprintf("Vendor %d", i),
			"email":   fmt.Sprintf("v%d@example.com", i),
			"phone":   fmt.Sprintf("+100%d", i),
			"address": fmt.Sprintf("Addr %d", i),
		}); err != nil {
			return err
		}
	}
	for i := 1; i <= Customers; i++ {
		if _, err := s.create(ctx, sum, "customers", crud.Fields{
			"name":    fmt.Sprintf("Customer %d", i),
			"email":   fmt.Sprintf("c%d@example.com", i),
			"phone":   fmt.Sprintf("+200%d", i),
			"address": fmt.Sprintf("Addr %d", i),
		}); err != nil {
			return err
		}
	}
	for i := 1; i <= Products; i++ {
		if _, err := s.create(ctx, sum, "products", crud.Fields{
			"sku":         fmt.Sprintf("SKU%03d", i),
			"name":        fmt.Sprintf("Product %d", i),
			"description": "Sample",
			"price":       50 + i,
			"cost":        30 + i,
			"uom":         "EA",
		}); err != nil {
			return err
		}
	}
	for i := 1; i <= Warehouses; i++ {
		if _, err := s.create(ctx, sum, "warehouses", crud.Fields{
			"name":     fmt.Sprintf("WH %d", i),
			"location": fmt.Sprintf("City %d", i),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) inventory(ctx context.Context, sum Summary) error {
	for p := 1; p <= Products; p++ {
		for w := 1; w <= Warehouses; w++ {
			if _, err := s.create(ctx, sum, "inventory", crud.Fields{
				"product_id":   p,
				"warehouse_id": w,
				"quantity":     s.between(10, 200),
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) purchaseOrders(ctx context.Context, sum Summary) error {
	for i := 0; i < Orders; i++ {
		id, err := s.create(ctx, sum, "purchase_orders", crud.Fields{
			"vendor_id":    s.between(1, Vendors),
			"order_date":   s.daysAgo(1, 90).Format(dateLayout),
			"status":       "Open",
			"total_amount": s.between(500, 5000),
		})
		if err != nil {
			return err
		}
		for j := 0; j < 3; j++ {
			product := s.between(1, Products)
			if _, err := s.create(ctx, sum, "purchase_order_lines", crud.Fields{
				"po_id":      id,
				"product_id": product,
				"quantity":   s.between(1, 20),
				"unit_cost":  30 + product,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) salesOrders(ctx context.Context, sum Summary) error {
	for i := 0; i < Orders; i++ {
		id, err := s.create(ctx, sum, "sales_orders", crud.Fields{
			"customer_id":  s.between(1, Customers),
			"order_date":   s.daysAgo(1, 90).Format(dateLayout),
			"status":       "Open",
			"total_amount": s.between(500, 7000),
		})
		if err != nil {
			return err
		}
		for j := 0; j < 3; j++ {
			product := s.between(1, Products)
			if _, err := s.create(ctx, sum, "sales_order_lines", crud.Fields{
				"so_id":      id,
				"product_id": product,
				"quantity":   s.between(1, 10),
				"unit_price": 50 + product,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) ledger(ctx context.Context, sum Summary) error {
	accounts := []crud.Fields{
		{"code": "1000", "name": "Cash", "type": "Asset"},
		{"code": "1100", "name": "AR", "type": "Asset"},
		{"code": "2000", "name": "AP", "type": "Liability"},
		{"code": "4000", "name": "Sales Revenue", "type": "Revenue"},
		{"code": "5000", "name": "COGS", "type": "Expense"},
	}
	for _, acc := range accounts {
		if _, err := s.create(ctx, sum, "gl_accounts", acc); err != nil {
			return err
		}
	}

	// each entry posts a sale and its cost of goods
	for i := 0; i < Journals; i++ {
		id, err := s.create(ctx, sum, "journal_entries", crud.Fields{
			"date":        s.daysAgo(1, 60).Format(dateLayout),
			"description": "Sale posting",
			"posted":      true,
		})
		if err != nil {
			return err
		}
		lines := []crud.Fields{
			{"journal_id": id, "account_code": "4000", "description": "Sale", "debit": 0, "credit": s.between(100, 1000)},
			{"journal_id": id, "account_code": "5000", "description": "COGS", "debit": s.between(50, 700), "credit": 0},
		}
		for _, line := range lines {
			if _, err := s.create(ctx, sum, "journal_lines", line); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) openItems(ctx context.Context, sum Summary) error {
	for i := 1; i <= OpenItems; i++ {
		invoiced := s.daysAgo(1, 120)
		due := invoiced.AddDate(0, 0, 30)
		if _, err := s.create(ctx, sum, "accounts_receivable", crud.Fields{
			"customer_id":    s.between(1, Customers),
			"invoice_number": fmt.Sprintf("AR%04d", i),
			"invoice_date":   invoiced.Format(dateLayout),
			"due_date":       due.Format(dateLayout),
			"amount":         s.between(100, 1500),
			"status":         "Open",
		}); err != nil {
			return err
		}
		if _, err := s.create(ctx, sum, "accounts_payable", crud.Fields{
			"vendor_id":      s.between(1, Vendors),
			"invoice_number": fmt.Sprintf("AP%04d", i),
			"invoice_date":   invoiced.Format(dateLayout),
			"due_date":       due.Format(dateLayout),
			"amount":         s.between(100, 1500),
			"status":         "Open",
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) planning(ctx context.Context, sum Summary) error {
	today := s.now()
	for _, metric := range []string{"net_sales", "net_profit"} {
		for i := 0; i < 6; i++ {
			if _, err := s.create(ctx, sum, "forecasts", crud.Fields{
				"period": today.AddDate(0, 0, -30*i).Format("2006-01"),
				"metric": metric,
				"value":  s.between(1000, 10000),
			}); err != nil {
				return err
			}
		}
	}

	start := time.Date(today.Year(), today.Month(), today.Day(), 9, 0, 0, 0, time.UTC)
	_, err := s.create(ctx, sum, "calendar_events", crud.Fields{
		"title":       "Monthly Close",
		"start":       start,
		"end":         start.Add(time.Hour),
		"type":        "reminder",
		"description": "Prepare close",
	})
	return err
}
