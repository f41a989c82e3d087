package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erp/erpcore/internal/domain/finance"
	"github.com/erp/erpcore/internal/domain/planning"
	"github.com/erp/erpcore/internal/domain/report"
	"github.com/erp/erpcore/internal/domain/shared"
	"github.com/erp/erpcore/internal/infrastructure/telemetry"
)

// Report names used for spans and metrics
const (
	ReportTrialBalance        = "trial_balance"
	ReportProfitAndLoss       = "pnl"
	ReportNetSales            = "net_sales"
	ReportActualVsForecast    = "actual_vs_forecast"
	ReportARAging             = "ar_aging"
	ReportInventoryValue      = "inventory_value"
	ReportInventoryMetrics    = "inventory_metrics"
	ReportTopCustomersVendors = "top_customers_vendors"
	ReportCalendarEvents      = "calendar_events"
)

// Top-N bounds
const (
	DefaultTopN = 10
	MaxTopN     = 100
)

// ReportService computes the financial and inventory reports
type ReportService struct {
	repo    report.Repository
	now     func() time.Time
	topN    int
	metrics *telemetry.EngineMetrics
}

// Option configures a ReportService
type Option func(*ReportService)

// WithClock replaces time.Now, which decides "today" for aging
func WithClock(now func() time.Time) Option {
	return func(s *ReportService) {
		s.now = now
	}
}

// WithTopN sets the default size of the top customers and vendors lists
func WithTopN(n int) Option {
	return func(s *ReportService) {
		if n > 0 {
			s.topN = min(n, MaxTopN)
		}
	}
}

// WithMetrics records report durations on m
func WithMetrics(m *telemetry.EngineMetrics) Option {
	return func(s *ReportService) {
		s.metrics = m
	}
}

// NewReportService creates a new ReportService
func NewReportService(repo report.Repository, opts ...Option) *ReportService {
	s := &ReportService{
		repo: repo,
		now:  time.Now,
		topN: DefaultTopN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// observe starts the span of one report; the returned func ends it and
// records the duration.
func (s *ReportService) observe(ctx context.Context, name string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "report", name, telemetry.AttrReport.String(name))
	return ctx, func(err error) {
		telemetry.EndSpan(span, err)
		s.metrics.RecordReport(ctx, name, time.Since(start))
	}
}

// TrialBalance sums debit and credit per account code
func (s *ReportService) TrialBalance(ctx context.Context, period string) (lines []report.AccountBalance, err error) {
	ctx, done := s.observe(ctx, ReportTrialBalance)
	defer func() { done(err) }()

	p, err := report.ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	lines, err = s.repo.AccountTotals(ctx, p)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].Debit = report.Money(lines[i].Debit)
		lines[i].Credit = report.Money(lines[i].Credit)
	}
	return lines, nil
}

// ProfitAndLoss classifies debit minus credit per account by GL account type
func (s *ReportService) ProfitAndLoss(ctx context.Context, period string) (pnl *report.ProfitAndLoss, err error) {
	ctx, done := s.observe(ctx, ReportProfitAndLoss)
	defer func() { done(err) }()

	p, err := report.ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	return s.profitAndLoss(ctx, p)
}

func (s *ReportService) profitAndLoss(ctx context.Context, p *report.Period) (*report.ProfitAndLoss, error) {
	totals, err := s.repo.TypeTotals(ctx, p)
	if err != nil {
		return nil, err
	}
	revenue := totals[finance.AccountTypeRevenue]
	expense := totals[finance.AccountTypeExpense]
	return &report.ProfitAndLoss{
		Revenue:   report.Money(revenue),
		Expense:   report.Money(expense),
		NetIncome: report.Money(revenue.Sub(expense)),
	}, nil
}

// NetSales sums sales order totals
func (s *ReportService) NetSales(ctx context.Context, period string) (result *report.NetSales, err error) {
	ctx, done := s.observe(ctx, ReportNetSales)
	defer func() { done(err) }()

	p, err := report.ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.NetSales(ctx, p)
	if err != nil {
		return nil, err
	}
	return &report.NetSales{NetSales: report.Money(total)}, nil
}

// ActualVsForecast compares net sales or net profit with the forecasts of
// the same metric. Other metrics have an actual of zero.
func (s *ReportService) ActualVsForecast(ctx context.Context, metric, period string) (result *report.ActualVsForecast, err error) {
	ctx, done := s.observe(ctx, ReportActualVsForecast)
	defer func() { done(err) }()

	if metric == "" {
		metric = planning.MetricNetSales
	}
	p, err := report.ParsePeriod(period)
	if err != nil {
		return nil, err
	}

	actual := decimal.Zero
	switch metric {
	case planning.MetricNetSales:
		actual, err = s.repo.NetSales(ctx, p)
		if err != nil {
			return nil, err
		}
	case planning.MetricNetProfit:
		pnl, err := s.profitAndLoss(ctx, p)
		if err != nil {
			return nil, err
		}
		actual = pnl.NetIncome
	}

	forecast, err := s.repo.ForecastTotal(ctx, metric, p)
	if err != nil {
		return nil, err
	}
	return &report.ActualVsForecast{
		Metric:   metric,
		Period:   period,
		Actual:   report.Money(actual),
		Forecast: report.Money(forecast),
		Variance: report.Money(actual.Sub(forecast)),
	}, nil
}

// ARAging buckets open receivables with a due date by days past due
func (s *ReportService) ARAging(ctx context.Context) (buckets report.AgingBuckets, err error) {
	ctx, done := s.observe(ctx, ReportARAging)
	defer func() { done(err) }()

	items, err := s.repo.OpenReceivables(ctx)
	if err != nil {
		return report.AgingBuckets{}, err
	}
	today := s.now().UTC()
	for _, item := range items {
		if item.DueDate == nil {
			continue
		}
		buckets.Add(report.DaysPastDue(*item.DueDate, today), item.Amount)
	}
	return buckets, nil
}

// InventoryValuation lists quantity times unit cost per product
func (s *ReportService) InventoryValuation(ctx context.Context) (rows []report.InventoryValue, err error) {
	ctx, done := s.observe(ctx, ReportInventoryValue)
	defer func() { done(err) }()

	rows, err = s.repo.InventoryValuation(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].UnitCost = report.Money(rows[i].UnitCost)
		rows[i].Value = report.Money(rows[i].Value)
	}
	return rows, nil
}

// InventoryMetrics relates expense postings (as COGS) to stock value
func (s *ReportService) InventoryMetrics(ctx context.Context) (metrics *report.InventoryMetrics, err error) {
	ctx, done := s.observe(ctx, ReportInventoryMetrics)
	defer func() { done(err) }()

	totals, err := s.repo.TypeTotals(ctx, nil)
	if err != nil {
		return nil, err
	}
	value, err := s.repo.InventoryValueTotal(ctx)
	if err != nil {
		return nil, err
	}

	cogs := totals[finance.AccountTypeExpense]
	metrics = &report.InventoryMetrics{
		COGS:           report.Money(cogs),
		InventoryValue: report.Money(value),
	}
	if !value.IsZero() {
		turnover := cogs.DivRound(value, report.TurnoverScale)
		metrics.Turnover = &turnover
	}
	return metrics, nil
}

// TopCustomersVendors lists the largest open receivable and payable
// balances. topN of zero or less means the configured default.
func (s *ReportService) TopCustomersVendors(ctx context.Context, topN int) (result *report.TopCustomersVendors, err error) {
	ctx, done := s.observe(ctx, ReportTopCustomersVendors)
	defer func() { done(err) }()

	if topN <= 0 {
		topN = s.topN
	}
	topN = min(topN, MaxTopN)

	receivables, err := s.repo.TopReceivables(ctx, topN)
	if err != nil {
		return nil, err
	}
	payables, err := s.repo.TopPayables(ctx, topN)
	if err != nil {
		return nil, err
	}

	result = &report.TopCustomersVendors{
		TopCustomers: make([]report.CustomerTotal, len(receivables)),
		TopVendors:   make([]report.VendorTotal, len(payables)),
	}
	for i, r := range receivables {
		result.TopCustomers[i] = report.CustomerTotal{CustomerID: r.PartyID, CustomerName: r.Name, Amount: report.Money(r.Amount)}
	}
	for i, p := range payables {
		result.TopVendors[i] = report.VendorTotal{VendorID: p.PartyID, VendorName: p.Name, Amount: report.Money(p.Amount)}
	}
	return result, nil
}

// CalendarEvents lists events inside [start, end]; either bound may be nil
func (s *ReportService) CalendarEvents(ctx context.Context, start, end *time.Time) (events []planning.CalendarEvent, err error) {
	ctx, done := s.observe(ctx, ReportCalendarEvents)
	defer func() { done(err) }()

	if start != nil && end != nil && end.Before(*start) {
		return nil, shared.Validation("end", "end must not be before start")
	}
	events, err = s.repo.CalendarEvents(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []planning.CalendarEvent{}
	}
	return events, nil
}
