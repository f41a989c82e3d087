package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	reportapp "github.com/erp/erpcore/internal/application/report"
	"github.com/erp/erpcore/internal/domain/entity"
	"github.com/erp/erpcore/internal/interfaces/http/dto"
	"github.com/erp/erpcore/internal/interfaces/http/middleware"
)

// ReportHandler handles report-related API endpoints
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// RegisterRoutes mounts the report routes under /reports
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	reports.GET("/"+reportapp.ReportTrialBalance, h.TrialBalance)
	reports.GET("/"+reportapp.ReportProfitAndLoss, h.ProfitAndLoss)
	reports.GET("/"+reportapp.ReportNetSales, h.NetSales)
	reports.GET("/"+reportapp.ReportActualVsForecast, h.ActualVsForecast)
	reports.GET("/"+reportapp.ReportARAging, h.ARAging)
	reports.GET("/"+reportapp.ReportInventoryValue, h.InventoryValue)
	reports.GET("/"+reportapp.ReportInventoryMetrics, h.InventoryMetrics)
	reports.GET("/"+reportapp.ReportTopCustomersVendors, h.TopCustomersVendors)
	reports.GET("/"+reportapp.ReportCalendarEvents, h.CalendarEvents)
}

// TrialBalance handles GET /reports/trial_balance: debit and credit totals per account code
func (h *ReportHandler) TrialBalance(c *gin.Context) {
	var req dto.PeriodRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	lines, err := h.reportService.TrialBalance(c.Request.Context(), req.Period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lines)
}

// ProfitAndLoss handles GET /reports/pnl: revenue, expense and net income
func (h *ReportHandler) ProfitAndLoss(c *gin.Context) {
	var req dto.PeriodRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	pnl, err := h.reportService.ProfitAndLoss(c.Request.Context(), req.Period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pnl)
}

// NetSales handles GET /reports/net_sales: sum of sales order totals
func (h *ReportHandler) NetSales(c *gin.Context) {
	var req dto.PeriodRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	result, err := h.reportService.NetSales(c.Request.Context(), req.Period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ActualVsForecast handles GET /reports/actual_vs_forecast: compare a metric with its forecast
func (h *ReportHandler) ActualVsForecast(c *gin.Context) {
	var req dto.ForecastRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	result, err := h.reportService.ActualVsForecast(c.Request.Context(), req.Metric, req.Period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ARAging handles GET /reports/ar_aging: open receivables bucketed by days past due
func (h *ReportHandler) ARAging(c *gin.Context) {
	buckets, err := h.reportService.ARAging(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, buckets)
}

// InventoryValue handles GET /reports/inventory_value: stock value per product
func (h *ReportHandler) InventoryValue(c *gin.Context) {
	rows, err := h.reportService.InventoryValuation(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// InventoryMetrics handles GET /reports/inventory_metrics: COGS, stock value and turnover
func (h *ReportHandler) InventoryMetrics(c *gin.Context) {
	metrics, err := h.reportService.InventoryMetrics(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, metrics)
}

// TopCustomersVendors handles GET /reports/top_customers_vendors: largest
// open receivable and payable balances
func (h *ReportHandler) TopCustomersVendors(c *gin.Context) {
	var req dto.TopNRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	result, err := h.reportService.TopCustomersVendors(c.Request.Context(), req.TopN)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// CalendarEvents handles GET /reports/calendar_events: calendar events inside an optional window
func (h *ReportHandler) CalendarEvents(c *gin.Context) {
	var req dto.CalendarRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	start, err := parseBound("start", req.Start)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	end, err := parseBound("end", req.End)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	events, err := h.reportService.CalendarEvents(c.Request.Context(), start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, events)
}

// parseBound reads a date or timestamp query value with the same rules as
// timestamp fields. Empty means unbounded.
func parseBound(name, raw string) (*time.Time, error) {
	v, err := entity.Coerce(&entity.Field{Name: name, Type: entity.Timestamp}, raw)
	if err != nil || v == nil {
		return nil, err
	}
	t := v.(time.Time)
	return &t, nil
}
