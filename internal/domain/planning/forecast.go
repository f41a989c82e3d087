package planning

import (
	"github.com/shopspring/decimal"

	"github.com/erp/erpcore/internal/domain/entity"
)

// Forecast metrics understood by the actual-vs-forecast report
const (
	MetricNetSales  = "net_sales"
	MetricNetProfit = "net_profit"
)

// Forecast is a planned value of a metric for one month
type Forecast struct {
	entity.Model
	// Period is a calendar month formatted YYYY-MM.
	Period *string             `gorm:"type:varchar(20);index" json:"period"`
	Metric *string             `gorm:"type:varchar(100);index" json:"metric"`
	Value  decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"value"`
	Notes  *string             `gorm:"type:text" json:"notes"`
}

// TableName returns the table name for GORM
func (Forecast) TableName() string {
	return "forecasts"
}

// Bindings implements entity.Record
func (f *Forecast) Bindings() entity.Bindings {
	return entity.Bindings{
		"period": &f.Period,
		"metric": &f.Metric,
		"value":  &f.Value,
		"notes":  &f.Notes,
	}
}

// ForecastDescriptor describes the forecasts entity
func ForecastDescriptor() *entity.Descriptor {
	return &entity.Descriptor{
		Name:  "forecasts",
		Table: "forecasts",
		Label: "forecast",
		New:   func() entity.Record { return &Forecast{} },
		Fields: []entity.Field{
			{Name: "period", Type: entity.Text, MaxLen: 20},
			{Name: "metric", Type: entity.Text, MaxLen: 100},
			{Name: "value", Type: entity.Decimal, Scale: 2},
			{Name: "notes", Type: entity.Text},
		},
	}
}
