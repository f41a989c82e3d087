package trade

import (
	"github.com/shopspring/decimal"

	"github.com/erp/erpcore/internal/domain/entity"
)

// SalesOrder is an order header placed by a customer.
// TotalAmount is stored as entered; net sales reports sum it directly.
type SalesOrder struct {
	entity.Model
	CustomerID  *int64               `gorm:"index" json:"customer_id"`
	OrderDate   *entity.CalendarDate `gorm:"index" json:"order_date"`
	Status      *string              `gorm:"type:varchar(50)" json:"status"`
	TotalAmount decimal.Decimal      `gorm:"type:numeric(14,2)" json:"total_amount"`
}

// TableName returns the table name for GORM
func (SalesOrder) TableName() string {
	return "sales_orders"
}

// Bindings implements entity.Record
func (o *SalesOrder) Bindings() entity.Bindings {
	return entity.Bindings{
		"customer_id":  &o.CustomerID,
		"order_date":   &o.OrderDate,
		"status":       &o.Status,
		"total_amount": &o.TotalAmount,
	}
}

// SalesOrderLine is one product line of a sales order
type SalesOrderLine struct {
	entity.Model
	SOID      *int64              `gorm:"column:so_id;index" json:"so_id"`
	ProductID *int64              `gorm:"index" json:"product_id"`
	Quantity  decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"quantity"`
	UnitPrice decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"unit_price"`
}

// TableName returns the table name for GORM
func (SalesOrderLine) TableName() string {
	return "sales_order_lines"
}

// Bindings implements entity.Record
func (l *SalesOrderLine) Bindings() entity.Bindings {
	return entity.Bindings{
		"so_id":      &l.SOID,
		"product_id": &l.ProductID,
		"quantity":   &l.Quantity,
		"unit_price": &l.UnitPrice,
	}
}

// SalesOrderDescriptor describes the sales_orders entity
func SalesOrderDescriptor() *entity.Descriptor {
	return &entity.Descriptor{
		Name:  "sales_orders",
		Table: "sales_orders",
		Label: "sales order",
		New:   func() entity.Record { return &SalesOrder{} },
		Fields: []entity.Field{
			{Name: "customer_id", Type: entity.Integer, Ref: entity.Ref("customers")},
			{Name: "order_date", Type: entity.Date},
			{Name: "status", Type: entity.Text, MaxLen: 50},
			{Name: "total_amount", Type: entity.Decimal, Scale: 2, Default: decimal.Zero},
		},
	}
}

// SalesOrderLineDescriptor describes the sales_order_lines entity
func SalesOrderLineDescriptor() *entity.Descriptor {
	return &entity.Descriptor{
		Name:  "sales_order_lines",
		Table: "sales_order_lines",
		Label: "sales order line",
		New:   func() entity.Record { return &SalesOrderLine{} },
		Fields: []entity.Field{
			{Name: "so_id", Type: entity.Integer, Required: true, Ref: entity.Ref("sales_orders")},
			{Name: "product_id", Type: entity.Integer, Required: true, Ref: entity.Ref("products")},
			{Name: "quantity", Type: entity.Decimal, Scale: 2},
			{Name: "unit_price", Type: entity.Decimal, Scale: 2},
		},
	}
}
