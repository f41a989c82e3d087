package trade

import (
	"github.com/shopspring/decimal"

	"github.com/erp/erpcore/internal/domain/entity"
)

// PurchaseOrder is an order header placed with a vendor.
// TotalAmount is stored as entered and is not derived from the lines.
type PurchaseOrder struct {
	entity.Model
	VendorID    *int64               `gorm:"index" json:"vendor_id"`
	OrderDate   *entity.CalendarDate `json:"order_date"`
	Status      *string              `gorm:"type:varchar(50)" json:"status"`
	TotalAmount decimal.Decimal      `gorm:"type:numeric(14,2)" json:"total_amount"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// Bindings implements entity.Record
func (o *PurchaseOrder) Bindings() entity.Bindings {
	return entity.Bindings{
		"vendor_id":    &o.VendorID,
		"order_date":   &o.OrderDate,
		"status":       &o.Status,
		"total_amount": &o.TotalAmount,
	}
}

// PurchaseOrderLine is one product line of a purchase order
type PurchaseOrderLine struct {
	entity.Model
	POID      *int64              `gorm:"column:po_id;index" json:"po_id"`
	ProductID *int64              `gorm:"index" json:"product_id"`
	Quantity  decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"quantity"`
	UnitCost  decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"unit_cost"`
}

// TableName returns the table name for GORM
func (PurchaseOrderLine) TableName() string {
	return "purchase_order_lines"
}

// Bindings implements entity.Record
func (l *PurchaseOrderLine) Bindings() entity.Bindings {
	return entity.Bindings{
		"po_id":      &l.POID,
		"product_id": &l.ProductID,
		"quantity":   &l.Quantity,
		"unit_cost":  &l.UnitCost,
	}
}

// PurchaseOrderDescriptor describes the purchase_orders entity
func PurchaseOrderDescriptor() *entity.Descriptor {
	return &entity.Descriptor{
		Name:  "purchase_orders",
		Table: "purchase_orders",
		Label: "purchase order",
		New:   func() entity.Record { return &PurchaseOrder{} },
		Fields: []entity.Field{
			{Name: "vendor_id", Type: entity.Integer, Ref: entity.Ref("vendors")},
			{Name: "order_date", Type: entity.Date},
			{Name: "status", Type: entity.Text, MaxLen: 50},
			{Name: "total_amount", Type: entity.Decimal, Scale: 2, Default: decimal.Zero},
		},
	}
}

// PurchaseOrderLineDescriptor describes the purchase_order_lines entity.
// A line always references an existing order and product.
func PurchaseOrderLineDescriptor() *entity.Descriptor {
	return &entity.Descriptor{
		Name:  "purchase_order_lines",
		Table: "purchase_order_lines",
		Label: "purchase order line",
		New:   func() entity.Record { return &PurchaseOrderLine{} },
		Fields: []entity.Field{
			{Name: "po_id", Type: entity.Integer, Required: true, Ref: entity.Ref("purchase_orders")},
			{Name: "product_id", Type: entity.Integer, Required: true, Ref: entity.Ref("products")},
			{Name: "quantity", Type: entity.Decimal, Scale: 2},
			{Name: "unit_cost", Type: entity.Decimal, Scale: 2},
		},
	}
}
