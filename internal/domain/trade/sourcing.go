package trade

import (
	"github.com/shopspring/decimal"

	"github.com/erp/erpcore/internal/domain/entity"
)

// PurchaseRequisition is an internal request to buy a product
type PurchaseRequisition struct {
	entity.Model
	ProductID *int64               `gorm:"index" json:"product_id"`
	Quantity  decimal.Decimal      `gorm:"type:numeric(14,2)" json:"quantity"`
	Status    *string              `gorm:"type:varchar(50)" json:"status"`
	NeededBy  *entity.CalendarDate `json:"needed_by"`
}

// TableName returns the table name for GORM
func (PurchaseRequisition) TableName() string {
	return "purchase_requisitions"
}

// Bindings implements entity.Record
func (r *PurchaseRequisition) Bindings() entity.Bindings {
	return entity.Bindings{
		"product_id": &r.ProductID,
		"quantity":   &r.Quantity,
		"status":     &r.Status,
		"needed_by":  &r.NeededBy,
	}
}

// SupplierContract records the terms agreed with a vendor for a date range
type SupplierContract struct {
	entity.Model
	VendorID  *int64               `gorm:"index" json:"vendor_id"`
	StartDate *entity.CalendarDate `json:"start_date"`
	EndDate   *entity.CalendarDate `json:"end_date"`
	Terms     *string              `gorm:"type:text" json:"terms"`
}

// TableName returns the table name for GORM
func (SupplierContract) TableName() string {
	return "supplier_contracts"
}

// Bindings implements entity.Record
func (c *SupplierContract) Bindings() entity.Bindings {
	return entity.Bindings{
		"vendor_id":  &c.VendorID,
		"start_date": &c.StartDate,
		"end_date":   &c.EndDate,
		"terms":      &c.Terms,
	}
}

func PurchaseRequisitionDescriptor() *entity.Descriptor {
	return &entity.Descriptor{
		Name:  "purchase_requisitions",
		Table: "purchase_requisitions",
		Label: "purchase requisition",
		New:   func() entity.Record { return &PurchaseRequisition{} },
		Fields: []entity.Field{
			{Name: "product_id", Type: entity.Integer, Ref: entity.Ref("products")},
			{Name: "quantity", Type: entity.Decimal, Scale: 2, Default: decimal.Zero},
			{Name: "status", Type: entity.Text, MaxLen: 50},
			{Name: "needed_by", Type: entity.Date},
		},
	}
}

func SupplierContractDescriptor() *entity.Descriptor {
	return &entity.Descriptor{
		Name:  "supplier_contracts",
		Table: "supplier_contracts",
		Label: "supplier contract",
		New:   func() entity.Record { return &SupplierContract{} },
		Fields: []entity.Field{
			{Name: "vendor_id", Type: entity.Integer, Ref: entity.Ref("vendors")},
			{Name: "start_date", Type: entity.Date},
			{Name: "end_date", Type: entity.Date},
			{Name: "terms", Type: entity.Text},
		},
	}
}
