package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/erp/erpcore/internal/domain/entity"
)

// Inventory is the on-hand balance of one product in one warehouse.
// Quantity is a running balance: upserts add to it rather than replace it.
type Inventory struct {
	entity.Model
	ProductID   *int64          `gorm:"uniqueIndex:idx_inventory_product_warehouse,priority:1" json:"product_id"`
	WarehouseID *int64          `gorm:"uniqueIndex:idx_inventory_product_warehouse,priority:2" json:"warehouse_id"`
	Quantity    decimal.Decimal `gorm:"type:numeric(14,2)" json:"quantity"`
}

// TableName returns the table name for GORM
func (Inventory) TableName() string {
	return "inventory"
}

// Bindings implements entity.Record
func (i *Inventory) Bindings() entity.Bindings {
	return entity.Bindings{
		"product_id":   &i.ProductID,
		"warehouse_id": &i.WarehouseID,
		"quantity":     &i.Quantity,
	}
}

// Descriptor describes the inventory entity
func Descriptor() *entity.Descriptor {
	return &entity.Descriptor{
		Name:  "inventory",
		Table: "inventory",
		Label: "inventory",
		New:   func() entity.Record { return &Inventory{} },
		Fields: []entity.Field{
			{Name: "product_id", Type: entity.Integer, Required: true, Ref: entity.Ref("products")},
			{Name: "warehouse_id", Type: entity.Integer, Required: true, Ref: entity.Ref("warehouses")},
			{Name: "quantity", Type: entity.Decimal, Scale: 2, Default: decimal.Zero},
		},
		UpsertKey:  []string{"product_id", "warehouse_id"},
		Accumulate: []string{"quantity"},
	}
}
