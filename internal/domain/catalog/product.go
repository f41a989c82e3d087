package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/erp/erpcore/internal/domain/entity"
)

// DefaultUnitOfMeasure is applied to products created without a uom
const DefaultUnitOfMeasure = "EA"

// Product is a stocked or sold item
type Product struct {
	entity.Model
	SKU         string          `gorm:"column:sku;type:varchar(100);not null;uniqueIndex" json:"sku"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description *string         `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(14,2)" json:"price"`
	Cost        decimal.Decimal `gorm:"type:numeric(14,2)" json:"cost"`
	UOM         *string         `gorm:"column:uom;type:varchar(50)" json:"uom"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// Bindings implements entity.Record
func (p *Product) Bindings() entity.Bindings {
	return entity.Bindings{
		"sku":         &p.SKU,
		"name":        &p.Name,
		"description": &p.Description,
		"price":       &p.Price,
		"cost":        &p.Cost,
		"uom":         &p.UOM,
	}
}

// ProductDescriptor describes the products entity
func ProductDescriptor() *entity.Descriptor {
	return &entity.Descriptor{
		Name:  "products",
		Table: "products",
		Label: "product",
		New:   func() entity.Record { return &Product{} },
		Fields: []entity.Field{
			{Name: "sku", Type: entity.Text, Required: true, Unique: true, MaxLen: 100},
			{Name: "name", Type: entity.Text, Required: true, MaxLen: 255},
			{Name: "description", Type: entity.Text},
			{Name: "price", Type: entity.Decimal, Scale: 2, Default: decimal.Zero},
			{Name: "cost", Type: entity.Decimal, Scale: 2, Default: decimal.Zero},
			{Name: "uom", Type: entity.Text, MaxLen: 50, Default: DefaultUnitOfMeasure},
		},
	}
}
