package partner

import "github.com/erp/erpcore/internal/domain/entity"

// Warehouse is a stock location
type Warehouse struct {
	entity.Model
	Name     string  `gorm:"type:varchar(255);not null" json:"name"`
	Location *string `gorm:"type:varchar(255)" json:"location"`
}

// TableName returns the table name for GORM
func (Warehouse) TableName() string {
	return "warehouses"
}

// Bindings implements entity.Record
func (w *Warehouse) Bindings() entity.Bindings {
	return entity.Bindings{
		"name":     &w.Name,
		"location": &w.Location,
	}
}

// WarehouseDescriptor describes the warehouses entity
func WarehouseDescriptor() *entity.Descriptor {
	return &entity.Descriptor{
		Name:  "warehouses",
		Table: "warehouses",
		Label: "warehouse",
		New:   func() entity.Record { return &Warehouse{} },
		Fields: []entity.Field{
			{Name: "name", Type: entity.Text, Required: true, MaxLen: 255},
			{Name: "location", Type: entity.Text, MaxLen: 255},
		},
	}
}
