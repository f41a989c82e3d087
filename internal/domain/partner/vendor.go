package partner

import "github.com/erp/erpcore/internal/domain/entity"

// Vendor is a supplier of goods, referenced by purchase orders, contracts and payables
type Vendor struct {
	entity.Model
	Name    string  `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Email   *string `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
	Phone   *string `gorm:"type:varchar(100)" json:"phone"`
	Address *string `gorm:"type:text" json:"address"`
}

// TableName returns the table name for GORM
func (Vendor) TableName() string {
	return "vendors"
}

// Bindings implements entity.Record
func (v *Vendor) Bindings() entity.Bindings {
	return entity.Bindings{
		"name":    &v.Name,
		"email":   &v.Email,
		"phone":   &v.Phone,
		"address": &v.Address,
	}
}

// VendorDescriptor describes the vendors entity
func VendorDescriptor() *entity.Descriptor {
	return &entity.Descriptor{
		Name:   "vendors",
		Table:  "vendors",
		Label:  "vendor",
		New:    func() entity.Record { return &Vendor{} },
		Fields: contactFields(),
	}
}

// contactFields is the column set vendors and customers share
func contactFields() []entity.Field {
	return []entity.Field{
		{Name: "name", Type: entity.Text, Required: true, Unique: true, MaxLen: 255},
		{Name: "email", Type: entity.Text, MaxLen: 255},
		{Name: "phone", Type: entity.Text, MaxLen: 100},
		{Name: "address", Type: entity.Text},
	}
}
