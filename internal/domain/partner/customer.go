package partner

import "github.com/erp/erpcore/internal/domain/entity"

// Customer is a buyer, referenced by sales orders and receivables
type Customer struct {
	entity.Model
	Name    string  `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Email   *string `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
	Phone   *string `gorm:"type:varchar(100)" json:"phone"`
	Address *string `gorm:"type:text" json:"address"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// Bindings implements entity.Record
func (c *Customer) Bindings() entity.Bindings {
	return entity.Bindings{
		"name":    &c.Name,
		"email":   &c.Email,
		"phone":   &c.Phone,
		"address": &c.Address,
	}
}

// CustomerDescriptor describes the customers entity
func CustomerDescriptor() *entity.Descriptor {
	return &entity.Descriptor{
		Name:   "customers",
		Table:  "customers",
		Label:  "customer",
		New:    func() entity.Record { return &Customer{} },
		Fields: contactFields(),
	}
}
