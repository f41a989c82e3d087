package finance

import "github.com/erp/erpcore/internal/domain/entity"

// Account types of the chart of accounts
const (
	AccountTypeAsset     = "Asset"
	AccountTypeLiability = "Liability"
	AccountTypeEquity    = "Equity"
	AccountTypeRevenue   = "Revenue"
	AccountTypeExpense   = "Expense"
)

// AccountTypes lists the valid GLAccount types
var AccountTypes = []string{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeRevenue,
	AccountTypeExpense,
}

// GLAccount is an account of the chart of accounts. Journal lines point at it
// by Code, not by id.
type GLAccount struct {
	entity.Model
	Code *string `gorm:"type:varchar(100);uniqueIndex" json:"code"`
	Name *string `gorm:"type:varchar(255)" json:"name"`
	Type *string `gorm:"type:varchar(50)" json:"type" validate:"omitempty,oneof=Asset Liability Equity Revenue Expense"`
}

// TableName returns the table name for GORM
func (GLAccount) TableName() string {
	return "gl_accounts"
}

// Bindings implements entity.Record
func (a *GLAccount) Bindings() entity.Bindings {
	return entity.Bindings{
		"code": &a.Code,
		"name": &a.Name,
		"type": &a.Type,
	}
}

// GLAccountDescriptor describes the gl_accounts entity
func GLAccountDescriptor() *entity.Descriptor {
	return &entity.Descriptor{
		Name:  "gl_accounts",
		Table: "gl_accounts",
		Label: "GL account",
		New:   func() entity.Record { return &GLAccount{} },
		Fields: []entity.Field{
			{Name: "code", Type: entity.Text, Unique: true, MaxLen: 100},
			{Name: "name", Type: entity.Text, MaxLen: 255},
			{Name: "type", Type: entity.Text, Enum: AccountTypes},
		},
	}
}

// CostCenter groups ledger activity and budgets by organisational unit
type CostCenter struct {
	entity.Model
	Code *string `gorm:"type:varchar(100);uniqueIndex" json:"code"`
	Name *string `gorm:"type:varchar(255)" json:"name"`
}

// TableName returns the table name for GORM
func (CostCenter) TableName() string {
	return "cost_centers"
}

// Bindings implements entity.Record
func (c *CostCenter) Bindings() entity.Bindings {
	return entity.Bindings{
		"code": &c.Code,
		"name": &c.Name,
	}
}

// CostCenterDescriptor describes the cost_centers entity
func CostCenterDescriptor() *entity.Descriptor {
	return &entity.Descriptor{
		Name:  "cost_centers",
		Table: "cost_centers",
		Label: "cost center",
		New:   func() entity.Record { return &CostCenter{} },
		Fields: []entity.Field{
			{Name: "code", Type: entity.Text, Unique: true, MaxLen: 100},
			{Name: "name", Type: entity.Text, MaxLen: 255},
		},
	}
}
