package finance

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/erp/erpcore/internal/domain/entity"
)

// SettledStatuses mark an AR/AP record as no longer open. Any other status,
// including none, is open.
var SettledStatuses = []string{"paid", "closed", "settled", "void"}

// IsOpenStatus reports whether an AR/AP status counts as an open item
func IsOpenStatus(status *string) bool {
	if status == nil {
		return true
	}
	s := strings.ToLower(strings.TrimSpace(*status))
	for _, settled := range SettledStatuses {
		if s == settled {
			return false
		}
	}
	return true
}

// AccountsPayable is an invoice owed to a vendor
type AccountsPayable struct {
	entity.Model
	VendorID      *int64               `gorm:"index" json:"vendor_id"`
	InvoiceNumber *string              `gorm:"type:varchar(100)" json:"invoice_number"`
	InvoiceDate   *entity.CalendarDate `json:"invoice_date"`
	DueDate       *entity.CalendarDate `json:"due_date"`
	Amount        decimal.NullDecimal  `gorm:"type:numeric(14,2)" json:"amount"`
	Status        *string              `gorm:"type:varchar(50)" json:"status"`
}

// TableName returns the table name for GORM
func (AccountsPayable) TableName() string {
	return "accounts_payable"
}

// Bindings implements entity.Record
func (p *AccountsPayable) Bindings() entity.Bindings {
	return entity.Bindings{
		"vendor_id":      &p.VendorID,
		"invoice_number": &p.InvoiceNumber,
		"invoice_date":   &p.InvoiceDate,
		"due_date":       &p.DueDate,
		"amount":         &p.Amount,
		"status":         &p.Status,
	}
}

// AccountsReceivable is an invoice owed by a customer
type AccountsReceivable struct {
	entity.Model
	CustomerID    *int64               `gorm:"index" json:"customer_id"`
	InvoiceNumber *string              `gorm:"type:varchar(100)" json:"invoice_number"`
	InvoiceDate   *entity.CalendarDate `json:"invoice_date"`
	DueDate       *entity.CalendarDate `json:"due_date"`
	Amount        decimal.NullDecimal  `gorm:"type:numeric(14,2)" json:"amount"`
	Status        *string              `gorm:"type:varchar(50)" json:"status"`
}

// TableName returns the table name for GORM
func (AccountsReceivable) TableName() string {
	return "accounts_receivable"
}

// Bindings implements entity.Record
func (r *AccountsReceivable) Bindings() entity.Bindings {
	return entity.Bindings{
		"customer_id":    &r.CustomerID,
		"invoice_number": &r.InvoiceNumber,
		"invoice_date":   &r.InvoiceDate,
		"due_date":       &r.DueDate,
		"amount":         &r.Amount,
		"status":         &r.Status,
	}
}

func openItemFields(party *entity.Field) []entity.Field {
	return []entity.Field{
		*party,
		{Name: "invoice_number", Type: entity.Text, MaxLen: 100},
		{Name: "invoice_date", Type: entity.Date},
		{Name: "due_date", Type: entity.Date},
		{Name: "amount", Type: entity.Decimal, Scale: 2},
		{Name: "status", Type: entity.Text, MaxLen: 50},
	}
}

// AccountsPayableDescriptor describes the accounts_payable entity
func AccountsPayableDescriptor() *entity.Descriptor {
	return &entity.Descriptor{
		Name:  "accounts_payable",
		Table: "accounts_payable",
		Label: "payable",
		New:   func() entity.Record { return &AccountsPayable{} },
		Fields: openItemFields(&entity.Field{
			Name: "vendor_id", Type: entity.Integer, Ref: entity.Ref("vendors"),
		}),
	}
}

// AccountsReceivableDescriptor describes the accounts_receivable entity
func AccountsReceivableDescriptor() *entity.Descriptor {
	return &entity.Descriptor{
		Name:  "accounts_receivable",
		Table: "accounts_receivable",
		Label: "receivable",
		New:   func() entity.Record { return &AccountsReceivable{} },
		Fields: openItemFields(&entity.Field{
			Name: "customer_id", Type: entity.Integer, Ref: entity.Ref("customers"),
		}),
	}
}
