package finance

import (
	"github.com/shopspring/decimal"

	"github.com/erp/erpcore/internal/domain/entity"
)

// JournalEntry is the header of a set of ledger lines
type JournalEntry struct {
	entity.Model
	Date        *entity.CalendarDate `gorm:"index" json:"date"`
	Description *string              `gorm:"type:varchar(255)" json:"description"`
	Posted      bool                 `gorm:"not null" json:"posted"`
}

// TableName returns the table name for GORM
func (JournalEntry) TableName() string {
	return "journal_entries"
}

// Bindings implements entity.Record
func (e *JournalEntry) Bindings() entity.Bindings {
	return entity.Bindings{
		"date":        &e.Date,
		"description": &e.Description,
		"posted":      &e.Posted,
	}
}

// JournalEntryLine is one debit/credit line of a journal entry.
// AccountCode matches GLAccount.Code; the engine checks it on write and the
// store does not enforce it.
type JournalEntryLine struct {
	entity.Model
	JournalID   *int64          `gorm:"index" json:"journal_id"`
	AccountCode *string         `gorm:"type:varchar(100);index" json:"account_code"`
	Description *string         `gorm:"type:varchar(255)" json:"description"`
	Debit       decimal.Decimal `gorm:"type:numeric(14,2)" json:"debit"`
	Credit      decimal.Decimal `gorm:"type:numeric(14,2)" json:"credit"`
	CostCenter  *string         `gorm:"type:varchar(100)" json:"cost_center"`
}

// TableName returns the table name for GORM
func (JournalEntryLine) TableName() string {
	return "journal_entry_lines"
}

// Bindings implements entity.Record
func (l *JournalEntryLine) Bindings() entity.Bindings {
	return entity.Bindings{
		"journal_id":   &l.JournalID,
		"account_code": &l.AccountCode,
		"description":  &l.Description,
		"debit":        &l.Debit,
		"credit":       &l.Credit,
		"cost_center":  &l.CostCenter,
	}
}

// JournalEntryDescriptor describes the journal_entries entity
func JournalEntryDescriptor() *entity.Descriptor {
	return &entity.Descriptor{
		Name:  "journal_entries",
		Table: "journal_entries",
		Label: "journal entry",
		New:   func() entity.Record { return &JournalEntry{} },
		Fields: []entity.Field{
			{Name: "date", Type: entity.Date},
			{Name: "description", Type: entity.Text, MaxLen: 255},
			{Name: "posted", Type: entity.Bool, Default: false},
		},
	}
}

// JournalLineDescriptor describes journal lines, exposed as "journal_lines"
func JournalLineDescriptor() *entity.Descriptor {
	return &entity.Descriptor{
		Name:  "journal_lines",
		Table: "journal_entry_lines",
		Label: "journal line",
		New:   func() entity.Record { return &JournalEntryLine{} },
		Fields: []entity.Field{
			{Name: "journal_id", Type: entity.Integer, Ref: entity.Ref("journal_entries")},
			{Name: "account_code", Type: entity.Text, MaxLen: 100, Ref: entity.RefColumn("gl_accounts", "code")},
			{Name: "description", Type: entity.Text, MaxLen: 255},
			{Name: "debit", Type: entity.Decimal, Scale: 2, Default: decimal.Zero},
			{Name: "credit", Type: entity.Decimal, Scale: 2, Default: decimal.Zero},
			{Name: "cost_center", Type: entity.Text, MaxLen: 100},
		},
	}
}
