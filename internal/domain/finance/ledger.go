package finance

import (
	"github.com/shopspring/decimal"

	"github.com/erp/erpcore/internal/domain/entity"
)

type Budget struct {
	entity.Model
	CostCenter *string             `gorm:"type:varchar(100)" json:"cost_center"`
	Year       *int64              `json:"year" validate:"omitempty,gte=1900,lte=9999"`
	Amount     decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"amount"`
}

func (Budget) TableName() string { return "budgets" }

func (b *Budget) Bindings() entity.Bindings {
	return entity.Bindings{
		"cost_center": &b.CostCenter,
		"year":        &b.Year,
		"amount":      &b.Amount,
	}
}

type FixedAsset struct {
	entity.Model
	Name            *string              `gorm:"type:varchar(255)" json:"name"`
	PurchaseDate    *entity.CalendarDate `json:"purchase_date"`
	PurchaseValue   decimal.NullDecimal  `gorm:"type:numeric(14,2)" json:"purchase_value"`
	UsefulLifeYears *int64               `json:"useful_life_years" validate:"omitempty,gte=0"`
}

func (FixedAsset) TableName() string { return "fixed_assets" }

func (a *FixedAsset) Bindings() entity.Bindings {
	return entity.Bindings{
		"name":              &a.Name,
		"purchase_date":     &a.PurchaseDate,
		"purchase_value":    &a.PurchaseValue,
		"useful_life_years": &a.UsefulLifeYears,
	}
}

// FXRate is a currency rate, kept to 6 fraction digits
type FXRate struct {
	entity.Model
	Currency *string              `gorm:"type:varchar(10)" json:"currency"`
	Rate     decimal.NullDecimal  `gorm:"type:numeric(14,6)" json:"rate"`
	Date     *entity.CalendarDate `json:"date"`
}

func (FXRate) TableName() string { return "fx_rates" }

func (r *FXRate) Bindings() entity.Bindings {
	return entity.Bindings{
		"currency": &r.Currency,
		"rate":     &r.Rate,
		"date":     &r.Date,
	}
}

type TaxLedger struct {
	entity.Model
	TaxType   *string              `gorm:"type:varchar(100)" json:"tax_type"`
	Reference *string              `gorm:"type:varchar(100)" json:"reference"`
	Date      *entity.CalendarDate `json:"date"`
	Amount    decimal.NullDecimal  `gorm:"type:numeric(14,2)" json:"amount"`
}

func (TaxLedger) TableName() string { return "tax_ledger" }

func (t *TaxLedger) Bindings() entity.Bindings {
	return entity.Bindings{
		"tax_type":  &t.TaxType,
		"reference": &t.Reference,
		"date":      &t.Date,
		"amount":    &t.Amount,
	}
}

// CashFlow is a cash movement; Category is Operating, Investing or Financing
type CashFlow struct {
	entity.Model
	Date        *entity.CalendarDate `json:"date"`
	Category    *string              `gorm:"type:varchar(100)" json:"category"`
	Description *string              `gorm:"type:varchar(255)" json:"description"`
	Amount      decimal.NullDecimal  `gorm:"type:numeric(14,2)" json:"amount"`
}

func (CashFlow) TableName() string { return "cash_flow" }

func (c *CashFlow) Bindings() entity.Bindings {
	return entity.Bindings{
		"date":        &c.Date,
		"category":    &c.Category,
		"description": &c.Description,
		"amount":      &c.Amount,
	}
}

type Reconciliation struct {
	entity.Model
	AccountCode *string `gorm:"type:varchar(100)" json:"account_code"`
	Period      *string `gorm:"type:varchar(20)" json:"period"`
	Status      *string `gorm:"type:varchar(50)" json:"status"`
	Notes       *string `gorm:"type:text" json:"notes"`
}

func (Reconciliation) TableName() string { return "reconciliation" }

func (r *Reconciliation) Bindings() entity.Bindings {
	return entity.Bindings{
		"account_code": &r.AccountCode,
		"period":       &r.Period,
		"status":       &r.Status,
		"notes":        &r.Notes,
	}
}

// LedgerDescriptors returns the descriptors of the supporting finance tables
func LedgerDescriptors() []*entity.Descriptor {
	return []*entity.Descriptor{
		{
			Name: "budgets", Table: "budgets", Label: "budget",
			New: func() entity.Record { return &Budget{} },
			Fields: []entity.Field{
				{Name: "cost_center", Type: entity.Text, MaxLen: 100},
				{Name: "year", Type: entity.Integer},
				{Name: "amount", Type: entity.Decimal, Scale: 2},
			},
		},
		{
			Name: "fixed_assets", Table: "fixed_assets", Label: "fixed asset",
			New: func() entity.Record { return &FixedAsset{} },
			Fields: []entity.Field{
				{Name: "name", Type: entity.Text, MaxLen: 255},
				{Name: "purchase_date", Type: entity.Date},
				{Name: "purchase_value", Type: entity.Decimal, Scale: 2},
				{Name: "useful_life_years", Type: entity.Integer},
			},
		},
		{
			Name: "fx_rates", Table: "fx_rates", Label: "fx rate",
			New: func() entity.Record { return &FXRate{} },
			Fields: []entity.Field{
				{Name: "currency", Type: entity.Text, MaxLen: 10},
				{Name: "rate", Type: entity.Decimal, Scale: 6},
				{Name: "date", Type: entity.Date},
			},
		},
		{
			Name: "tax_ledger", Table: "tax_ledger", Label: "tax ledger entry",
			New: func() entity.Record { return &TaxLedger{} },
			Fields: []entity.Field{
				{Name: "tax_type", Type: entity.Text, MaxLen: 100},
				{Name: "reference", Type: entity.Text, MaxLen: 100},
				{Name: "date", Type: entity.Date},
				{Name: "amount", Type: entity.Decimal, Scale: 2},
			},
		},
		{
			Name: "cash_flow", Table: "cash_flow", Label: "cash flow",
			New: func() entity.Record { return &CashFlow{} },
			Fields: []entity.Field{
				{Name: "date", Type: entity.Date},
				{Name: "category", Type: entity.Text, MaxLen: 100},
				{Name: "description", Type: entity.Text, MaxLen: 255},
				{Name: "amount", Type: entity.Decimal, Scale: 2},
			},
		},
		{
			Name: "reconciliation", Table: "reconciliation", Label: "reconciliation",
			New: func() entity.Record { return &Reconciliation{} },
			Fields: []entity.Field{
				{Name: "account_code", Type: entity.Text, MaxLen: 100},
				{Name: "period", Type: entity.Text, MaxLen: 20},
				{Name: "status", Type: entity.Text, MaxLen: 50},
				{Name: "notes", Type: entity.Text},
			},
		},
	}
}
