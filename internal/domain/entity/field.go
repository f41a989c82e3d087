package entity

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FieldType is the semantic type of a field
type FieldType int

const (
	Text FieldType = iota + 1
	Integer
	Decimal
	Date
	Timestamp
	Bool
)

// String returns the lowercase name of the type
func (t FieldType) String() string {
	switch t {
	case Text:
		return "text"
	case Integer:
		return "integer"
	case Decimal:
		return "decimal"
	case Date:
		return "date"
	case Timestamp:
		return "timestamp"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
}

// Reference points a field at a column of another entity.
// Column is "id" for foreign keys; journal lines reference gl_accounts by "code".
type Reference struct {
	Entity string
	Column string
}

// Field describes one column of an entity
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	Unique   bool
	// Scale is the number of fraction digits kept for Decimal fields.
	Scale int32
	// Precision is the total digit count of a Decimal column; zero means
	// DefaultPrecision.
	Precision int32
	// MaxLen bounds Text fields; zero means unbounded.
	MaxLen int
	// Default is applied on create when the field is absent. It must have the
	// Go type Coerce produces for Type.
	Default any
	Ref     *Reference
	// Enum restricts Text fields to a fixed set of values.
	Enum []string
}

// DefaultPrecision matches the numeric(14, scale) columns of the schema
const DefaultPrecision int32 = 14

// DecimalLimit returns the smallest magnitude a Decimal field cannot hold
func (f *Field) DecimalLimit() decimal.Decimal {
	p := f.Precision
	if p == 0 {
		p = DefaultPrecision
	}
	return decimal.New(1, p-f.Scale)
}

// IsReference reports whether the field must resolve to a row of another entity
func (f *Field) IsReference() bool {
	return f.Ref != nil
}

// Ref builds a foreign-key reference to the id of entity
func Ref(entity string) *Reference {
	return &Reference{Entity: entity, Column: "id"}
}

// RefColumn builds a reference matched on column instead of id
func RefColumn(entity, column string) *Reference {
	return &Reference{Entity: entity, Column: column}
}
