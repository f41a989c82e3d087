package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Assign stores a coerced value (or nil) through a binding pointer.
//
// Supported bindings and the values they accept:
//
//	*string, **string                    string
//	*int64, **int64                      int64
//	*decimal.Decimal, *decimal.NullDecimal decimal.Decimal
//	**CalendarDate                       CalendarDate
//	**time.Time                          time.Time
//	*bool                                bool
//
// nil clears nullable bindings and zeroes the others.
func Assign(binding, value any) error {
	switch p := binding.(type) {
	case *string:
		if value == nil {
			*p = ""
			return nil
		}
		v, ok := value.(string)
		if !ok {
			return mismatch(binding, value)
		}
		*p = v
	case **string:
		if value == nil {
			*p = nil
			return nil
		}
		v, ok := value.(string)
		if !ok {
			return mismatch(binding, value)
		}
		*p = &v
	case *int64:
		if value == nil {
			*p = 0
			return nil
		}
		v, ok := value.(int64)
		if !ok {
			return mismatch(binding, value)
		}
		*p = v
	case **int64:
		if value == nil {
			*p = nil
			return nil
		}
		v, ok := value.(int64)
		if !ok {
			return mismatch(binding, value)
		}
		*p = &v
	case *decimal.Decimal:
		if value == nil {
			*p = decimal.Zero
			return nil
		}
		v, ok := value.(decimal.Decimal)
		if !ok {
			return mismatch(binding, value)
		}
		*p = v
	case *decimal.NullDecimal:
		if value == nil {
			*p = decimal.NullDecimal{}
			return nil
		}
		v, ok := value.(decimal.Decimal)
		if !ok {
			return mismatch(binding, value)
		}
		*p = decimal.NewNullDecimal(v)
	case **CalendarDate:
		if value == nil {
			*p = nil
			return nil
		}
		v, ok := value.(CalendarDate)
		if !ok {
			return mismatch(binding, value)
		}
		*p = &v
	case **time.Time:
		if value == nil {
			*p = nil
			return nil
		}
		v, ok := value.(time.Time)
		if !ok {
			return mismatch(binding, value)
		}
		*p = &v
	case *bool:
		if value == nil {
			*p = false
			return nil
		}
		v, ok := value.(bool)
		if !ok {
			return mismatch(binding, value)
		}
		*p = v
	default:
		return fmt.Errorf("unsupported binding %T", binding)
	}
	return nil
}

// Value reads the current value behind a binding; it returns nil for unset
// nullable fields and for empty required strings.
func Value(binding any) any {
	switch p := binding.(type) {
	case *string:
		if *p == "" {
			return nil
		}
		return *p
	case **string:
		if *p == nil {
			return nil
		}
		return **p
	case *int64:
		return *p
	case **int64:
		if *p == nil {
			return nil
		}
		return **p
	case *decimal.Decimal:
		return *p
	case *decimal.NullDecimal:
		if !p.Valid {
			return nil
		}
		return p.Decimal
	case **CalendarDate:
		if *p == nil {
			return nil
		}
		return **p
	case **time.Time:
		if *p == nil {
			return nil
		}
		return **p
	case *bool:
		return *p
	}
	return nil
}

func bindingMatches(t FieldType, binding any) bool {
	switch binding.(type) {
	case *string, **string:
		return t == Text
	case *int64, **int64:
		return t == Integer
	case *decimal.Decimal, *decimal.NullDecimal:
		return t == Decimal
	case **CalendarDate:
		return t == Date
	case **time.Time:
		return t == Timestamp
	case *bool:
		return t == Bool
	}
	return false
}

func mismatch(binding, value any) error {
	return fmt.Errorf("cannot assign %T to %T", value, binding)
}
