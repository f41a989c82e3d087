package entity

// coerce.go turns loosely typed input (JSON values, spreadsheet cells) into
// the Go values Assign accepts. Input from people is messy:
//   - dates in ISO, US and spreadsheet serial form
//   - currency symbols, thousands separators and "(12.50)" negatives
//   - yes/no, y/n, 1/0 booleans
//   - Excel formula wrappers (="00123")
//
// Empty or whitespace-only input is null for every type.

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/erp/erpcore/internal/domain/shared"
)

var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

var (
	dateLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006",
		"02-Jan-2006", "2 Jan 2006", "Jan 2, 2006",
		"20060102",
		time.RFC3339,
	}
	timestampLayouts = []string{
		time.RFC3339Nano, time.RFC3339,
		"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02T15:04", "2006-01-02 15:04",
		"1/2/2006 15:04:05", "1/2/2006 15:04",
	}
	anyTimeLayouts = append(append([]string{}, timestampLayouts...), dateLayouts...)
)

// Spreadsheet serials outside this range are treated as plain numbers.
const (
	minSerial = 1
	maxSerial = 2958465 // 9999-12-31
)

// Coerce converts raw into the typed value for f, or nil for empty input.
// Failures are validation errors bound to the field name.
func Coerce(f *Field, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	if s, ok := raw.(string); ok {
		s = cleanCell(s)
		if s == "" {
			return nil, nil
		}
		raw = s
	}

	var (
		v   any
		err error
	)
	switch f.Type {
	case Text:
		v, err = toText(f, raw)
	case Integer:
		v, err = toInteger(raw)
	case Decimal:
		v, err = toDecimal(f, raw)
	case Date:
		v, err = toDate(raw)
	case Timestamp:
		v, err = toTimestamp(raw)
	case Bool:
		v, err = toBool(raw)
	default:
		err = fmt.Errorf("unsupported field type %s", f.Type)
	}
	if err != nil {
		return nil, shared.Validation(f.Name, fmt.Sprintf("%s: %v", f.Name, err))
	}
	return v, nil
}

// cleanCell trims whitespace and strips the ="..." wrapper spreadsheets use
// to keep leading zeros.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = strings.TrimSpace(s[2 : len(s)-1])
	}
	return s
}

func toText(f *Field, raw any) (any, error) {
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		s = v.String()
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	case bool:
		s = strconv.FormatBool(v)
	case decimal.Decimal:
		s = v.String()
	default:
		return nil, fmt.Errorf("expected text, got %T", raw)
	}
	if len(f.Enum) > 0 {
		for _, e := range f.Enum {
			if strings.EqualFold(e, s) {
				return e, nil
			}
		}
		return nil, fmt.Errorf("must be one of %s", strings.Join(f.Enum, ", "))
	}
	if !utf8.ValidString(s) {
		return nil, errors.New("is not valid UTF-8 text")
	}
	if f.MaxLen > 0 && utf8.RuneCountInString(s) > f.MaxLen {
		return nil, fmt.Errorf("longer than %d characters", f.MaxLen)
	}
	return s, nil
}

func toInteger(raw any) (any, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%v is not a whole number", v)
		}
		// float64(math.MaxInt64) rounds up to 2^63
		if v < math.MinInt64 || v >= math.MaxInt64 {
			return nil, fmt.Errorf("%v is out of range", v)
		}
		return int64(v), nil
	case json.Number:
		return integerFromString(v.String())
	case string:
		return integerFromString(v)
	case decimal.Decimal:
		return integerFromDecimal(v)
	}
	return nil, fmt.Errorf("expected integer, got %T", raw)
}

var (
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

func integerFromString(s string) (any, error) {
	n, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
	if err == nil {
		return n, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return nil, fmt.Errorf("%s is out of range", s)
	}
	d, err := parseNumeric(s)
	if err != nil {
		return nil, err
	}
	return integerFromDecimal(d)
}

func integerFromDecimal(d decimal.Decimal) (any, error) {
	if !d.IsInteger() {
		return nil, fmt.Errorf("%s is not a whole number", d)
	}
	if d.LessThan(minInt64) || d.GreaterThan(maxInt64) {
		return nil, fmt.Errorf("%s is out of range", d)
	}
	return d.IntPart(), nil
}

func toDecimal(f *Field, raw any) (any, error) {
	var (
		d   decimal.Decimal
		err error
	)
	switch v := raw.(type) {
	case decimal.Decimal:
		d = v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%v is not a number", v)
		}
		d = decimal.NewFromFloat(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	case json.Number:
		d, err = decimal.NewFromString(v.String())
	case string:
		d, err = parseNumeric(v)
	default:
		return nil, fmt.Errorf("expected number, got %T", raw)
	}
	if err != nil {
		return nil, err
	}
	d = d.Round(f.Scale)
	if d.Abs().GreaterThanOrEqual(f.DecimalLimit()) {
		return nil, fmt.Errorf("%s is out of range", d)
	}
	return d, nil
}

// parseNumeric accepts "$1,234.50", "(12.00)" and "€ 3".
func parseNumeric(s string) (decimal.Decimal, error) {
	orig := s
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	s = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "").Replace(s)
	if negative {
		s = "-" + s
	}
	if !numericRegex.MatchString(s) {
		return decimal.Decimal{}, fmt.Errorf("%q is not a number", orig)
	}
	return decimal.NewFromString(s)
}

func toDate(raw any) (any, error) {
	t, err := toTime(raw, dateLayouts)
	if err != nil {
		return nil, err
	}
	return NewCalendarDate(t), nil
}

func toTimestamp(raw any) (any, error) {
	t, err := toTime(raw, anyTimeLayouts)
	if err != nil {
		return nil, err
	}
	return t.UTC(), nil
}

func toTime(raw any, layouts []string) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case CalendarDate:
		return v.Time(), nil
	case datatypes.Date:
		return time.Time(v), nil
	case float64:
		return fromSerial(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, err
		}
		return fromSerial(f)
	case string:
		for _, layout := range layouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return fromSerial(f)
		}
		return time.Time{}, fmt.Errorf("%q is not a recognised date", v)
	}
	return time.Time{}, fmt.Errorf("expected date, got %T", raw)
}

// fromSerial converts a spreadsheet day serial (1900 date system)
func fromSerial(f float64) (time.Time, error) {
	if f < minSerial || f > maxSerial {
		return time.Time{}, fmt.Errorf("%v is not a date serial", f)
	}
	return excelize.ExcelDateToTime(f, false)
}

func toBool(raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case float64:
		switch v {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	case int:
		switch v {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	case string:
		switch strings.ToLower(v) {
		case "true", "t", "yes", "y", "1":
			return true, nil
		case "false", "f", "no", "n", "0":
			return false, nil
		}
	}
	return nil, fmt.Errorf("%v is not a boolean", raw)
}
