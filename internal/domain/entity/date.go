package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// CalendarDateLayout is the JSON form of calendar dates
const CalendarDateLayout = "2006-01-02"

// CalendarDate is the stored value of Date fields. It is stored like datatypes.Date and
// written to JSON without a time of day.
type CalendarDate datatypes.Date

// NewCalendarDate truncates t to its calendar day in UTC
func NewCalendarDate(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// Time returns midnight UTC of the date
func (d CalendarDate) Time() time.Time {
	return time.Time(d)
}

func (d CalendarDate) String() string {
	return d.Time().Format(CalendarDateLayout)
}

// Scan implements sql.Scanner
func (d *CalendarDate) Scan(value any) error {
	return (*datatypes.Date)(d).Scan(value)
}

// Value implements driver.Valuer
func (d CalendarDate) Value() (driver.Value, error) {
	return datatypes.Date(d).Value()
}

// GormDataType maps the column to the dialect's date type
func (CalendarDate) GormDataType() string {
	return datatypes.Date{}.GormDataType()
}

// MarshalJSON writes "YYYY-MM-DD"
func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD" or an RFC 3339 timestamp
func (d *CalendarDate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for _, layout := range []string{CalendarDateLayout, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			*d = NewCalendarDate(t)
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}
