package report

import (
	"time"

	"github.com/erp/erpcore/internal/domain/shared"
)

const periodLayout = "2006-01"

// Period is one calendar month, the half-open range [Start, End)
type Period struct {
	Month string
	Start time.Time
	End   time.Time
}

// ParsePeriod parses "YYYY-MM". An empty string means no period filter and
// yields nil.
func ParsePeriod(s string) (*Period, error) {
	if s == "" {
		return nil, nil
	}
	start, err := time.Parse(periodLayout, s)
	if err != nil || len(s) != len(periodLayout) {
		return nil, shared.Validation("period", "period must have the form YYYY-MM")
	}
	return &Period{
		Month: s,
		Start: start,
		End:   start.AddDate(0, 1, 0),
	}, nil
}

// Contains reports whether t falls inside the month
func (p *Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}
