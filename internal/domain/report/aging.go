package report

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Aging bucket keys
const (
	Bucket0To30  = "0-30"
	Bucket31To60 = "31-60"
	Bucket61To90 = "61-90"
	Bucket90Plus = "90+"
)

// AgingBuckets sums open receivables by days past due.
// All four buckets are always present.
type AgingBuckets struct {
	Current decimal.Decimal
	Days60  decimal.Decimal
	Days90  decimal.Decimal
	Over90  decimal.Decimal
}

// BucketFor returns the bucket key of a receivable that is days past due.
// Items not yet due fall into 0-30.
func BucketFor(days int) string {
	switch {
	case days <= 30:
		return Bucket0To30
	case days <= 60:
		return Bucket31To60
	case days <= 90:
		return Bucket61To90
	default:
		return Bucket90Plus
	}
}

// DaysPastDue counts whole calendar days from due to today
func DaysPastDue(due, today time.Time) int {
	d := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(d).Hours() / 24)
}

// Add puts amount into the bucket for days
func (b *AgingBuckets) Add(days int, amount decimal.Decimal) {
	switch BucketFor(days) {
	case Bucket0To30:
		b.Current = b.Current.Add(amount)
	case Bucket31To60:
		b.Days60 = b.Days60.Add(amount)
	case Bucket61To90:
		b.Days90 = b.Days90.Add(amount)
	default:
		b.Over90 = b.Over90.Add(amount)
	}
}

// Get returns the total of the bucket key
func (b AgingBuckets) Get(key string) decimal.Decimal {
	switch key {
	case Bucket0To30:
		return b.Current
	case Bucket31To60:
		return b.Days60
	case Bucket61To90:
		return b.Days90
	default:
		return b.Over90
	}
}

// MarshalJSON renders the buckets keyed by their day ranges
func (b AgingBuckets) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]decimal.Decimal{
		Bucket0To30:  Money(b.Current),
		Bucket31To60: Money(b.Days60),
		Bucket61To90: Money(b.Days90),
		Bucket90Plus: Money(b.Over90),
	})
}
