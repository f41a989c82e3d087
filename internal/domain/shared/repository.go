package shared

// Page is an offset/limit window over a list ordered by primary key
type Page struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// PageLimits bounds the size of a Page
type PageLimits struct {
	Default int
	Max     int
}

// DefaultPageLimits returns the limits used when nothing is configured
func DefaultPageLimits() PageLimits {
	return PageLimits{Default: 100, Max: 1000}
}

// Normalize returns the page with a non-negative offset and a limit in [1, Max].
// A zero or negative limit means Default.
func (l PageLimits) Normalize(p Page) Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = l.Default
	}
	if l.Max > 0 && p.Limit > l.Max {
		p.Limit = l.Max
	}
	return p
}
