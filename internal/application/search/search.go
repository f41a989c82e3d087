package search

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/erp/erpcore/internal/domain/entity"
	"github.com/erp/erpcore/internal/infrastructure/logger"
	"github.com/erp/erpcore/internal/infrastructure/telemetry"
)

// DefaultLimit is the per-entity cap when the caller gives none
const DefaultLimit = 10

// Matcher finds records whose columns contain a term, case-insensitively
type Matcher interface {
	Match(ctx context.Context, d *entity.Descriptor, columns []string, term string, limit int) ([]entity.Record, error)
}

// Target is one searchable entity and the columns matched on it
type Target struct {
	Entity  string
	Columns []string
}

// DefaultTargets lists the searched entities in result order
func DefaultTargets() []Target {
	return []Target{
		{Entity: "vendors", Columns: []string{"name"}},
		{Entity: "customers", Columns: []string{"name"}},
		{Entity: "products", Columns: []string{"name", "sku"}},
		{Entity: "gl_accounts", Columns: []string{"name"}},
	}
}

// Hit is one matching record
type Hit struct {
	Entity string        `json:"entity"`
	Record entity.Record `json:"record"`
}

// Engine runs a substring search over a fixed list of entities
type Engine struct {
	registry *entity.Registry
	matcher  Matcher
	targets  []Target
	limit    int
	max      int
}

// Option configures an Engine
type Option func(*Engine)

// WithLimits sets the default per-entity cap and its maximum
func WithLimits(def, max int) Option {
	return func(e *Engine) {
		if def > 0 {
			e.limit = def
		}
		if max > 0 {
			e.max = max
		}
	}
}

// WithTargets replaces the searched entities
func WithTargets(targets ...Target) Option {
	return func(e *Engine) {
		e.targets = targets
	}
}

// NewEngine creates a search engine
func NewEngine(registry *entity.Registry, matcher Matcher, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		matcher:  matcher,
		targets:  DefaultTargets(),
		limit:    DefaultLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search returns up to limit hits per target, concatenated in target order.
// A blank query returns no hits.
func (e *Engine) Search(ctx context.Context, query string, limit int) (hits []Hit, err error) {
	ctx, span := telemetry.StartSpan(ctx, "search", "query")
	defer func() { telemetry.EndSpan(span, err) }()

	hits = []Hit{}
	term := strings.TrimSpace(query)
	if term == "" {
		return hits, nil
	}
	if limit <= 0 {
		limit = e.limit
	}
	if e.max > 0 && limit > e.max {
		limit = e.max
	}

	for _, target := range e.targets {
		d, err := e.registry.Describe(target.Entity)
		if err != nil {
			return nil, err
		}
		records, err := e.matcher.Match(ctx, d, target.Columns, term, limit)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			hits = append(hits, Hit{Entity: target.Entity, Record: rec})
		}
	}

	logger.L(ctx).Debug("search finished", zap.String("query", term), zap.Int("hits", len(hits)))
	return hits, nil
}
