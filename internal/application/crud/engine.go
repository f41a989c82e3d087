// Package crud validates and persists records of any registered entity.
package crud

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/erp/erpcore/internal/domain/entity"
	"github.com/erp/erpcore/internal/domain/shared"
	"github.com/erp/erpcore/internal/infrastructure/logger"
	"github.com/erp/erpcore/internal/infrastructure/telemetry"
)

// Operation names used for spans and metrics
const (
	OpList   = "list"
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpUpsert = "upsert"
)

// Fields is loosely typed input keyed by column name, as decoded from JSON
// or read from a spreadsheet row.
type Fields map[string]any

// Engine implements create, read, update, delete and upsert for every entity
// in the registry. All writes go through the descriptor: values are coerced
// into a typed record, checked, and only then handed to the store.
type Engine struct {
	registry *entity.Registry
	store    entity.Store
	limits   shared.PageLimits
	validate *validator.Validate
	metrics  *telemetry.EngineMetrics
}

// Option configures an Engine
type Option func(*Engine)

// WithPageLimits sets the default and maximum list page sizes
func WithPageLimits(limits shared.PageLimits) Option {
	return func(e *Engine) {
		e.limits = limits
	}
}

// WithMetrics records operation counts on m
func WithMetrics(m *telemetry.EngineMetrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates a CRUD engine over store
func NewEngine(registry *entity.Registry, store entity.Store, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		store:    store,
		limits:   shared.DefaultPageLimits(),
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithStore returns a copy of the engine that writes through store, typically
// a transactional store handed out by entity.Store.Transaction.
func (e *Engine) WithStore(store entity.Store) *Engine {
	c := *e
	c.store = store
	return &c
}

// Store returns the store the engine writes through
func (e *Engine) Store() entity.Store {
	return e.store
}

// Registry returns the entity registry
func (e *Engine) Registry() *entity.Registry {
	return e.registry
}

// Limits returns the list page limits
func (e *Engine) Limits() shared.PageLimits {
	return e.limits
}

// observe starts the span of one operation. The returned func ends the span
// and counts the operation.
func (e *Engine) observe(ctx context.Context, name, op string) (context.Context, func(error)) {
	ctx, span := telemetry.StartSpan(ctx, "crud", op, telemetry.AttrEntity.String(name))
	return ctx, func(err error) {
		telemetry.EndSpan(span, err)
		e.metrics.RecordOperation(ctx, name, op, err)
	}
}

// List returns one page of records ordered by id
func (e *Engine) List(ctx context.Context, name string, page shared.Page) (records []entity.Record, err error) {
	ctx, done := e.observe(ctx, name, OpList)
	defer func() { done(err) }()

	d, err := e.registry.Describe(name)
	if err != nil {
		return nil, err
	}
	return e.store.List(ctx, d, e.limits.Normalize(page))
}

// Get returns the record with id or a NotFound error
func (e *Engine) Get(ctx context.Context, name string, id int64) (rec entity.Record, err error) {
	ctx, done := e.observe(ctx, name, OpGet)
	defer func() { done(err) }()

	d, err := e.registry.Describe(name)
	if err != nil {
		return nil, err
	}
	return e.store.Get(ctx, d, id)
}

// Create builds a record from fields and inserts it. Unknown field names are
// ignored; defaults apply to absent or empty fields.
func (e *Engine) Create(ctx context.Context, name string, fields Fields) (rec entity.Record, err error) {
	ctx, done := e.observe(ctx, name, OpCreate)
	defer func() { done(err) }()

	d, err := e.registry.Describe(name)
	if err != nil {
		return nil, err
	}
	rec, err = e.build(d, fields)
	if err != nil {
		return nil, err
	}

	err = e.store.Transaction(ctx, func(tx entity.Store) error {
		if err := e.checkUnique(ctx, tx, d, rec, d.Columns()); err != nil {
			return err
		}
		if err := e.checkUpsertKey(ctx, tx, d, rec); err != nil {
			return err
		}
		if err := e.checkReferences(ctx, tx, d, rec, d.Columns()); err != nil {
			return err
		}
		return tx.Insert(ctx, d, rec)
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Debug("record created", zap.String("entity", name), zap.Int64("id", rec.GetID()))
	return rec, nil
}

// Update applies the known fields present in fields to the record with id
// and writes only those columns. An empty update returns the stored record.
func (e *Engine) Update(ctx context.Context, name string, id int64, fields Fields) (rec entity.Record, err error) {
	ctx, done := e.observe(ctx, name, OpUpdate)
	defer func() { done(err) }()

	d, err := e.registry.Describe(name)
	if err != nil {
		return nil, err
	}

	err = e.store.Transaction(ctx, func(tx entity.Store) error {
		current, err := tx.Get(ctx, d, id)
		if err != nil {
			return err
		}
		rec = current

		touched, err := apply(d, rec, fields)
		if err != nil {
			return err
		}
		if len(touched) == 0 {
			return nil
		}
		if err := checkRequired(d, rec, touched); err != nil {
			return err
		}
		if err := e.validateStruct(rec); err != nil {
			return err
		}
		if err := e.checkUnique(ctx, tx, d, rec, touched); err != nil {
			return err
		}
		if touchesAny(touched, d.UpsertKey) {
			if err := e.checkUpsertKey(ctx, tx, d, rec); err != nil {
				return err
			}
		}
		if err := e.checkReferences(ctx, tx, d, rec, touched); err != nil {
			return err
		}
		return tx.Update(ctx, d, rec, touched)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes the record with id. It reports false when there was none.
// Dependent rows are left untouched.
func (e *Engine) Delete(ctx context.Context, name string, id int64) (deleted bool, err error) {
	ctx, done := e.observe(ctx, name, OpDelete)
	defer func() { done(err) }()

	d, err := e.registry.Describe(name)
	if err != nil {
		return false, err
	}
	deleted, err = e.store.Delete(ctx, d, id)
	if err != nil {
		return false, err
	}
	if deleted {
		logger.L(ctx).Debug("record deleted", zap.String("entity", name), zap.Int64("id", id))
	}
	return deleted, nil
}

// Upsert creates the record, or, when a record with the same upsert key
// exists, adds the accumulating fields to it. created reports which happened.
func (e *Engine) Upsert(ctx context.Context, name string, fields Fields) (rec entity.Record, created bool, err error) {
	ctx, done := e.observe(ctx, name, OpUpsert)
	defer func() { done(err) }()

	d, err := e.registry.Describe(name)
	if err != nil {
		return nil, false, err
	}
	if !d.HasUpsert() {
		return nil, false, shared.Validationf("%s does not support upsert", d.DisplayName())
	}
	incoming, err := e.build(d, fields)
	if err != nil {
		return nil, false, err
	}

	err = e.store.Transaction(ctx, func(tx entity.Store) error {
		var existing entity.Record
		if key := keyOf(d, incoming); len(key) == len(d.UpsertKey) {
			existing, err = tx.FindBy(ctx, d, key)
			if err != nil {
				return err
			}
		}
		if existing == nil {
			if err := e.checkUnique(ctx, tx, d, incoming, d.Columns()); err != nil {
				return err
			}
			if err := e.checkReferences(ctx, tx, d, incoming, d.Columns()); err != nil {
				return err
			}
			if err := tx.Insert(ctx, d, incoming); err != nil {
				return err
			}
			rec, created = incoming, true
			return nil
		}

		if err := tx.Increment(ctx, d, existing.GetID(), deltasOf(d, incoming)); err != nil {
			return err
		}
		rec, err = tx.Get(ctx, d, existing.GetID())
		if err != nil {
			return err
		}
		return checkAccumulated(d, rec)
	})
	if err != nil {
		return nil, false, err
	}
	return rec, created, nil
}

// build coerces every descriptor field into a fresh record, applies defaults
// and runs the required and struct checks.
func (e *Engine) build(d *entity.Descriptor, fields Fields) (entity.Record, error) {
	rec := d.New()
	bindings := rec.Bindings()
	for i := range d.Fields {
		f := &d.Fields[i]
		v, err := entity.Coerce(f, fields[f.Name])
		if err != nil {
			return nil, err
		}
		if v == nil {
			v = f.Default
		}
		if err := assign(f, bindings[f.Name], v); err != nil {
			return nil, err
		}
	}
	if err := checkRequired(d, rec, d.Columns()); err != nil {
		return nil, err
	}
	if err := e.validateStruct(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// apply coerces the known fields present in fields onto rec and returns the
// touched columns in declaration order. The primary key is never touched.
func apply(d *entity.Descriptor, rec entity.Record, fields Fields) ([]string, error) {
	bindings := rec.Bindings()
	var touched []string
	for i := range d.Fields {
		f := &d.Fields[i]
		raw, ok := fields[f.Name]
		if !ok {
			continue
		}
		v, err := entity.Coerce(f, raw)
		if err != nil {
			return nil, err
		}
		if err := assign(f, bindings[f.Name], v); err != nil {
			return nil, err
		}
		touched = append(touched, f.Name)
	}
	return touched, nil
}

func assign(f *entity.Field, binding, v any) error {
	if err := entity.Assign(binding, v); err != nil {
		return shared.Validation(f.Name, fmt.Sprintf("%s: %v", f.Name, err))
	}
	return nil
}

func checkRequired(d *entity.Descriptor, rec entity.Record, columns []string) error {
	bindings := rec.Bindings()
	for _, col := range columns {
		f, ok := d.Field(col)
		if !ok || !f.Required {
			continue
		}
		if entity.Value(bindings[col]) == nil {
			return shared.Validation(col, col+" is required")
		}
	}
	return nil
}

// checkUnique rejects values of unique columns that another row already holds
func (e *Engine) checkUnique(ctx context.Context, tx entity.Store, d *entity.Descriptor, rec entity.Record, columns []string) error {
	bindings := rec.Bindings()
	for _, col := range columns {
		f, ok := d.Field(col)
		if !ok || !f.Unique {
			continue
		}
		v := entity.Value(bindings[col])
		if v == nil {
			continue
		}
		exists, err := tx.Exists(ctx, d.Table, map[string]any{col: v}, rec.GetID())
		if err != nil {
			return err
		}
		if exists {
			return shared.Conflict(d.DisplayName(), col, v)
		}
	}
	return nil
}

// checkUpsertKey rejects a second row with the same upsert key
func (e *Engine) checkUpsertKey(ctx context.Context, tx entity.Store, d *entity.Descriptor, rec entity.Record) error {
	if !d.HasUpsert() {
		return nil
	}
	key := keyOf(d, rec)
	if len(key) < len(d.UpsertKey) {
		return nil
	}
	exists, err := tx.Exists(ctx, d.Table, key, rec.GetID())
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	values := make([]string, len(d.UpsertKey))
	for i, col := range d.UpsertKey {
		values[i] = fmt.Sprint(key[col])
	}
	return shared.Conflict(d.DisplayName(), strings.Join(d.UpsertKey, ","), strings.Join(values, ","))
}

// checkReferences verifies every non-null reference among columns resolves
// to an existing row of the referenced entity.
func (e *Engine) checkReferences(ctx context.Context, tx entity.Store, d *entity.Descriptor, rec entity.Record, columns []string) error {
	bindings := rec.Bindings()
	for _, col := range columns {
		f, ok := d.Field(col)
		if !ok || !f.IsReference() {
			continue
		}
		v := entity.Value(bindings[col])
		if v == nil {
			continue
		}
		target, err := e.registry.Describe(f.Ref.Entity)
		if err != nil {
			return err
		}
		exists, err := tx.Exists(ctx, target.Table, map[string]any{f.Ref.Column: v}, 0)
		if err != nil {
			return err
		}
		if !exists {
			return shared.InvalidReference(col, target.DisplayName(), v)
		}
	}
	return nil
}

// keyOf returns the non-null upsert key values of rec
func keyOf(d *entity.Descriptor, rec entity.Record) map[string]any {
	bindings := rec.Bindings()
	key := make(map[string]any, len(d.UpsertKey))
	for _, col := range d.UpsertKey {
		if v := entity.Value(bindings[col]); v != nil {
			key[col] = v
		}
	}
	return key
}

func deltasOf(d *entity.Descriptor, rec entity.Record) map[string]decimal.Decimal {
	bindings := rec.Bindings()
	deltas := make(map[string]decimal.Decimal, len(d.Accumulate))
	for _, col := range d.Accumulate {
		if v, ok := entity.Value(bindings[col]).(decimal.Decimal); ok {
			deltas[col] = v
		}
	}
	return deltas
}

// checkAccumulated rejects sums that no longer fit their column
func checkAccumulated(d *entity.Descriptor, rec entity.Record) error {
	bindings := rec.Bindings()
	for _, col := range d.Accumulate {
		f, ok := d.Field(col)
		if !ok {
			continue
		}
		v, ok := entity.Value(bindings[col]).(decimal.Decimal)
		if ok && v.Abs().GreaterThanOrEqual(f.DecimalLimit()) {
			return shared.Validation(col, fmt.Sprintf("%s: total %s is out of range", col, v))
		}
	}
	return nil
}

func touchesAny(touched, columns []string) bool {
	for _, t := range touched {
		for _, c := range columns {
			if t == c {
				return true
			}
		}
	}
	return false
}
