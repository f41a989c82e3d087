package entity

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/erp/erpcore/internal/domain/shared"
)

// Store persists records described by a Descriptor.
// Implementations translate driver failures into shared.DomainError values:
// duplicate keys become Conflict, foreign-key violations InvalidReference and
// connection or transaction failures StoreUnavailable.
type Store interface {
	// List returns records ordered by id ascending.
	List(ctx context.Context, d *Descriptor, page shared.Page) ([]Record, error)
	// Get returns the record or a NotFound error.
	Get(ctx context.Context, d *Descriptor, id int64) (Record, error)
	// FindBy returns the first record matching every column, or nil.
	FindBy(ctx context.Context, d *Descriptor, match map[string]any) (Record, error)
	// Exists reports whether table holds a row matching every column,
	// ignoring the row with id excludeID (zero excludes nothing).
	Exists(ctx context.Context, table string, match map[string]any, excludeID int64) (bool, error)

	Insert(ctx context.Context, d *Descriptor, rec Record) error
	// Update writes only the named columns of rec.
	Update(ctx context.Context, d *Descriptor, rec Record, columns []string) error
	// Delete reports false when no row had the id.
	Delete(ctx context.Context, d *Descriptor, id int64) (bool, error)
	// Increment adds each delta to its column in one statement.
	Increment(ctx context.Context, d *Descriptor, id int64, deltas map[string]decimal.Decimal) error

	// Transaction runs fn in a transaction; calling it on a transactional
	// store nests a savepoint.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
