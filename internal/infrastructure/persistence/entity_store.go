package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erp/erpcore/internal/domain/entity"
	"github.com/erp/erpcore/internal/domain/shared"
)

// GormEntityStore implements entity.Store for every registered entity type
type GormEntityStore struct {
	db      *gorm.DB
	timeout time.Duration
}

var _ entity.Store = (*GormEntityStore)(nil)

// NewGormEntityStore creates a store over the database
func NewGormEntityStore(d *Database) *GormEntityStore {
	return &GormEntityStore{db: d.DB, timeout: d.QueryTimeout}
}

// stmt returns a session bound to ctx with the per-statement timeout applied
func (s *GormEntityStore) stmt(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if s.timeout <= 0 {
		return s.db.WithContext(ctx), func() {}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

func idEq(id int64) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: entity.PrimaryKey}, Value: id}
}

// List returns one page of records ordered by id
func (s *GormEntityStore) List(ctx context.Context, d *entity.Descriptor, page shared.Page) ([]entity.Record, error) {
	db, cancel := s.stmt(ctx)
	defer cancel()

	rows, err := db.Table(d.Table).
		Order(clause.OrderByColumn{Column: clause.Column{Name: entity.PrimaryKey}}).
		Offset(page.Offset).
		Limit(page.Limit).
		Rows()
	if err != nil {
		return nil, translateError(d.DisplayName(), err)
	}
	return scanRecords(db, d, rows, page.Limit)
}

// scanRecords reads every row into a fresh record of d and closes rows
func scanRecords(db *gorm.DB, d *entity.Descriptor, rows *sql.Rows, capacity int) ([]entity.Record, error) {
	defer rows.Close()

	records := make([]entity.Record, 0, capacity)
	for rows.Next() {
		rec := d.New()
		if err := db.ScanRows(rows, rec); err != nil {
			return nil, translateError(d.DisplayName(), err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(d.DisplayName(), err)
	}
	return records, nil
}

// Get returns the record with id or a NotFound error
func (s *GormEntityStore) Get(ctx context.Context, d *entity.Descriptor, id int64) (entity.Record, error) {
	db, cancel := s.stmt(ctx)
	defer cancel()

	rec := d.New()
	if err := db.Table(d.Table).Where(idEq(id)).Take(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound(d.DisplayName(), id)
		}
		return nil, translateError(d.DisplayName(), err)
	}
	return rec, nil
}

// FindBy returns the lowest-id record matching every column, or nil
func (s *GormEntityStore) FindBy(ctx context.Context, d *entity.Descriptor, match map[string]any) (entity.Record, error) {
	db, cancel := s.stmt(ctx)
	defer cancel()

	rec := d.New()
	err := db.Table(d.Table).
		Where(match).
		Order(clause.OrderByColumn{Column: clause.Column{Name: entity.PrimaryKey}}).
		Take(rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(d.DisplayName(), err)
	}
	return rec, nil
}

// Exists reports whether a row of table matches every column
func (s *GormEntityStore) Exists(ctx context.Context, table string, match map[string]any, excludeID int64) (bool, error) {
	db, cancel := s.stmt(ctx)
	defer cancel()

	q := db.Table(table).Where(match)
	if excludeID != 0 {
		q = q.Where(clause.Neq{Column: clause.Column{Name: entity.PrimaryKey}, Value: excludeID})
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, translateError(table, err)
	}
	return n > 0, nil
}

// Insert creates the record and sets its id
func (s *GormEntityStore) Insert(ctx context.Context, d *entity.Descriptor, rec entity.Record) error {
	db, cancel := s.stmt(ctx)
	defer cancel()

	return translateError(d.DisplayName(), db.Table(d.Table).Create(rec).Error)
}

// Update writes the named columns of rec
func (s *GormEntityStore) Update(ctx context.Context, d *entity.Descriptor, rec entity.Record, columns []string) error {
	if len(columns) == 0 {
		return nil
	}
	db, cancel := s.stmt(ctx)
	defer cancel()

	err := db.Table(d.Table).Model(rec).Select(columns).Updates(rec).Error
	return translateError(d.DisplayName(), err)
}

// Delete removes the row with id and reports whether one existed
func (s *GormEntityStore) Delete(ctx context.Context, d *entity.Descriptor, id int64) (bool, error) {
	db, cancel := s.stmt(ctx)
	defer cancel()

	res := db.Table(d.Table).Where(idEq(id)).Delete(d.New())
	if res.Error != nil {
		return false, translateError(d.DisplayName(), res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Increment adds deltas to numeric columns with a single UPDATE, so
// concurrent increments of the same row never lose an addition.
func (s *GormEntityStore) Increment(ctx context.Context, d *entity.Descriptor, id int64, deltas map[string]decimal.Decimal) error {
	if len(deltas) == 0 {
		return nil
	}
	db, cancel := s.stmt(ctx)
	defer cancel()

	updates := make(map[string]any, len(deltas))
	for col, delta := range deltas {
		updates[col] = gorm.Expr("COALESCE(?, 0) + ?", clause.Column{Name: col}, delta)
	}
	res := db.Table(d.Table).Where(idEq(id)).UpdateColumns(updates)
	if res.Error != nil {
		return translateError(d.DisplayName(), res.Error)
	}
	if res.RowsAffected == 0 {
		return shared.NotFound(d.DisplayName(), id)
	}
	return nil
}

// Transaction runs fn against a transactional store. Nested calls use
// savepoints, so a failing inner call rolls back only its own work.
func (s *GormEntityStore) Transaction(ctx context.Context, fn func(tx entity.Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormEntityStore{db: tx, timeout: s.timeout})
	})
	return translateError("transaction", err)
}
