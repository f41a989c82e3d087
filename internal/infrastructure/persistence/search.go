package persistence

import (
	"context"
	"strings"

	"gorm.io/gorm/clause"

	"github.com/erp/erpcore/internal/domain/entity"
)

// likeEscape is the LIKE escape character; backslash is avoided because
// mysql treats it as a string literal escape.
const likeEscape = "!"

var likeEscaper = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// ContainsPattern builds a LIKE pattern matching term anywhere, with the
// wildcards inside term escaped.
func ContainsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// Match returns up to limit records of d whose columns contain term,
// case-insensitively, ordered by id.
func (s *GormEntityStore) Match(ctx context.Context, d *entity.Descriptor, columns []string, term string, limit int) ([]entity.Record, error) {
	if len(columns) == 0 || limit <= 0 {
		return []entity.Record{}, nil
	}
	db, cancel := s.stmt(ctx)
	defer cancel()

	pattern := ContainsPattern(term)
	exprs := make([]clause.Expression, len(columns))
	for i, col := range columns {
		exprs[i] = clause.Expr{
			SQL:  "LOWER(?) LIKE LOWER(?) ESCAPE '" + likeEscape + "'",
			Vars: []any{clause.Column{Name: col}, pattern},
		}
	}

	rows, err := db.Table(d.Table).
		Where(clause.Or(exprs...)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: entity.PrimaryKey}}).
		Limit(limit).
		Rows()
	if err != nil {
		return nil, translateError(d.DisplayName(), err)
	}
	return scanRecords(db, d, rows, limit)
}
