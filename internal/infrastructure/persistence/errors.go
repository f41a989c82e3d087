package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/erp/erpcore/internal/domain/shared"
)

// translateError maps a gorm or driver error to the domain taxonomy.
// Domain errors pass through unchanged; record-not-found is left to callers.
func translateError(label string, err error) error {
	var de *shared.DomainError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &de):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewDomainError(shared.CodeConflict,
			fmt.Sprintf("%s violates a unique constraint", label)).Wrap(err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return shared.NewDomainError(shared.CodeInvalidReference,
			fmt.Sprintf("%s references a row that does not exist", label)).Wrap(err)
	case isDataException(err):
		return shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("%s has a value the store cannot hold", label)).Wrap(err)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return shared.StoreUnavailable(err)
	}
}

// isConstraintViolation reports errors that translateError surfaces as
// CONFLICT, INVALID_REFERENCE or VALIDATION_ERROR.
func isConstraintViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) ||
		isDataException(err)
}

// MySQL server errors for values that do not fit their column
var mysqlDataErrors = map[uint16]bool{
	1264: true, // out of range value
	1292: true, // truncated incorrect value
	1366: true, // incorrect string value
	1406: true, // data too long
}

// isDataException reports driver errors caused by a value the column
// rejects: numeric overflow, string too long, bad encoding. Postgres puts
// these in SQLSTATE class 22.
func isDataException(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return len(pgErr.Code) == 5 && pgErr.Code[:2] == "22"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return mysqlDataErrors[myErr.Number]
	}
	return false
}
