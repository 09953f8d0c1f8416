package apperr

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error classes (SQLSTATE prefixes / codes).
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgConnectionClass     = "08"
)

// FromPG translates a storage-layer error into the taxonomy. notFoundMsg is
// used when the underlying error is pgx.ErrNoRows.
func FromPG(err error, notFoundMsg string) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound(notFoundMsg)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation:
			return Validation("unique constraint violation").WithContext(Context{
				Field:      pgErr.ConstraintName,
				Constraint: "unique",
				Suggestion: "use a different value for this field",
			})
		case pgErr.Code == pgForeignKeyViolation:
			return Validation("foreign key constraint violation").WithContext(Context{
				Field:      pgErr.ConstraintName,
				Constraint: "foreign_key",
				Suggestion: "ensure the referenced record exists",
			})
		case pgErr.Code == pgCheckViolation:
			return Validation("check constraint violation").WithContext(Context{
				Field:      pgErr.ConstraintName,
				Constraint: "check",
			})
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == pgConnectionClass:
			return Unavailable("database connection failed")
		}
		return Database("database operation failed")
	}
	return Database("database operation failed")
}
