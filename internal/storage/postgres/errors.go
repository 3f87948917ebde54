package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// code extracts the SQLSTATE and constraint from either driver's error type.
// Repositories run over pgx; the migration and seed tools run over lib/pq.
func code(err error) (string, string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, true
	}
	return "", "", false
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	c, _, ok := code(err)
	return ok && c == codeUniqueViolation
}

// ForeignKeyViolation returns the violated constraint name when err is a
// foreign key violation.
func ForeignKeyViolation(err error) (string, bool) {
	c, constraint, ok := code(err)
	if ok && c == codeForeignKeyViolation {
		return constraint, true
	}
	return "", false
}
