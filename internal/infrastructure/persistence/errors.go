package persistence

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the postgres SQLSTATE for unique constraint violations
const pgUniqueViolation = "23505"

// isUniqueViolation reports whether the error is a unique constraint
// violation. The sqlite branch covers the in-memory test databases.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
