// Package postgres implements the repository interfaces over pgx.
//
// Conventions carried throughout: (nil, nil) for not-found on single-row
// getters, make([]T, 0) for lists, fmt.Errorf wrapping with the failed
// operation, and a transaction around every multi-row mutation.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation reports whether err is a Postgres unique-index
// violation (SQLSTATE 23505). The unique indexes on (user_id, thread_id)
// are what actually close the check-then-insert race between concurrent
// requests; stores translate the violation into a typed Conflict.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
