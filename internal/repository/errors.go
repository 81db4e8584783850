package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned by data-access paths that detect a missing row
// without going through a pgx scan.
var ErrNotFound = errors.New("record not found")

// isNoRows reports whether err is the pgx empty-result sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsNotFound reports whether a repository error means the row does not exist.
// Services use it to map storage misses onto not-found responses.
func IsNotFound(err error) bool {
	return isNoRows(err) || errors.Is(err, ErrNotFound)
}
