package dbx

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/dmitrijs2005/clientdir/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// StorageError couples a domain sentinel with the raw driver error, so
// callers can match the kind with errors.Is while the original engine
// detail stays reachable via errors.Unwrap for diagnostics.
type StorageError struct {
	Sentinel error
	Cause    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%v: %v", e.Sentinel, e.Cause)
}

func (e *StorageError) Is(target error) bool { return errors.Is(e.Sentinel, target) }
func (e *StorageError) Unwrap() error        { return e.Cause }

// MapError translates a raw driver error into the domain error kinds.
// Unique-constraint and foreign-key violations are detected via the
// PostgreSQL SQLSTATE carried by pgconn.PgError; connection-class failures
// map to ErrStorageUnavailable. Errors that are already mapped, or that
// match no known kind, pass through unchanged.
//
// SQLSTATE reference: https://www.postgresql.org/docs/current/errcodes-appendix.html
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var se *StorageError
	if errors.As(err, &se) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505": // unique_violation
			return &StorageError{Sentinel: common.ErrDuplicateKey, Cause: err}
		case pgErr.Code == "23503": // foreign_key_violation
			return &StorageError{Sentinel: common.ErrForeignKeyViolation, Cause: err}
		case strings.HasPrefix(pgErr.Code, "08"): // connection exceptions
			return &StorageError{Sentinel: common.ErrStorageUnavailable, Cause: err}
		}
		return err
	}

	if errors.Is(err, driver.ErrBadConn) {
		return &StorageError{Sentinel: common.ErrStorageUnavailable, Cause: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &StorageError{Sentinel: common.ErrStorageUnavailable, Cause: err}
	}

	return err
}
