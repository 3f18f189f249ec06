// Package common defines the sentinel errors shared across the client
// directory layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Constraint violations translated from the storage engine.
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// Validation errors for caller-supplied input.
	ErrInvalidInput = errors.New("invalid input")

	// Connection/transport failures of the storage engine.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
