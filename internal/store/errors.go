package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an operation references an item id that
// does not exist in the store.
var ErrNotFound = errors.New("item not found")

// ValidationError indicates caller-supplied data was rejected before
// the operation was attempted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid item: " + e.Reason
}

// ConnectionError indicates the startup connection sequence exhausted
// its retry budget without reaching the backend.
type ConnectionError struct {
	Backend  string
	Attempts int
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s after %d attempts: %v", e.Backend, e.Attempts, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// StorageError wraps an unexpected backend failure mid-operation.
// These are surfaced to the caller as-is; the store never retries them.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
