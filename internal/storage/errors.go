package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that no record exists for the requested identifier.
//
// A miss is not a failure in sync paths: deleting or re-reading an entity
// that is already absent on the target side means "nothing to do".
var ErrNotFound = errors.New("record not found")

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError wraps a persistence failure with enough context to identify
// which backend, family and operation produced it.
type StoreError struct {
	Backend Backend
	Kind    Kind
	Op      Op
	Err     error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Backend, e.Kind, e.Op, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError builds a StoreError for the given backend, family and op.
func NewStoreError(b Backend, k Kind, op Op, err error) *StoreError {
	return &StoreError{Backend: b, Kind: k, Op: op, Err: err}
}
