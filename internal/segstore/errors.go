package segstore

import "errors"

var (
	// ErrNotFound indicates the requested interview or segment does not exist.
	ErrNotFound = errors.New("segstore: not found")
	// ErrConstraint indicates a write was rejected at the storage boundary
	// because it would violate a segment invariant. Nothing is applied.
	ErrConstraint = errors.New("segstore: constraint violation")
)
