// Package service implements the booking core: seat hold management,
// the booking transaction, show scheduling and the lifecycle advance.
// This file defines the error taxonomy every operation reports through.
// Callers match with errors.Is; handlers translate the kinds to HTTP
// statuses.  Every error leaves the store exactly as it was: validation
// failures reject before any mutation and transactional failures roll
// back.
package service

import (
	"errors"
	"fmt"
)

// ErrValidation marks malformed or missing input, rejected before any
// mutation.
var ErrValidation = errors.New("validation failed")

// ErrNotFound marks an unresolved show, seat or booking.
var ErrNotFound = errors.New("not found")

// ErrConflict marks a request that lost to current state: a seat that is
// not AVAILABLE for holding, a hold that expired or belongs to someone
// else, an overlapping show schedule, or a duplicate issued booking.
var ErrConflict = errors.New("conflict")

// ErrInvalidSeatType marks a seat type with no price during inventory
// generation; the entire generation aborts.
var ErrInvalidSeatType = errors.New("invalid seat type")

// ErrInvalidPrice marks a non-positive price during inventory generation.
var ErrInvalidPrice = errors.New("invalid price")

// failf wraps a taxonomy sentinel with a formatted message so callers can
// both match the kind and read the detail.
func failf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
