package sentinel

import (
	"errors"
	"fmt"
)

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store (or is tombstoned out of view)
// - ErrConflict: unique constraint violated (duplicate email, replayed insert)
// - ErrUnavailable: backing store unreachable or transaction aborted
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)

// Unavailable marks an infrastructure failure. Stores wrap driver, query and
// scan errors with it so services can match ErrUnavailable without knowing
// the backend.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
