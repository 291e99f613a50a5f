package internalerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")

	// ErrRetryable marks collaborator failures worth retrying (rate limit,
	// server error, transport failure).
	ErrRetryable = errors.New("retryable")

	// ErrStaleSelection is returned when a selection changed while a lookup
	// for it was in flight.
	ErrStaleSelection = errors.New("stale selection")
)

// StatusError is an unexpected HTTP status from a remote collaborator.
// Rate limits and server errors unwrap to ErrRetryable.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Service, e.StatusCode, e.Body)
}

// Retryable reports whether the status is a rate limit or server error.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

func (e *StatusError) Unwrap() error {
	if e.Retryable() {
		return ErrRetryable
	}
	return nil
}
