package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)

// RemoteAPIError is returned for any Bookerville call that fails after
// retries are exhausted, or immediately for non-retryable responses.
// Callers always get either validated data or one of these.
type RemoteAPIError struct {
	Endpoint string
	Status   int // last HTTP status, 0 if the call never completed
	Attempts int
	Err      error
}

func (e *RemoteAPIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("bookerville %s: status %d after %d attempt(s): %v", e.Endpoint, e.Status, e.Attempts, e.Err)
	}
	return fmt.Sprintf("bookerville %s: %d attempt(s): %v", e.Endpoint, e.Attempts, e.Err)
}

func (e *RemoteAPIError) Unwrap() error { return e.Err }

// Retryable reports whether the failure was transient. Parse errors and
// 4xx responses are final; timeouts, network errors, 429 and 5xx are not.
func (e *RemoteAPIError) Retryable() bool {
	if e.Status == 429 {
		return true
	}
	if e.Status >= 400 && e.Status < 500 {
		return false
	}
	return true
}

// ValidationError carries field-level messages for malformed caller input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
