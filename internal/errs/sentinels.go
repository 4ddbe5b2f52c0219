// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist
	// (or, for owner-scoped entities, is not owned by the caller).
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized indicates failed authentication (unknown account or wrong password).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary sign-in lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrTokenExpired indicates a well-formed access token past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates a token with a bad signature, altered claims,
	// wrong algorithm, or malformed encoding. All of those collapse into this
	// one error so callers cannot probe which check failed.
	ErrTokenInvalid = errors.New("token invalid")
)

// ValidationError reports malformed client input, naming the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// Validation constructs a ValidationError for the given field.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// AsValidation extracts a ValidationError from an error chain.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
