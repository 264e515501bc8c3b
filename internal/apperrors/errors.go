// Package apperrors holds the error taxonomy shared by every layer of the service.
//
// Lower layers wrap these with fmt.Errorf("...: %w", err); the HTTP layer is the
// only place that turns them into status codes.
package apperrors

import "errors"

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient permissions")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrNotFound        = errors.New("not found")
	ErrMisconfigured   = errors.New("object storage is not configured")
	ErrValidation      = errors.New("validation failed")
	ErrTooManyAttempts = errors.New("too many login attempts")
)

// Code returns the stable machine-readable code for err, or "internal_error"
// when err is not part of the taxonomy.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrMisconfigured):
		return "misconfigured"
	case errors.Is(err, ErrValidation):
		return "validation_failed"
	case errors.Is(err, ErrTooManyAttempts):
		return "too_many_attempts"
	default:
		return "internal_error"
	}
}
