package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrUnauthenticated, "unauthenticated"},
		{ErrForbidden, "forbidden"},
		{fmt.Errorf("create account: %w", ErrDuplicateEmail), "duplicate_email"},
		{fmt.Errorf("account 7: %w", ErrNotFound), "not_found"},
		{ErrMisconfigured, "misconfigured"},
		{fmt.Errorf("expires: %w", ErrValidation), "validation_failed"},
		{ErrTooManyAttempts, "too_many_attempts"},
		{errors.New("disk full"), "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}
}
