package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("job", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("email", "email is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("Email already registered"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Forbidden wraps ErrForbidden",
			err:       Forbidden("Please verify your email first"),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("Authentication required"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("job", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "wrapped AppError still matches its sentinel",
			err:       fmt.Errorf("saving job: %w", NotFound("job", "abc123")),
			target:    ErrNotFound,
			wantMatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is() = %v, want %v", got, tt.wantMatch)
			}
		})
	}
}

func TestErrorsAs(t *testing.T) {
	err := fmt.Errorf("context: %w", ValidationFailed("phone", "Invalid phone number"))

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("errors.As() should find the *AppError in the chain")
	}
	if appErr.Field != "phone" {
		t.Errorf("Field = %q, want %q", appErr.Field, "phone")
	}
	if appErr.Message != "Invalid phone number" {
		t.Errorf("Message = %q, want %q", appErr.Message, "Invalid phone number")
	}
}

func TestErrorMessage(t *testing.T) {
	err := NotFound("job", "xyz")
	if got, want := err.Error(), "job not found with id xyz"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
