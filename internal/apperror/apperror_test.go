// Run with: go test ./internal/apperror/ -v
package apperror

import (
	"errors"
	"fmt"
	"testing"
)

// TABLE-DRIVEN TESTS:
// Each case names one constructor and the sentinel it must (or must not) match.
func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("project", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("title", "Title is missing"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("project", "title", "T1"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Forbidden wraps ErrForbidden",
			err:       Forbidden("not yours"),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "Unauthenticated wraps ErrAuth",
			err:       Unauthenticated(InvalidCredentials),
			target:    ErrAuth,
			wantMatch: true,
		},
		{
			name:      "wrapped with fmt.Errorf still matches",
			err:       fmt.Errorf("service/project: %w", NotFound("project", "x")),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("project", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Forbidden does NOT match ErrAuth",
			err:       Forbidden("not yours"),
			target:    ErrAuth,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("comment", "abc123"),
			wantMessage: "comment not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("content", "Content is missing"),
			wantMessage: "Content is missing",
		},
		{
			name:        "Conflict message names the field and value",
			err:         Conflict("project", "title", "T1"),
			wantMessage: `project with title "T1" already exists`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := Unauthenticated("Token not Valid")
	if unwrapped := err.Unwrap(); unwrapped != ErrAuth {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrAuth)
	}
}

func TestFieldIsRecorded(t *testing.T) {
	if err := ValidationFailed("email", "Email is Required"); err.Field != "email" {
		t.Errorf("Field = %q, want %q", err.Field, "email")
	}
	if err := Conflict("user", "email", "a@b.c"); err.Field != "email" {
		t.Errorf("Field = %q, want %q", err.Field, "email")
	}
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("service/comment: %w", Forbidden("Unauthorized to delete this comment"))

	appErr, ok := As(wrapped)
	if !ok {
		t.Fatal("As() should find the AppError through fmt.Errorf wrapping")
	}
	if appErr.Message != "Unauthorized to delete this comment" {
		t.Errorf("Message = %q", appErr.Message)
	}

	if _, ok := As(errors.New("disk full")); ok {
		t.Error("As() should not match a plain error")
	}
	if _, ok := As(nil); ok {
		t.Error("As(nil) should not match")
	}
}
