package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		wantKind Kind
		wantMsg  string
	}{
		{"NotFound", NotFound("vehicle not found"), ErrNotFound, "vehicle not found"},
		{"NotFoundf", NotFoundf("inspection %s not found", "abc"), ErrNotFound, "inspection abc not found"},
		{"Validation", Validation("plate is required"), ErrValidation, "plate is required"},
		{"Validationf", Validationf("year %d out of range", 1890), ErrValidation, "year 1890 out of range"},
		{"Conflict", Conflict("inspection already submitted"), ErrConflict, "inspection already submitted"},
		{"Conflictf", Conflictf("plate %s already registered", "A-123"), ErrConflict, "plate A-123 already registered"},
		{"InvalidInput", InvalidInput("bad id"), ErrInvalidInput, "bad id"},
		{"InvalidInputf", InvalidInputf("bad %s", "folio"), ErrInvalidInput, "bad folio"},
		{"Internalf", Internalf("unexpected %d", 1), ErrInternal, "unexpected 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.wantKind {
				t.Errorf("expected kind %v, got %v", tt.wantKind, tt.err.Kind)
			}
			if tt.err.Message != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, tt.err.Message)
			}
			if tt.err.Err != nil {
				t.Errorf("expected no wrapped error, got %v", tt.err.Err)
			}
		})
	}
}

func TestInternal_WrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal(cause)

	if err.Kind != ErrInternal {
		t.Errorf("expected ErrInternal, got %v", err.Kind)
	}
	if err.Error() != "internal error: disk full" {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestUpstream(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream(cause)
	if err.Kind != ErrUpstream {
		t.Errorf("expected ErrUpstream, got %v", err.Kind)
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("constraint failed")
	err := Wrap(cause, ErrConflict, "duplicate plate")
	if err.Error() != "duplicate plate: constraint failed" {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if errors.Unwrap(err) != cause {
		t.Error("expected Unwrap to return the cause")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"direct", NotFound("x"), ErrNotFound},
		{"wrapped with fmt", fmt.Errorf("loading: %w", Conflict("x")), ErrConflict},
		{"plain error", errors.New("boom"), ErrInternal},
		{"nil", nil, ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("wrap: %w", NotFound("x"))) {
		t.Error("expected wrapped NotFound to match")
	}
	if IsNotFound(Validation("x")) {
		t.Error("expected Validation not to match")
	}
	if IsNotFound(nil) {
		t.Error("expected nil not to match")
	}
}

func TestKind_String(t *testing.T) {
	tests := map[Kind]string{
		ErrInternal:     "internal",
		ErrNotFound:     "not_found",
		ErrValidation:   "validation",
		ErrConflict:     "conflict",
		ErrInvalidInput: "invalid_input",
		ErrUpstream:     "upstream",
	}
	for k, want := range tests {
		if k.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, k.String(), want)
		}
	}
}
