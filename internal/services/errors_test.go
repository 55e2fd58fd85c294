package services_test

import (
	"strings"
	"testing"

	"github.com/abrezinsky/revista/internal/services"
)

func TestServiceError_Error(t *testing.T) {
	err := &services.ServiceError{Message: "test error message"}

	result := err.Error()

	if result != "test error message" {
		t.Errorf("expected 'test error message', got %q", result)
	}
}

func TestInvalidTableError_Error(t *testing.T) {
	err := &services.InvalidTableError{Table: "holders; drop"}

	result := err.Error()

	if !strings.Contains(result, "holders; drop") {
		t.Errorf("expected error to contain 'holders; drop', got %q", result)
	}
	if !strings.Contains(result, "invalid table") {
		t.Errorf("expected error to mention 'invalid table', got %q", result)
	}
}

func TestPredefinedErrors(t *testing.T) {
	// Test that predefined errors return expected messages
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"ErrNoTablesSpecified", services.ErrNoTablesSpecified, "tables"},
		{"ErrInvalidSeedType", services.ErrInvalidSeedType, "seed"},
		{"ErrRegistryNotSet", services.ErrRegistryNotSet, "registry"},
		{"ErrBaseURLNotSet", services.ErrBaseURLNotSet, "base url"},
		{"ErrEmptyCatalog", services.ErrEmptyCatalog, "catalog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			if !strings.Contains(strings.ToLower(msg), tt.contains) {
				t.Errorf("expected error message to contain %q, got %q", tt.contains, msg)
			}
		})
	}
}
