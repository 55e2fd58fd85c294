package schema

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abrezinsky/revista/internal/logger"
	"github.com/abrezinsky/revista/pkg/scoring"
)

const customSchema = `name: custom
version: 2
essential:
  - key: placa_delantera
    label: Placa delantera
    kind: boolean
  - key: parabrisas
    label: Parabrisas
    kind: graded_select
banding:
  select_from: 12
  prime_from: 19
`

func TestDefault_IsValid(t *testing.T) {
	f := Default()
	if f.Banding != scoring.DefaultBanding {
		t.Errorf("expected default banding %+v, got %+v", scoring.DefaultBanding, f.Banding)
	}
	if len(f.Essential) != 10 {
		t.Errorf("expected 10 essential checks, got %d", len(f.Essential))
	}
	for _, c := range f.Essential {
		if !c.Kind.Valid() {
			t.Errorf("check %s has invalid kind %q", c.Key, c.Kind)
		}
	}
}

func TestParse_Custom(t *testing.T) {
	f, err := Parse([]byte(customSchema))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if f.Name != "custom" || f.Version != 2 {
		t.Errorf("unexpected header: %s v%d", f.Name, f.Version)
	}
	if f.Banding.SelectFrom != 12 || f.Banding.PrimeFrom != 19 {
		t.Errorf("unexpected banding: %+v", f.Banding)
	}
	if f.Essential[1].Kind != scoring.KindGradedSelect {
		t.Errorf("expected graded_select, got %q", f.Essential[1].Kind)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"invalid yaml", "essential: [", "schema.Parse"},
		{"no checks", "name: x\nbanding: {select_from: 9, prime_from: 18}\n", "no essential checks"},
		{"bad kind", "essential:\n  - key: a\n    kind: checkbox\nbanding: {select_from: 9, prime_from: 18}\n", "unknown kind"},
		{"bad banding", "essential:\n  - key: a\n    kind: boolean\nbanding: {select_from: 9, prime_from: 9}\n", "prime_from"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	f, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if f.Name != "revista-vehicular" {
		t.Errorf("expected default schema, got %q", f.Name)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFile_MarshalRoundTrip(t *testing.T) {
	data, err := Default().Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if len(f.Essential) != len(Default().Essential) {
		t.Error("round trip lost essential checks")
	}
}

func TestStore_ReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	if err := os.WriteFile(path, []byte(customSchema), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := NewStore(logger.New(), path)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	var loaded int
	store.OnLoad(func(*File) { loaded++ })

	if err := os.WriteFile(path, []byte("essential: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := store.Reload(); err == nil {
		t.Error("expected reload error")
	}
	if store.Current().Name != "custom" {
		t.Error("expected previous schema to stay active")
	}
	if loaded != 0 {
		t.Error("OnLoad should not run on failed reload")
	}

	updated := strings.Replace(customSchema, "version: 2", "version: 3", 1)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := store.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if store.Current().Version != 3 || loaded != 1 {
		t.Errorf("expected version 3 and one callback, got v%d / %d", store.Current().Version, loaded)
	}
}

func TestStore_WatchPicksUpWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	if err := os.WriteFile(path, []byte(customSchema), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := NewStore(logger.New(), path)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	store.debounce = 10 * time.Millisecond

	reloaded := make(chan *File, 1)
	store.OnLoad(func(f *File) {
		select {
		case reloaded <- f:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- store.Watch(ctx) }()

	// Give the watcher time to register before writing
	time.Sleep(50 * time.Millisecond)
	updated := strings.Replace(customSchema, "select_from: 12", "select_from: 10", 1)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case f := <-reloaded:
		if f.Banding.SelectFrom != 10 {
			t.Errorf("expected select_from 10, got %d", f.Banding.SelectFrom)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for schema reload")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned error: %v", err)
	}
}

func TestStore_StaticWatchBlocksUntilCancel(t *testing.T) {
	store := NewStaticStore(logger.New(), Default())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.Watch(ctx); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := store.Reload(); err != nil {
		t.Errorf("static reload should be a no-op, got %v", err)
	}
}
