package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/abrezinsky/revista/internal/auth"
	"github.com/abrezinsky/revista/internal/logger"
	"github.com/abrezinsky/revista/internal/schema"
	"github.com/abrezinsky/revista/pkg/registry"
)

func TestNew_InitializesApp(t *testing.T) {
	app := createTestApp(t, Config{DBPath: ":memory:"})
	defer app.Close()

	if app.handlers == nil {
		t.Error("expected handlers to be initialized")
	}
	if app.repo == nil {
		t.Error("expected repo to be initialized")
	}
	if app.cancel == nil {
		t.Error("expected cancel to be set")
	}
	if app.schemas == nil || app.schemas.Current().Name != schema.Default().Name {
		t.Error("expected the embedded default schema when no path is given")
	}
}

func TestNew_Failures(t *testing.T) {
	dir := t.TempDir()
	brokenSchema := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(brokenSchema, []byte("essential: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		cfg       Config
		templates fstest.MapFS
	}{
		{"bad db path", Config{DBPath: "/nonexistent/path/db.sqlite"}, createTestTemplatesFS()},
		{"missing schema file", Config{DBPath: ":memory:", SchemaPath: filepath.Join(dir, "missing.yaml")}, createTestTemplatesFS()},
		{"invalid schema file", Config{DBPath: ":memory:", SchemaPath: brokenSchema}, createTestTemplatesFS()},
		{"missing templates", Config{DBPath: ":memory:"}, fstest.MapFS{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(logger.New(), tt.cfg, registry.NewMockClient(), tt.templates, fstest.MapFS{}, auth.New("test-password"))
			if err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestApp_Router_ServesRequests(t *testing.T) {
	app := createTestApp(t, Config{DBPath: ":memory:"})
	defer app.Close()
	server := httptest.NewServer(app.Router())
	defer server.Close()

	resp, err := http.Get(server.URL + "/admin/login")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for /admin/login, got %d", resp.StatusCode)
	}
}

func TestApp_ResetInvalidatesCatalogCache(t *testing.T) {
	adminAuth := auth.New("test-password")
	app, err := New(logger.New(), Config{DBPath: ":memory:"}, registry.NewMockClient(), createTestTemplatesFS(), fstest.MapFS{}, adminAuth)
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	defer app.Close()
	router := app.Router()
	token, _ := adminAuth.Login("test-password")

	call := func(method, path string, body interface{}) int {
		var buf bytes.Buffer
		if body != nil {
			json.NewEncoder(&buf).Encode(body)
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := call(http.MethodPost, "/api/admin/seed-mock-data", map[string]string{"seed_type": "catalog"}); code != http.StatusOK {
		t.Fatalf("seeding catalog returned %d", code)
	}
	if code := call(http.MethodGet, "/api/admin/catalog", nil); code != http.StatusOK {
		t.Fatalf("expected catalog after seeding, got %d", code)
	}
	if code := call(http.MethodPost, "/api/admin/reset-database", map[string][]string{"tables": {"catalog_options"}}); code != http.StatusOK {
		t.Fatalf("reset returned %d", code)
	}
	if code := call(http.MethodGet, "/api/admin/catalog", nil); code != http.StatusConflict {
		t.Errorf("expected cached catalog to be dropped after reset, got %d", code)
	}
}

func TestApp_SchemaHotReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	if err := os.WriteFile(path, schema.DefaultYAML(), 0o644); err != nil {
		t.Fatal(err)
	}

	app := createTestApp(t, Config{DBPath: ":memory:", SchemaPath: path})
	defer app.Close()

	if app.schemas.Current().Version != 1 {
		t.Fatalf("expected version 1, got %d", app.schemas.Current().Version)
	}

	updated := strings.Replace(string(schema.DefaultYAML()), "version: 1", "version: 2", 1)
	deadline := time.Now().Add(5 * time.Second)
	for app.schemas.Current().Version != 2 {
		if time.Now().After(deadline) {
			t.Fatal("schema change was not picked up by the watcher")
		}
		// Rewrite until the watcher goroutine has registered the directory.
		if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func TestApp_Close_Idempotent(t *testing.T) {
	app := createTestApp(t, Config{DBPath: ":memory:"})

	app.Close()
	app.Close()
}

func TestSetDefaultBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		want     string
	}{
		{"sets when empty", "", "http://192.168.1.100:8080"},
		{"replaces localhost", "http://localhost:8080", "http://192.168.1.100:8080"},
		{"keeps configured URL", "https://revista.example.gob.mx", "https://revista.example.gob.mx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := createTestApp(t, Config{DBPath: ":memory:"})
			defer app.Close()
			ctx := context.Background()

			if tt.existing != "" {
				if err := app.repo.SetSetting(ctx, "base_url", tt.existing); err != nil {
					t.Fatalf("failed to seed setting: %v", err)
				}
			}

			app.setDefaultBaseURL("http://192.168.1.100:8080")

			got, err := app.repo.GetSetting(ctx, "base_url")
			if err != nil {
				t.Fatalf("failed to get setting: %v", err)
			}
			if got != tt.want {
				t.Errorf("base_url = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetDefaultBaseURL_HandlesRepoError(t *testing.T) {
	app := createTestApp(t, Config{DBPath: ":memory:"})
	app.Close()

	// Database is closed; should only log a warning
	app.setDefaultBaseURL("http://192.168.1.100:8080")
}

func TestIsPrivate172(t *testing.T) {
	tests := []struct {
		ip       string
		expected bool
	}{
		{"172.16.0.1", true},
		{"172.31.255.255", true},
		{"172.15.0.1", false},
		{"172.32.0.1", false},
		{"192.168.1.1", false},
		{"10.0.0.1", false},
		{"::1", false},
		{"fe80::1", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := isPrivate172(net.ParseIP(tt.ip)); got != tt.expected {
				t.Errorf("isPrivate172(%s) = %v, want %v", tt.ip, got, tt.expected)
			}
		})
	}

	if isPrivate172(nil) {
		t.Error("isPrivate172(nil) should be false")
	}
}

// mockInterface implements networkInterface for testing
type mockInterface struct {
	flags net.Flags
	addrs []net.Addr
	err   error
}

func (m mockInterface) Flags() net.Flags {
	return m.flags
}

func (m mockInterface) Addrs() ([]net.Addr, error) {
	return m.addrs, m.err
}

// mockNetworkProvider implements networkProvider for testing
type mockNetworkProvider struct {
	interfaces []networkInterface
	err        error
}

func (m mockNetworkProvider) Interfaces() ([]networkInterface, error) {
	return m.interfaces, m.err
}

func ipNet(ip string, bits int) *net.IPNet {
	return &net.IPNet{IP: net.ParseIP(ip), Mask: net.CIDRMask(bits, 32)}
}

func TestGetPreferredIP(t *testing.T) {
	tests := []struct {
		name     string
		provider mockNetworkProvider
		want     string
	}{
		{
			name:     "provider error",
			provider: mockNetworkProvider{err: net.ErrClosed},
			want:     "localhost",
		},
		{
			name: "addrs error",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, err: net.ErrClosed},
			}},
			want: "localhost",
		},
		{
			name: "interface down",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: 0, addrs: []net.Addr{ipNet("192.168.1.10", 24)}},
			}},
			want: "localhost",
		},
		{
			name: "loopback interface",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp | net.FlagLoopback, addrs: []net.Addr{ipNet("127.0.0.1", 8)}},
			}},
			want: "localhost",
		},
		{
			name: "ip addr type",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{&net.IPAddr{IP: net.ParseIP("192.168.1.100")}}},
			}},
			want: "192.168.1.100",
		},
		{
			name: "public fallback",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("8.8.8.8", 24)}},
			}},
			want: "8.8.8.8",
		},
		{
			name: "private preferred over public",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("8.8.8.8", 24)}},
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("172.20.0.5", 16)}},
			}},
			want: "172.20.0.5",
		},
		{
			name: "skips loopback ip and ipv6",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{
					ipNet("127.0.0.1", 8),
					&net.IPNet{IP: net.ParseIP("fe80::1"), Mask: net.CIDRMask(64, 128)},
					ipNet("10.1.2.3", 8),
				}},
			}},
			want: "10.1.2.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getPreferredIP(tt.provider); got != tt.want {
				t.Errorf("getPreferredIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetPreferredIP_RealProvider(t *testing.T) {
	ip := getPreferredIP(realNetworkProvider{})
	if ip == "" {
		t.Fatal("IP should never be empty")
	}
	if ip != "localhost" {
		parsed := net.ParseIP(ip)
		if parsed == nil || parsed.To4() == nil {
			t.Errorf("expected IPv4 address or localhost, got: %s", ip)
		}
	}
}

func TestApp_Run_Integration(t *testing.T) {
	app := createTestApp(t, Config{DBPath: ":memory:"})
	defer app.Close()

	done := make(chan error, 1)
	go func() {
		done <- app.Run(":0")
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Logf("Run returned: %v", err)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

// Helper functions

func createTestTemplatesFS() fstest.MapFS {
	page := func(name string) *fstest.MapFile {
		return &fstest.MapFile{Data: []byte(`{{define "content"}}` + name + `{{end}}`)}
	}
	return fstest.MapFS{
		"index.html":             &fstest.MapFile{Data: []byte(`<html><body>Index</body></html>`)},
		"verify.html":            &fstest.MapFile{Data: []byte(`<html><body>{{.Folio}}</body></html>`)},
		"admin/login.html":       &fstest.MapFile{Data: []byte(`<html><body>Login</body></html>`)},
		"admin/layout.html":      &fstest.MapFile{Data: []byte(`{{define "admin"}}<html><body>{{template "content" .}}</body></html>{{end}}`)},
		"admin/dashboard.html":   page("Dashboard"),
		"admin/holders.html":     page("Holders"),
		"admin/vehicles.html":    page("Vehicles"),
		"admin/inspections.html": page("Inspections"),
		"admin/inspection.html":  page("Inspection"),
		"admin/catalog.html":     page("Catalog"),
		"admin/settings.html":    page("Settings"),
	}
}

func createTestApp(t *testing.T, cfg Config) *App {
	t.Helper()
	app, err := New(logger.New(), cfg, registry.NewMockClient(), createTestTemplatesFS(), fstest.MapFS{}, auth.New("test-password"))
	if err != nil {
		t.Fatalf("failed to create test app: %v", err)
	}
	return app
}
