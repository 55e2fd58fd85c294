package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/abrezinsky/revista/internal/auth"
	"github.com/abrezinsky/revista/internal/handlers"
	"github.com/abrezinsky/revista/internal/logger"
	"github.com/abrezinsky/revista/internal/repository"
	"github.com/abrezinsky/revista/internal/schema"
	"github.com/abrezinsky/revista/internal/services"
	"github.com/abrezinsky/revista/internal/testutil"
	"github.com/abrezinsky/revista/internal/websocket"
	"github.com/abrezinsky/revista/pkg/registry"
	"github.com/abrezinsky/revista/pkg/scoring"
)

func testTemplatesFS() fstest.MapFS {
	page := func(name string) *fstest.MapFile {
		return &fstest.MapFile{Data: []byte(`{{define "content"}}<div>` + name + ` Content</div>{{end}}`)}
	}
	return fstest.MapFS{
		"index.html":       &fstest.MapFile{Data: []byte(`<html><body><h1>Revista</h1></body></html>`)},
		"verify.html":      &fstest.MapFile{Data: []byte(`{{if .NotFound}}Folio {{.Folio}} no encontrado{{else}}{{.Verification.Folio}} {{.Verification.ClassificationLabel}} {{percent .Verification.Score .Verification.MaxScore}}{{end}}`)},
		"admin/login.html": &fstest.MapFile{Data: []byte(`<html><body>Login{{if .Error}} - {{.Error}}{{end}}</body></html>`)},
		"admin/layout.html": &fstest.MapFile{
			Data: []byte(`{{define "admin"}}<html><body><h1>{{.PageTitle}}</h1>{{if .InspectionID}}<main data-id="{{.InspectionID}}">{{end}}{{template "content" .}}</body></html>{{end}}`),
		},
		"admin/dashboard.html":   page("Dashboard"),
		"admin/holders.html":     page("Holders"),
		"admin/vehicles.html":    page("Vehicles"),
		"admin/inspections.html": page("Inspections"),
		"admin/inspection.html":  page("Inspection"),
		"admin/catalog.html":     page("Catalog"),
		"admin/settings.html":    page("Settings"),
	}
}

// testSetup wires real services over an in-memory database with a seeded
// catalog and one vehicle.
type testSetup struct {
	repo       *repository.Repository
	client     *registry.MockClient
	handlers   *handlers.Handlers
	router     http.Handler
	authCookie *http.Cookie
	vehicleID  int
}

func newTestSetup(t *testing.T) *testSetup {
	t.Helper()
	return newTestSetupWithRepo(t, nil)
}

// newTestSetupWithRepo lets wrap replace the repository seen by services,
// typically with a mock.Repository for error injection.
func newTestSetupWithRepo(t *testing.T, wrap func(repository.FullRepository) repository.FullRepository) *testSetup {
	t.Helper()

	repo := testutil.NewTestRepository(t)
	testutil.SeedCatalog(t, repo)
	vehicleID := testutil.SeedVehicle(t, repo, "A-100-XAL")

	var svcRepo repository.FullRepository = repo
	if wrap != nil {
		svcRepo = wrap(repo)
	}

	log := logger.New()
	client := registry.NewMockClient()
	settings := services.NewSettingsService(log, svcRepo)
	catalog := services.NewCatalogService(log, svcRepo, client)
	inspection := services.NewInspectionService(log, svcRepo, schema.NewStaticStore(log, schema.Default()), catalog, client)
	hub := websocket.New(log, inspection)
	hub.Start()
	catalog.SetBroadcaster(hub)
	inspection.SetBroadcaster(hub)

	h, err := handlers.New(handlers.Services{
		Holder:     services.NewHolderService(log, svcRepo, client),
		Vehicle:    services.NewVehicleService(log, svcRepo, client),
		Catalog:    catalog,
		Inspection: inspection,
		Settings:   settings,
	}, testTemplatesFS(), handlers.NewStaticServer(fstest.MapFS{
		"app.css": &fstest.MapFile{Data: []byte("body{}")},
	}), auth.New("test-password"), hub, handlers.NoopHTTPLogger{})
	if err != nil {
		t.Fatalf("failed to create handlers: %v", err)
	}

	token, _ := h.Auth.Login("test-password")

	return &testSetup{
		repo:       repo,
		client:     client,
		handlers:   h,
		router:     h.Router(),
		authCookie: &http.Cookie{Name: auth.CookieName, Value: token},
		vehicleID:  vehicleID,
	}
}

// do sends an authenticated request with an optional JSON body
func (s *testSetup) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(s.authCookie)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// doRaw sends an authenticated request with a literal body
func (s *testSetup) doRaw(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(s.authCookie)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func expectErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	expectStatus(t, rec, status)
	var body handlers.APIError
	decode(t, rec, &body)
	if body.Code != code {
		t.Errorf("expected error code %s, got %s (%s)", code, body.Code, body.Message)
	}
}

// passingEssentials answers every default essential check so it passes
func passingEssentials() []scoring.Update {
	var updates []scoring.Update
	for _, c := range schema.Default().Essential {
		if c.Kind == scoring.KindBoolean {
			updates = append(updates, scoring.Set(c.Key, scoring.Bool(true)))
		} else {
			updates = append(updates, scoring.Set(c.Key, scoring.Text(string(scoring.GradeGood))))
		}
	}
	return updates
}

// inspectionResponse is the subset of an inspection detail the tests inspect
type inspectionResponse struct {
	ID                  int      `json:"id"`
	Folio               string   `json:"folio"`
	Status              string   `json:"status"`
	Score               int      `json:"score"`
	Classification      string   `json:"classification"`
	ClassificationLabel string   `json:"classification_label"`
	Actions             []string `json:"actions"`
	Result              struct {
		Complete   bool     `json:"complete"`
		Rejected   bool     `json:"rejected"`
		ClassID    int      `json:"classification_id"`
		Unanswered []string `json:"unanswered"`
	} `json:"result"`
}

// createInspection opens a draft for the seeded vehicle
func (s *testSetup) createInspection(t *testing.T) inspectionResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/admin/inspections", map[string]interface{}{
		"vehicle_id": s.vehicleID,
		"inspector":  "Inspectora Ramírez",
	})
	expectStatus(t, rec, http.StatusCreated)
	var detail inspectionResponse
	decode(t, rec, &detail)
	return detail
}

func newRecorderFor(h *handlers.Handlers, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}
