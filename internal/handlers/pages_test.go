package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/abrezinsky/revista/internal/auth"
	"github.com/abrezinsky/revista/internal/handlers"
	"github.com/abrezinsky/revista/internal/logger"
	"github.com/abrezinsky/revista/web"
)

func TestNew_MissingTemplate(t *testing.T) {
	for _, missing := range []string{"verify.html", "admin/login.html", "admin/inspection.html"} {
		t.Run(missing, func(t *testing.T) {
			fs := testTemplatesFS()
			delete(fs, missing)

			_, err := handlers.New(handlers.Services{}, fs, handlers.NewStaticServer(fstest.MapFS{}),
				auth.New("pw"), nil, logger.New())
			if err == nil {
				t.Fatalf("expected error when %s is missing", missing)
			}
			if !strings.Contains(err.Error(), "failed to load templates") {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestNew_EmbeddedTemplates(t *testing.T) {
	adminAuth := auth.New("pw")
	h, err := handlers.New(handlers.Services{}, web.GetTemplatesFS(), handlers.NewStaticServer(web.GetStaticFS()),
		adminAuth, nil, handlers.NoopHTTPLogger{})
	if err != nil {
		t.Fatalf("embedded templates failed to load: %v", err)
	}
	router := h.Router()
	token, _ := adminAuth.Login("pw")

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := get("/admin/inspections/7")
	expectStatus(t, rec, http.StatusOK)
	if body := rec.Body.String(); !strings.Contains(body, `data-id="7"`) || !strings.Contains(body, "inspection.js") {
		t.Errorf("inspection page missing id or script: %s", body)
	}

	rec = get("/admin/catalog")
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "catalog.js") {
		t.Error("catalog page should load its script")
	}

	rec = get("/admin/login")
	expectStatus(t, rec, http.StatusFound)

	rec = get("/static/js/admin.js")
	expectStatus(t, rec, http.StatusOK)
}

func TestAdminPages_Render(t *testing.T) {
	setup := newTestSetup(t)

	pages := []struct {
		path    string
		title   string
		content string
	}{
		{"/admin", "Panel de revista", "Dashboard Content"},
		{"/admin/holders", "Titulares y concesiones", "Holders Content"},
		{"/admin/vehicles", "Vehículos", "Vehicles Content"},
		{"/admin/inspections", "Revistas", "Inspections Content"},
		{"/admin/catalog", "Catálogo de características", "Catalog Content"},
		{"/admin/settings", "Configuración", "Settings Content"},
	}

	for _, p := range pages {
		t.Run(p.path, func(t *testing.T) {
			rec := setup.do(t, http.MethodGet, p.path, nil)
			expectStatus(t, rec, http.StatusOK)
			body := rec.Body.String()
			if !strings.Contains(body, p.title) || !strings.Contains(body, p.content) {
				t.Errorf("expected %q and %q in body, got %s", p.title, p.content, body)
			}
		})
	}
}

func TestAdminInspectionPage(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/admin/inspections/7", nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `data-id="7"`) {
		t.Errorf("expected inspection id in page, got %s", rec.Body.String())
	}

	rec = setup.do(t, http.MethodGet, "/admin/inspections/nope", nil)
	expectStatus(t, rec, http.StatusFound)
	if rec.Header().Get("Location") != "/admin/inspections" {
		t.Errorf("expected redirect to list, got %s", rec.Header().Get("Location"))
	}
}

func TestAdminPages_RequireLogin(t *testing.T) {
	setup := newTestSetup(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/inspections", nil)
	rec := httptest.NewRecorder()
	setup.router.ServeHTTP(rec, req)

	expectStatus(t, rec, http.StatusFound)
	if rec.Header().Get("Location") != "/admin/login" {
		t.Errorf("expected redirect to /admin/login, got %s", rec.Header().Get("Location"))
	}
}

func TestAdminAPI_RequiresLogin(t *testing.T) {
	setup := newTestSetup(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/inspections", nil)
	rec := httptest.NewRecorder()
	setup.router.ServeHTTP(rec, req)

	expectErrorCode(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestIndex(t *testing.T) {
	setup := newTestSetup(t)

	rec := httptest.NewRecorder()
	setup.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "Revista") {
		t.Errorf("unexpected index body %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	setup.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?folio=RV-2026-ABCDEF12", nil))
	expectStatus(t, rec, http.StatusFound)
	if rec.Header().Get("Location") != "/verify/RV-2026-ABCDEF12" {
		t.Errorf("expected redirect to verify page, got %s", rec.Header().Get("Location"))
	}
}

func TestStaticFiles(t *testing.T) {
	setup := newTestSetup(t)

	rec := httptest.NewRecorder()
	setup.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	expectStatus(t, rec, http.StatusOK)
	if rec.Body.String() != "body{}" {
		t.Errorf("unexpected static body %q", rec.Body.String())
	}
}

func TestVehiclePhoto_Placeholder(t *testing.T) {
	setup := newTestSetup(t)

	for _, path := range []string{"/vehicles/abc/photo", "/vehicles/999/photo"} {
		rec := httptest.NewRecorder()
		setup.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		expectStatus(t, rec, http.StatusOK)
		if rec.Header().Get("Content-Type") != "image/svg+xml" {
			t.Errorf("%s: expected placeholder svg, got %s", path, rec.Header().Get("Content-Type"))
		}
		if !strings.Contains(rec.Body.String(), "Sin foto") {
			t.Errorf("%s: expected placeholder text", path)
		}
	}
}

// ==================== Login ====================

func TestLoginPage(t *testing.T) {
	setup := newTestSetup(t)

	rec := httptest.NewRecorder()
	setup.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "Login") {
		t.Errorf("expected login page, got %s", rec.Body.String())
	}

	// Already logged in
	rec = setup.do(t, http.MethodGet, "/admin/login", nil)
	expectStatus(t, rec, http.StatusFound)
	if rec.Header().Get("Location") != "/admin" {
		t.Errorf("expected redirect to /admin, got %s", rec.Header().Get("Location"))
	}
}

func postLogin(setup *testSetup, password string) *httptest.ResponseRecorder {
	form := url.Values{"password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	setup.router.ServeHTTP(rec, req)
	return rec
}

func TestLogin_Success(t *testing.T) {
	setup := newTestSetup(t)

	rec := postLogin(setup, "test-password")
	expectStatus(t, rec, http.StatusFound)
	if rec.Header().Get("Location") != "/admin" {
		t.Errorf("expected redirect to /admin, got %s", rec.Header().Get("Location"))
	}

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			session = c
		}
	}
	if session == nil || !setup.handlers.Auth.ValidateSession(session.Value) {
		t.Fatal("expected a valid session cookie")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	setup := newTestSetup(t)

	rec := postLogin(setup, "nope")
	expectStatus(t, rec, http.StatusUnauthorized)
	if !strings.Contains(rec.Body.String(), "Contraseña incorrecta") {
		t.Errorf("expected error message in login page, got %s", rec.Body.String())
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("failed login must not set a cookie")
	}
}

func TestLogout(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPost, "/admin/logout", nil)
	expectStatus(t, rec, http.StatusFound)
	if rec.Header().Get("Location") != "/admin/login" {
		t.Errorf("expected redirect to login, got %s", rec.Header().Get("Location"))
	}
	if setup.handlers.Auth.ValidateSession(setup.authCookie.Value) {
		t.Error("expected session to be invalidated")
	}

	rec = setup.do(t, http.MethodGet, "/api/admin/stats", nil)
	expectStatus(t, rec, http.StatusUnauthorized)
}
