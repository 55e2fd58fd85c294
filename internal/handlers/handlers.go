package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/abrezinsky/revista/internal/auth"
	"github.com/abrezinsky/revista/internal/services"
	"github.com/abrezinsky/revista/internal/websocket"
	"github.com/abrezinsky/revista/pkg/scoring"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// AdminPageData holds the data passed to admin templates
type AdminPageData struct {
	Title     string
	PageTitle string
	ActiveNav string
	// InspectionID is set on the inspection form page
	InspectionID int
}

// Templates holds all parsed HTML templates
type Templates struct {
	Index            *template.Template
	Verify           *template.Template
	AdminLogin       *template.Template
	AdminDashboard   *template.Template
	AdminHolders     *template.Template
	AdminVehicles    *template.Template
	AdminInspections *template.Template
	AdminInspection  *template.Template
	AdminCatalog     *template.Template
	AdminSettings    *template.Template
}

// Services groups the service dependencies of the HTTP layer
type Services struct {
	Holder     services.HolderServicer
	Vehicle    services.VehicleServicer
	Catalog    services.CatalogServicer
	Inspection services.InspectionServicer
	Settings   services.SettingsServicer
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Holder       services.HolderServicer
	Vehicle      services.VehicleServicer
	Catalog      services.CatalogServicer
	Inspection   services.InspectionServicer
	Settings     services.SettingsServicer
	Auth         *auth.Auth
	Hub          *websocket.Hub
	Log          HTTPLogger
	templates    *Templates
	staticServer http.Handler
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	svc Services,
	templatesFS fs.FS,
	staticServer http.Handler,
	adminAuth *auth.Auth,
	hub *websocket.Hub,
	log HTTPLogger,
) (*Handlers, error) {
	templates, err := loadTemplates(templatesFS)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	return &Handlers{
		Holder:       svc.Holder,
		Vehicle:      svc.Vehicle,
		Catalog:      svc.Catalog,
		Inspection:   svc.Inspection,
		Settings:     svc.Settings,
		Auth:         adminAuth,
		Hub:          hub,
		Log:          log,
		templates:    templates,
		staticServer: staticServer,
	}, nil
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance without templates for API tests.
// The admin password is "test-password".
func NewForTesting(svc Services) *Handlers {
	return &Handlers{
		Holder:     svc.Holder,
		Vehicle:    svc.Vehicle,
		Catalog:    svc.Catalog,
		Inspection: svc.Inspection,
		Settings:   svc.Settings,
		Auth:       auth.New("test-password"),
		Log:        NoopHTTPLogger{},
	}
}

var templateFuncs = template.FuncMap{
	"classLabel": func(c scoring.Classification) string { return c.Label() },
	"percent": func(score, max int) string {
		if max <= 0 {
			return "0%"
		}
		return fmt.Sprintf("%d%%", score*100/max)
	},
}

func parseAdmin(templatesFS fs.FS, page string) (*template.Template, error) {
	return template.New("layout.html").Funcs(templateFuncs).ParseFS(templatesFS, "admin/layout.html", "admin/"+page)
}

// loadTemplates parses all templates once at startup
func loadTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{}
	var err error

	if t.Index, err = template.ParseFS(templatesFS, "index.html"); err != nil {
		return nil, fmt.Errorf("index template: %w", err)
	}
	if t.Verify, err = template.New("verify.html").Funcs(templateFuncs).ParseFS(templatesFS, "verify.html"); err != nil {
		return nil, fmt.Errorf("verify template: %w", err)
	}
	if t.AdminLogin, err = template.ParseFS(templatesFS, "admin/login.html"); err != nil {
		return nil, fmt.Errorf("admin login template: %w", err)
	}

	pages := []struct {
		dst  **template.Template
		file string
	}{
		{&t.AdminDashboard, "dashboard.html"},
		{&t.AdminHolders, "holders.html"},
		{&t.AdminVehicles, "vehicles.html"},
		{&t.AdminInspections, "inspections.html"},
		{&t.AdminInspection, "inspection.html"},
		{&t.AdminCatalog, "catalog.html"},
		{&t.AdminSettings, "settings.html"},
	}
	for _, p := range pages {
		if *p.dst, err = parseAdmin(templatesFS, p.file); err != nil {
			return nil, fmt.Errorf("admin %s template: %w", p.file, err)
		}
	}

	return t, nil
}
