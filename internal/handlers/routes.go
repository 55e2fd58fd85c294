package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	if h.staticServer != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", h.staticServer))
	}

	// Public
	r.Get("/", h.handleIndex)
	r.Get("/verify/{folio}", h.handleVerifyPage)
	r.Get("/api/verify/{folio}", h.handleVerify)
	r.Get("/vehicles/{id}/photo", h.handleVehiclePhoto)
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	r.Get("/admin/login", h.handleLoginPage)
	r.Post("/admin/login", h.handleLogin)
	r.Post("/admin/logout", h.handleLogout)

	// Admin pages (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuth)
		r.Get("/admin", h.handleAdminDashboard)
		r.Get("/admin/holders", h.handleAdminHolders)
		r.Get("/admin/vehicles", h.handleAdminVehicles)
		r.Get("/admin/inspections", h.handleAdminInspections)
		r.Get("/admin/inspections/{id}", h.handleAdminInspection)
		r.Get("/admin/catalog", h.handleAdminCatalog)
		r.Get("/admin/settings", h.handleAdminSettings)
	})

	// Admin API (protected)
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(h.Auth.RequireAuthAPI)

		r.Get("/stats", h.handleGetStats)

		// Holders and concessions
		r.Get("/holders", h.handleGetHolders)
		r.Post("/holders", h.handleCreateHolder)
		r.Post("/holders/sync", h.handleSyncHolders)
		r.Get("/holders/{id}", h.handleGetHolder)
		r.Put("/holders/{id}", h.handleUpdateHolder)
		r.Delete("/holders/{id}", h.handleDeleteHolder)
		r.Get("/holders/{id}/concessions", h.handleGetConcessions)
		r.Post("/concessions", h.handleCreateConcession)
		r.Put("/concessions/{id}", h.handleUpdateConcession)

		// Vehicles
		r.Get("/vehicles", h.handleGetVehicles)
		r.Post("/vehicles", h.handleCreateVehicle)
		r.Post("/vehicles/sync", h.handleSyncVehicles)
		r.Get("/vehicles/{id}", h.handleGetVehicle)
		r.Put("/vehicles/{id}", h.handleUpdateVehicle)
		r.Delete("/vehicles/{id}", h.handleDeleteVehicle)

		// Catalog and schema
		r.Get("/catalog", h.handleGetCatalog)
		r.Post("/catalog/sync", h.handleSyncCatalog)
		r.Get("/schema", h.handleGetSchema)

		// Inspections
		r.Get("/inspections", h.handleGetInspections)
		r.Post("/inspections", h.handleCreateInspection)
		r.Post("/inspections/preview", h.handlePreview)
		r.Get("/inspections/{id}", h.handleGetInspection)
		r.Patch("/inspections/{id}/answers", h.handleApplyUpdates)
		r.Put("/inspections/{id}/observations", h.handleSetObservations)
		r.Post("/inspections/{id}/{action}", h.handleInspectionAction)
		r.Get("/inspections/{id}/qr", h.handleStickerQR)

		// Settings and database management
		r.Get("/settings", h.handleGetSettings)
		r.Put("/settings", h.handleUpdateSettings)
		r.Post("/settings", h.handleUpdateSettings)
		r.Post("/reset-database", h.handleResetDatabase)
		r.Post("/seed-mock-data", h.handleSeedMockData)
	})

	return r
}
