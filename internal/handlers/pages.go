package handlers

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/revista/internal/errors"
	"github.com/abrezinsky/revista/internal/services"
)

// placeholderPhotoSVG is served when a vehicle has no reachable photo
var placeholderPhotoSVG = []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="200" height="150" viewBox="0 0 200 150">
  <rect width="200" height="150" fill="#e5e7eb"/>
  <text x="100" y="75" font-family="Arial, sans-serif" font-size="14" fill="#9ca3af" text-anchor="middle" dominant-baseline="middle">Sin foto</text>
</svg>`)

// VerifyPageData is rendered on the public verification page
type VerifyPageData struct {
	Folio        string
	Verification *services.Verification
	NotFound     bool
}

// ==================== Public Pages ====================

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	if folio := r.URL.Query().Get("folio"); folio != "" {
		http.Redirect(w, r, "/verify/"+folio, http.StatusFound)
		return
	}
	h.templates.Index.Execute(w, nil)
}

func (h *Handlers) handleVerifyPage(w http.ResponseWriter, r *http.Request) {
	folio := chi.URLParam(r, "folio")
	data := VerifyPageData{Folio: folio}

	v, err := h.Inspection.Verify(r.Context(), folio)
	switch {
	case errors.IsNotFound(err):
		data.NotFound = true
		w.WriteHeader(http.StatusNotFound)
	case err != nil:
		respondError(w, err)
		return
	default:
		data.Verification = v
	}
	h.templates.Verify.Execute(w, data)
}

// handleVehiclePhoto proxies the registry photo or serves a placeholder
func (h *Handlers) handleVehiclePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		servePlaceholderPhoto(w)
		return
	}

	photo, err := h.Vehicle.GetVehiclePhoto(r.Context(), id)
	if err != nil {
		servePlaceholderPhoto(w)
		return
	}

	w.Header().Set("Content-Type", photo.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(photo.Data)
}

func servePlaceholderPhoto(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(placeholderPhotoSVG)
}

// ==================== Admin Pages ====================

func renderAdmin(w http.ResponseWriter, tmpl *template.Template, title, nav string) {
	tmpl.ExecuteTemplate(w, "admin", AdminPageData{Title: title, PageTitle: title, ActiveNav: nav})
}

func (h *Handlers) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	renderAdmin(w, h.templates.AdminDashboard, "Panel de revista", "dashboard")
}

func (h *Handlers) handleAdminHolders(w http.ResponseWriter, r *http.Request) {
	renderAdmin(w, h.templates.AdminHolders, "Titulares y concesiones", "holders")
}

func (h *Handlers) handleAdminVehicles(w http.ResponseWriter, r *http.Request) {
	renderAdmin(w, h.templates.AdminVehicles, "Vehículos", "vehicles")
}

func (h *Handlers) handleAdminInspections(w http.ResponseWriter, r *http.Request) {
	renderAdmin(w, h.templates.AdminInspections, "Revistas", "inspections")
}

func (h *Handlers) handleAdminInspection(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		http.Redirect(w, r, "/admin/inspections", http.StatusFound)
		return
	}
	h.templates.AdminInspection.ExecuteTemplate(w, "admin", AdminPageData{
		Title:        "Revista",
		PageTitle:    "Captura de revista",
		ActiveNav:    "inspections",
		InspectionID: id,
	})
}

func (h *Handlers) handleAdminCatalog(w http.ResponseWriter, r *http.Request) {
	renderAdmin(w, h.templates.AdminCatalog, "Catálogo de características", "catalog")
}

func (h *Handlers) handleAdminSettings(w http.ResponseWriter, r *http.Request) {
	renderAdmin(w, h.templates.AdminSettings, "Configuración", "settings")
}
