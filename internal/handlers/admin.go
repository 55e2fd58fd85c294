package handlers

import (
	"fmt"
	"net/http"

	"github.com/abrezinsky/revista/internal/services"
)

// ==================== Stats ====================

func (h *Handlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Inspection.Stats(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, stats)
}

// ==================== Catalog ====================

func (h *Handlers) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	characteristics, err := h.Catalog.Characteristics(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, characteristics)
}

func (h *Handlers) handleSyncCatalog(w http.ResponseWriter, r *http.Request) {
	result, err := h.Catalog.SyncFromRegistry(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

// ==================== Settings ====================

func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.AllSettings(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, settings)
}

func (h *Handlers) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	settings := services.Settings{
		RegistryURL:      req.RegistryURL,
		RegistryToken:    req.RegistryToken,
		BaseURL:          req.BaseURL,
		DefaultInspector: req.DefaultInspector,
	}
	if err := h.Settings.UpdateSettings(r.Context(), settings); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, "Configuración actualizada")
}

// ==================== Database Management ====================

func (h *Handlers) handleResetDatabase(w http.ResponseWriter, r *http.Request) {
	var req DatabaseResetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Settings.ResetTables(r.Context(), req.Tables)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, result)
}

func (h *Handlers) handleSeedMockData(w http.ResponseWriter, r *http.Request) {
	var req SeedMockDataRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	ctx := r.Context()
	var added int
	var err error
	var noun string

	switch req.SeedType {
	case "holders":
		added, err = h.Holder.SeedMockHolders(ctx)
		noun = "titulares"
	case "vehicles":
		added, err = h.Vehicle.SeedMockVehicles(ctx)
		noun = "vehículos"
	case "catalog":
		added, err = h.Catalog.SeedDefaultCatalog(ctx)
		noun = "características"
	default:
		respondError(w, services.ErrInvalidSeedType)
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}

	message := fmt.Sprintf("Se agregaron %d %s", added, noun)
	if added == 0 {
		message = "No se agregaron " + noun + " nuevos"
	}
	respondOK(w, SeedResponse{Message: message, Added: added})
}
