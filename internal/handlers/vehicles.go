package handlers

import (
	"net/http"
)

// ==================== Vehicles ====================

func (h *Handlers) handleGetVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.Vehicle.ListVehicles(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, vehicles)
}

func (h *Handlers) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	vehicle, err := h.Vehicle.GetVehicle(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, vehicle)
}

func (h *Handlers) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req VehicleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	id, err := h.Vehicle.CreateVehicle(r.Context(), req.toModel(0))
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, CreatedResponse{ID: id})
}

func (h *Handlers) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req VehicleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Vehicle.UpdateVehicle(r.Context(), req.toModel(id)); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Vehículo actualizado")
}

func (h *Handlers) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Vehicle.DeleteVehicle(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

func (h *Handlers) handleSyncVehicles(w http.ResponseWriter, r *http.Request) {
	result, err := h.Vehicle.SyncFromRegistry(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}
