package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/revista/internal/repository"
	"github.com/abrezinsky/revista/internal/services"
)

// ==================== Schema and Preview ====================

func (h *Handlers) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := h.Inspection.Schema(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, map[string]interface{}{
		"schema":    schema,
		"max_score": schema.MaxScore(),
	})
}

func (h *Handlers) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Inspection.Preview(r.Context(), req.Answers)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, map[string]interface{}{
		"result":               result,
		"classification_label": result.Classification.Label(),
		"normalized":           result.Normalized(),
	})
}

// ==================== Inspections ====================

func (h *Handlers) handleGetInspections(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := parseIntQuery(r, "vehicle_id")
	if err != nil {
		respondError(w, err)
		return
	}
	limit, err := parseIntQuery(r, "limit")
	if err != nil {
		respondError(w, err)
		return
	}

	inspections, err := h.Inspection.List(r.Context(), repository.InspectionFilter{
		VehicleID: vehicleID,
		Status:    r.URL.Query().Get("status"),
		Limit:     limit,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, InspectionListResponse{Inspections: inspections, Count: len(inspections)})
}

func (h *Handlers) handleCreateInspection(w http.ResponseWriter, r *http.Request) {
	var req InspectionCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.VehicleID <= 0 {
		respondError(w, BadRequest("vehicle_id is required"))
		return
	}

	detail, err := h.Inspection.Create(r.Context(), req.VehicleID, req.Inspector)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, detail)
}

func (h *Handlers) handleGetInspection(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	detail, err := h.Inspection.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, detail)
}

func (h *Handlers) handleApplyUpdates(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req UpdatesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if len(req.Updates) == 0 {
		respondError(w, BadRequest("updates must not be empty"))
		return
	}

	detail, err := h.Inspection.ApplyUpdates(r.Context(), id, req.Updates)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, detail)
}

func (h *Handlers) handleSetObservations(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req ObservationsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Inspection.SetObservations(r.Context(), id, req.Observations); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Observaciones guardadas")
}

// handleInspectionAction drives the status machine: submit, certify, reopen, cancel
func (h *Handlers) handleInspectionAction(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	actions := map[string]func(context.Context, int) (*services.InspectionDetail, error){
		"submit":  h.Inspection.Submit,
		"certify": h.Inspection.Certify,
		"reopen":  h.Inspection.Reopen,
		"cancel":  h.Inspection.Cancel,
	}
	action, ok := actions[chi.URLParam(r, "action")]
	if !ok {
		respondError(w, NotFound("Unknown inspection action"))
		return
	}

	detail, err := action(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, detail)
}

func (h *Handlers) handleStickerQR(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	png, err := h.Inspection.StickerQR(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

// ==================== Public verification ====================

func (h *Handlers) handleVerify(w http.ResponseWriter, r *http.Request) {
	v, err := h.Inspection.Verify(r.Context(), chi.URLParam(r, "folio"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, v)
}
