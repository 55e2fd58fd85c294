package handlers

import (
	"net/http"
)

// ==================== Holders ====================

func (h *Handlers) handleGetHolders(w http.ResponseWriter, r *http.Request) {
	holders, err := h.Holder.SearchHolders(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, holders)
}

func (h *Handlers) handleGetHolder(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	holder, err := h.Holder.GetHolder(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, holder)
}

func (h *Handlers) handleCreateHolder(w http.ResponseWriter, r *http.Request) {
	var req HolderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	id, err := h.Holder.CreateHolder(r.Context(), req.toModel(0))
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, CreatedResponse{ID: id})
}

func (h *Handlers) handleUpdateHolder(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req HolderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Holder.UpdateHolder(r.Context(), req.toModel(id)); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Titular actualizado")
}

func (h *Handlers) handleDeleteHolder(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Holder.DeleteHolder(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

func (h *Handlers) handleSyncHolders(w http.ResponseWriter, r *http.Request) {
	var req HolderSyncRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Holder.SyncFromRegistry(r.Context(), req.Query)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

// ==================== Concessions ====================

func (h *Handlers) handleGetConcessions(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	concessions, err := h.Holder.ListConcessions(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, concessions)
}

func (h *Handlers) handleCreateConcession(w http.ResponseWriter, r *http.Request) {
	var req ConcessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	id, err := h.Holder.CreateConcession(r.Context(), req.toModel(0))
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, CreatedResponse{ID: id})
}

func (h *Handlers) handleUpdateConcession(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req ConcessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Holder.UpdateConcession(r.Context(), req.toModel(id)); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Concesión actualizada")
}
