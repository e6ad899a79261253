package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listCredits(w http.ResponseWriter, r *http.Request) {
	credits, err := h.core.Directory.ListCredits(r.Context(), r.URL.Query().Get("customerId"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, credits)
}

func (h *Handler) createCredit(w http.ResponseWriter, r *http.Request) {
	var req creditRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	credit, err := h.core.Directory.CreateCredit(r.Context(), req.toDomain())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, credit)
}

func (h *Handler) getCredit(w http.ResponseWriter, r *http.Request) {
	credit, err := h.core.Directory.GetCredit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, credit)
}

func (h *Handler) updateCredit(w http.ResponseWriter, r *http.Request) {
	var req creditRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	credit, err := h.core.Directory.UpdateCredit(r.Context(), chi.URLParam(r, "id"), req.toDomain())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, credit)
}

func (h *Handler) deleteCredit(w http.ResponseWriter, r *http.Request) {
	if err := h.core.Directory.DeleteCredit(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) payCredit(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	credit, err := h.core.Directory.PayCredit(r.Context(), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, credit)
}
