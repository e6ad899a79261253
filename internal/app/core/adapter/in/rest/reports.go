package rest

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
)

func (h *Handler) dailyBalance(w http.ResponseWriter, r *http.Request) {
	rows, err := h.core.Reports.DailyBalance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, rows)
}

// commissions ?from=YYYY-MM-DD&to=YYYY-MM-DD，兩端皆含
func (h *Handler) commissions(w http.ResponseWriter, r *http.Request) {
	from, err := h.parseDate(r, "from")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	to, err := h.parseDate(r, "to")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	rows, err := h.core.Reports.Commissions(r.Context(), from, to)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, rows)
}

func (h *Handler) parseDate(r *http.Request, key string) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: query parameter %q is required", domain.ErrValidation, key)
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, h.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: query parameter %q must be YYYY-MM-DD", domain.ErrValidation, key)
	}
	return t, nil
}
