package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.core.Directory.ListCustomers(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, customers)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	customer, err := h.core.Directory.CreateCustomer(r.Context(), req.toDomain())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, customer)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.core.Directory.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, customer)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	customer, err := h.core.Directory.UpdateCustomer(r.Context(), chi.URLParam(r, "id"), req.toDomain())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, customer)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.core.Directory.DeleteCustomer(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.core.Directory.ListCards(r.Context(), r.URL.Query().Get("customerId"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, cards)
}

func (h *Handler) createCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	card, err := h.core.Directory.CreateCard(r.Context(), req.toDomain())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, card)
}

func (h *Handler) getCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.core.Directory.GetCard(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, card)
}

func (h *Handler) updateCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	card, err := h.core.Directory.UpdateCard(r.Context(), chi.URLParam(r, "id"), req.toDomain())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, card)
}

func (h *Handler) deleteCard(w http.ResponseWriter, r *http.Request) {
	if err := h.core.Directory.DeleteCard(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) chargeCard(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	card, err := h.core.Directory.Charge(r.Context(), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, card)
}

func (h *Handler) payCard(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	card, err := h.core.Directory.Pay(r.Context(), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, card)
}

// cardBalance 回傳可用額度
func (h *Handler) cardBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	available, err := h.core.Directory.CardBalance(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, balanceResponse{ID: id, Balance: available, Currency: h.currency})
}

func (h *Handler) recordTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	tx, err := h.core.Movements.Record(r.Context(), req.toDomain())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, tx)
}

func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.core.Movements.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, tx)
}

func (h *Handler) transactionsByProduct(w http.ResponseWriter, r *http.Request) {
	txs, err := h.core.Movements.ByProduct(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, txs)
}
