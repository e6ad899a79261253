package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.core.Accounts.List(r.Context(), r.URL.Query().Get("customerId"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, accounts)
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	account, err := h.core.Accounts.Create(r.Context(), req.toDomain())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, account)
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.core.Accounts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, account)
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountPatchRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	account, err := h.core.Accounts.Update(r.Context(), chi.URLParam(r, "id"), req.toDomain())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, account)
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.core.Accounts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) accountBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	balance, err := h.core.Accounts.Balance(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, balanceResponse{ID: id, Balance: balance, Currency: h.currency})
}

func (h *Handler) deposit(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	account, err := h.core.Accounts.Deposit(r.Context(), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, account)
}

func (h *Handler) withdraw(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	account, err := h.core.Accounts.Withdraw(r.Context(), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, account)
}

func (h *Handler) accountMovements(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.core.Accounts.Get(r.Context(), id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	txs, err := h.core.Movements.ByProduct(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, txs)
}

func (h *Handler) transferOwn(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	result, err := h.core.Transfers.TransferOwn(r.Context(), req.FromAccountID, req.ToAccountID, req.Amount)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result)
}

func (h *Handler) transferThirdParty(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	result, err := h.core.Transfers.TransferThirdParty(r.Context(), req.FromAccountID, req.ToAccountID, req.Amount)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result)
}
