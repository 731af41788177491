package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"loyalty/internal/services"
)

type transferRequest struct {
	ToUserID string          `json:"toUserId"`
	Amount   json.RawMessage `json:"amount"`
	Message  *string         `json:"message"`
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req transferRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, err := parseCoinAmount(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	transfer, err := h.Coins.Transfer(r.Context(), services.TransferRequest{
		FromUserID: userID,
		ToUserID:   strings.TrimSpace(req.ToUserID),
		Amount:     amount,
		Message:    req.Message,
	})
	if err != nil {
		respondServiceError(w, r, err, "transfer_failed")
		return
	}
	respondJSON(w, http.StatusOK, transfer)
}

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	balance, err := h.Balances.Balance(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "unable to load balance")
		return
	}
	respondJSON(w, http.StatusOK, balance)
}

func (h *Handler) CoinTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	rows, err := h.Transfers.ListByUser(r.Context(), userID, parseLimit(r.URL.Query().Get("limit"), 50))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load coin transactions")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// SelfCheck compares the caller's stored coins with the coin ledger.
func (h *Handler) SelfCheck(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	summary, err := h.Accounts.CoinSummary(r.Context(), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "account_not_found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to reconcile coins")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"storedCoins": summary.StoredCoins,
		"ledgerCoins": summary.LedgerCoins,
		"difference":  summary.Difference,
		"consistent":  summary.Difference == 0,
	})
}
