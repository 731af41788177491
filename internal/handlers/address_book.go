package handlers

import (
	"net/http"
	"strings"

	"loyalty/internal/services"

	"github.com/go-chi/chi/v5"
)

type addEntryRequest struct {
	RecipientID string  `json:"recipientId"`
	Nickname    *string `json:"nickname"`
	IsFavorite  bool    `json:"isFavorite"`
}

type updateEntryRequest struct {
	Nickname   *string `json:"nickname"`
	IsFavorite *bool   `json:"isFavorite"`
}

func (h *Handler) ListAddressBook(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	entries, err := h.AddressBook.List(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "unable to load address book")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *Handler) AddAddressBookEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req addEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	entry, err := h.AddressBook.Add(r.Context(), services.AddEntryRequest{
		OwnerID:     userID,
		RecipientID: strings.TrimSpace(req.RecipientID),
		Nickname:    req.Nickname,
		IsFavorite:  req.IsFavorite,
	})
	if err != nil {
		respondServiceError(w, r, err, "unable to add entry")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (h *Handler) UpdateAddressBookEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req updateEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	entry, err := h.AddressBook.Update(r.Context(), userID, chi.URLParam(r, "id"), services.UpdateEntryRequest{
		Nickname:   req.Nickname,
		IsFavorite: req.IsFavorite,
	})
	if err != nil {
		respondServiceError(w, r, err, "unable to update entry")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (h *Handler) RemoveAddressBookEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.AddressBook.Remove(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err, "unable to remove entry")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
