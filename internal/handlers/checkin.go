package handlers

import (
	"net/http"
)

type checkinRequest struct {
	QRCode string `json:"qrCode"`
}

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req checkinRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	result, err := h.Checkin.CheckIn(r.Context(), userID, req.QRCode)
	if err != nil {
		respondServiceError(w, r, err, "checkin_failed")
		return
	}
	respondJSON(w, http.StatusOK, result)
}
