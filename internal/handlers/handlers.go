package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"loyalty/internal/middleware"
	"loyalty/internal/services"

	"github.com/sirupsen/logrus"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

var serviceErrors = []struct {
	err     error
	status  int
	message string
}{
	{services.ErrInvalidCode, http.StatusBadRequest, "invalid_code"},
	{services.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{services.ErrInsufficientFunds, http.StatusBadRequest, "insufficient_funds"},
	{services.ErrSelfTransfer, http.StatusBadRequest, "self_transfer"},
	{services.ErrMessageTooLong, http.StatusBadRequest, "message_too_long"},
	{services.ErrDuplicateEntry, http.StatusBadRequest, "duplicate_entry"},
	{services.ErrSelfEntry, http.StatusBadRequest, "self_entry"},
	{services.ErrInvalidNickname, http.StatusBadRequest, "invalid_nickname"},
	{services.ErrAccountNotFound, http.StatusNotFound, "account_not_found"},
	{services.ErrRecipientNotFound, http.StatusNotFound, "recipient_not_found"},
	{services.ErrEntryNotFound, http.StatusNotFound, "entry_not_found"},
	{services.ErrNotificationNotFound, http.StatusNotFound, "notification_not_found"},
	{services.ErrCheckinTooSoon, http.StatusTooManyRequests, "checkin_too_soon"},
}

// respondServiceError maps a domain error to its status. Anything unknown is
// logged and reported as fallback with a 500.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	for _, known := range serviceErrors {
		if errors.Is(err, known.err) {
			respondError(w, known.status, known.message)
			return
		}
	}
	userID, _ := middleware.UserIDFromContext(r.Context())
	logrus.WithError(err).WithFields(logrus.Fields{
		"path":    r.URL.Path,
		"user_id": userID,
	}).Error(fallback)
	respondError(w, http.StatusInternalServerError, fallback)
}

func decodeJSON(r *http.Request, dest any) error {
	return json.NewDecoder(r.Body).Decode(dest)
}

func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
	}
	return userID, ok
}
