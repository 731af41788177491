package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	rows, err := h.Notifications.List(r.Context(), userID, parseLimit(r.URL.Query().Get("limit"), 20))
	if err != nil {
		respondServiceError(w, r, err, "unable to load notifications")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) UnreadNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	count, err := h.Notifications.UnreadCount(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "unable to count notifications")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.Notifications.MarkRead(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err, "unable to update notification")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	updated, err := h.Notifications.MarkAllRead(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "unable to update notifications")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}
