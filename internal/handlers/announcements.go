package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"loyalty/internal/models"
	"loyalty/internal/store"
	"loyalty/internal/validator"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const maxAnnouncementTitle = 200

// ListAnnouncements returns global announcements plus those of the caller's
// favorite stores.
func (h *Handler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	storeIDs, err := h.Favorites.StoreIDs(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load announcements")
		return
	}
	rows, err := h.Announcements.ListActive(r.Context(), storeIDs, time.Now().UTC())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load announcements")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) StoreAnnouncements(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Announcements.ListByStore(r.Context(), chi.URLParam(r, "id"), time.Now().UTC())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load announcements")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

type announcementRequest struct {
	StoreID  *string    `json:"storeId"`
	Title    string     `json:"title"`
	Body     string     `json:"body"`
	Priority int        `json:"priority"`
	EndDate  *time.Time `json:"endDate"`
}

func (h *Handler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req announcementRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateName(req.Title, maxAnnouncementTitle); err != nil {
		respondError(w, http.StatusBadRequest, "invalid title")
		return
	}
	storeID := trimmedPtr(req.StoreID)
	if storeID != nil && *storeID == "" {
		storeID = nil
	}
	if storeID != nil {
		if _, ok := h.loadStore(w, r, *storeID); !ok {
			return
		}
	}
	announcement := models.Announcement{
		ID:        uuid.NewString(),
		StoreID:   storeID,
		Title:     strings.TrimSpace(req.Title),
		Body:      req.Body,
		Priority:  req.Priority,
		IsActive:  true,
		EndDate:   req.EndDate,
		CreatedAt: time.Now().UTC(),
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.Announcements.Create(r.Context(), tx, announcement); err != nil {
			return err
		}
		return h.Audit.Log(r.Context(), tx, actorID, "announcement.create", "announcement", announcement.ID, map[string]any{
			"store_id": storeID,
			"title":    announcement.Title,
		})
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create announcement")
		return
	}
	respondJSON(w, http.StatusCreated, announcement)
}

type announcementPatchRequest struct {
	Title    *string    `json:"title"`
	Body     *string    `json:"body"`
	Priority *int       `json:"priority"`
	IsActive *bool      `json:"isActive"`
	EndDate  *time.Time `json:"endDate"`
}

func (h *Handler) UpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req announcementPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	title := trimmedPtr(req.Title)
	if title != nil {
		if err := validator.ValidateName(*title, maxAnnouncementTitle); err != nil {
			respondError(w, http.StatusBadRequest, "invalid title")
			return
		}
	}
	id := chi.URLParam(r, "id")
	var updated models.Announcement
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		updated, err = h.Announcements.Update(r.Context(), tx, id, store.AnnouncementPatch{
			Title:    title,
			Body:     req.Body,
			Priority: req.Priority,
			IsActive: req.IsActive,
			EndDate:  req.EndDate,
		})
		if err != nil {
			return err
		}
		return h.Audit.Log(r.Context(), tx, actorID, "announcement.update", "announcement", id, req)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "announcement_not_found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to update announcement")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		rows, err := h.Announcements.Delete(r.Context(), tx, id)
		if err != nil {
			return err
		}
		if rows == 0 {
			return sql.ErrNoRows
		}
		return h.Audit.Log(r.Context(), tx, actorID, "announcement.delete", "announcement", id, nil)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "announcement_not_found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to delete announcement")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
