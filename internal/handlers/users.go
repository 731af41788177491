package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"loyalty/internal/db"
	"loyalty/internal/validator"

	"github.com/go-chi/chi/v5"
)

const maxPersonName = 60

type profileRequest struct {
	Nickname  *string `json:"nickname"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	nickname := trimmedPtr(req.Nickname)
	firstName := trimmedPtr(req.FirstName)
	lastName := trimmedPtr(req.LastName)
	if nickname != nil {
		if err := validator.ValidateNickname(*nickname); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		taken, err := h.Users.NicknameTaken(r.Context(), *nickname, userID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to update profile")
			return
		}
		if taken {
			respondError(w, http.StatusConflict, "nickname_taken")
			return
		}
	}
	for _, name := range []*string{firstName, lastName} {
		if name == nil {
			continue
		}
		if err := validator.ValidateName(*name, maxPersonName); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	user, err := h.Users.UpdateProfile(r.Context(), userID, nickname, firstName, lastName)
	if err != nil {
		if db.IsUniqueViolation(err) {
			respondError(w, http.StatusConflict, "nickname_taken")
			return
		}
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to update profile")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"user":        user,
		"displayName": user.DisplayName(),
	})
}

// GetUserByEmail lets a sender resolve a recipient id before a transfer.
func (h *Handler) GetUserByEmail(w http.ResponseWriter, r *http.Request) {
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid email")
		return
	}
	user, err := h.Users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"id":          user.ID,
		"displayName": user.DisplayName(),
	})
}
