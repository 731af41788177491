package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"loyalty/internal/auth"
	"loyalty/internal/db"
	"loyalty/internal/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type registerRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Nickname *string `json:"nickname"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validator.ValidateEmail(req.Email); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidatePassword(req.Password); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	nickname := trimmedPtr(req.Nickname)
	if nickname != nil && *nickname == "" {
		nickname = nil
	}
	if nickname != nil {
		if err := validator.ValidateNickname(*nickname); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to secure password")
		return
	}
	userID := uuid.NewString()
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.Users.Create(r.Context(), tx, userID, req.Email, passwordHash, nickname); err != nil {
			return err
		}
		if err := h.Accounts.Create(r.Context(), tx, userID); err != nil {
			return err
		}
		hasAdmin, err := h.Admin.HasAnyAdmin(r.Context(), tx)
		if err != nil {
			return err
		}
		if !hasAdmin {
			if err := h.Admin.CreateAdmin(r.Context(), tx, userID, true, nil); err != nil {
				return err
			}
		}
		return h.Audit.Log(r.Context(), tx, userID, "register", "user", userID, map[string]string{
			"ip":         r.RemoteAddr,
			"user_agent": r.UserAgent(),
		})
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			respondError(w, http.StatusConflict, "email or nickname already exists")
			return
		}
		logrus.WithError(err).Error("registration failed")
		respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	token, err := auth.GenerateToken(h.cfg.JWTSecret, userID, h.cfg.TokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{
		"token":  token,
		"userId": userID,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	user, err := h.Users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := auth.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"token":  token,
		"userId": user.ID,
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	user, err := h.Users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	account, err := h.Accounts.GetByUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "account_not_found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load account")
		return
	}
	isAdmin, isSuper, err := h.Admin.IsAdmin(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load roles")
		return
	}
	roles := []string{}
	if isAdmin {
		roles, err = h.Admin.ListRoles(r.Context(), userID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to load roles")
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"user":        user,
		"displayName": user.DisplayName(),
		"account":     account,
		"isAdmin":     isAdmin,
		"isSuper":     isSuper,
		"roles":       roles,
	})
}
