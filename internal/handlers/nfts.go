package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"loyalty/internal/catalog"
	"loyalty/internal/db"
	"loyalty/internal/models"
	"loyalty/internal/validator"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const maxNftName = 120

func (h *Handler) ListNfts(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Nfts.ListActive(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load nfts")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) MyNfts(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	rows, err := h.Nfts.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load nfts")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

type createNftRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	Rarity      string `json:"rarity"`
}

func (h *Handler) CreateNft(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req createNftRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateName(req.Name, maxNftName); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	rarity := strings.ToLower(strings.TrimSpace(req.Rarity))
	if rarity == "" {
		rarity = "common"
	}
	if !catalog.ValidRarity(rarity) {
		respondError(w, http.StatusBadRequest, "invalid rarity")
		return
	}
	nft := models.Nft{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Rarity:      rarity,
		IsActive:    true,
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.Nfts.Create(r.Context(), tx, nft); err != nil {
			return err
		}
		return h.Audit.Log(r.Context(), tx, actorID, "nft.create", "nft", nft.ID, map[string]string{"name": nft.Name})
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			respondError(w, http.StatusConflict, "nft name already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to create nft")
		return
	}
	respondJSON(w, http.StatusCreated, nft)
}

type awardNftRequest struct {
	UserID string `json:"userId"`
	Reason string `json:"reason"`
}

func (h *Handler) AwardNft(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req awardNftRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.UserID) == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	nft, err := h.Nfts.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "nft_not_found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load nft")
		return
	}
	if _, err := h.Users.GetByID(r.Context(), req.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	var awarded bool
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		awarded, err = h.Nfts.Award(r.Context(), tx, uuid.NewString(), req.UserID, nft.ID, req.Reason)
		if err != nil || !awarded {
			return err
		}
		return h.Audit.Log(r.Context(), tx, actorID, "nft.award", "nft", nft.ID, map[string]string{
			"user_id": req.UserID,
			"reason":  req.Reason,
		})
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to award nft")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"awarded": awarded})
}
