package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"loyalty/internal/models"
	"loyalty/internal/rewards"
	"loyalty/internal/validator"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const maxStoreName = 120

func (h *Handler) ListStores(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Shops.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load stores")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) GetStore(w http.ResponseWriter, r *http.Request) {
	shop, ok := h.loadStore(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, shop)
}

// StoreCode returns the raw scan code for printing at the counter.
func (h *Handler) StoreCode(w http.ResponseWriter, r *http.Request) {
	shop, ok := h.loadStore(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"storeId": shop.ID,
		"code":    shop.ScanCode,
	})
}

func (h *Handler) loadStore(w http.ResponseWriter, r *http.Request, id string) (models.Shop, bool) {
	shop, err := h.Shops.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "store_not_found")
			return models.Shop{}, false
		}
		respondError(w, http.StatusInternalServerError, "unable to load store")
		return models.Shop{}, false
	}
	return shop, true
}

type createStoreRequest struct {
	Name               string `json:"name"`
	Address            string `json:"address"`
	ExperiencePerVisit int64  `json:"experiencePerVisit"`
	LoyaltyPerVisit    int64  `json:"loyaltyPerVisit"`
	CoinsPerVisit      int64  `json:"coinsPerVisit"`
	GemsPerVisit       int64  `json:"gemsPerVisit"`
}

func (h *Handler) CreateStore(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req createStoreRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateName(req.Name, maxStoreName); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	reward := rewards.Reward{
		Experience: req.ExperiencePerVisit,
		Loyalty:    req.LoyaltyPerVisit,
		Coins:      req.CoinsPerVisit,
		Gems:       req.GemsPerVisit,
	}
	if !reward.Valid() {
		respondError(w, http.StatusBadRequest, "invalid_reward")
		return
	}
	shop := models.Shop{
		ID:                 uuid.NewString(),
		Name:               strings.TrimSpace(req.Name),
		Address:            strings.TrimSpace(req.Address),
		ScanCode:           newScanCode(),
		ExperiencePerVisit: reward.Experience,
		LoyaltyPerVisit:    reward.Loyalty,
		CoinsPerVisit:      reward.Coins,
		GemsPerVisit:       reward.Gems,
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.Shops.Create(r.Context(), tx, shop); err != nil {
			return err
		}
		return h.Audit.Log(r.Context(), tx, actorID, "store.create", "store", shop.ID, reward)
	})
	if err != nil {
		logrus.WithError(err).Error("store creation failed")
		respondError(w, http.StatusInternalServerError, "unable to create store")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"store": shop,
		"code":  shop.ScanCode,
	})
}

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	rows, err := h.Favorites.ListStores(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load favorites")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	shop, ok := h.loadStore(w, r, chi.URLParam(r, "storeId"))
	if !ok {
		return
	}
	if err := h.Favorites.Add(r.Context(), userID, shop.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to add favorite")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"isFavorite": true})
}

func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.Favorites.Remove(r.Context(), userID, chi.URLParam(r, "storeId")); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to remove favorite")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"isFavorite": false})
}

func (h *Handler) IsFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	favorite, err := h.Favorites.IsFavorite(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load favorite")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"isFavorite": favorite})
}
