package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"loyalty/internal/middleware"

	"github.com/jmoiron/sqlx"
)

var grantableRoles = map[string]bool{
	middleware.RoleManageStores:        true,
	middleware.RoleManageAnnouncements: true,
	middleware.RoleManageNfts:          true,
}

type promoteRequest struct {
	Email string `json:"email"`
}

func (h *Handler) PromoteAdmin(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if !h.requireSuper(w, r, userID) {
		return
	}
	var req promoteRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Email) == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	target, err := h.Users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to resolve user")
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.Admin.CreateAdmin(r.Context(), tx, target.ID, false, &userID); err != nil {
			return err
		}
		return h.Audit.Log(r.Context(), tx, userID, "promote_admin", "admin", target.ID, map[string]string{
			"target_user_id": target.ID,
		})
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to promote admin")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "promoted"})
}

type grantRoleRequest struct {
	AdminUserID string `json:"adminUserId"`
	Role        string `json:"role"`
}

func (h *Handler) GrantRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if !h.requireSuper(w, r, userID) {
		return
	}
	var req grantRoleRequest
	if err := decodeJSON(r, &req); err != nil || req.AdminUserID == "" || req.Role == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if !grantableRoles[req.Role] {
		respondError(w, http.StatusBadRequest, "unknown role")
		return
	}
	isAdmin, isSuper, err := h.Admin.IsAdmin(r.Context(), req.AdminUserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to verify target admin")
		return
	}
	if !isAdmin {
		respondError(w, http.StatusBadRequest, "target is not an admin")
		return
	}
	if isSuper {
		respondError(w, http.StatusBadRequest, "cannot assign roles to super admin")
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.Admin.GrantRole(r.Context(), tx, req.AdminUserID, req.Role); err != nil {
			return err
		}
		return h.Audit.Log(r.Context(), tx, userID, "grant_role", "admin_role", req.AdminUserID, map[string]string{
			"role": req.Role,
		})
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to grant role")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "role_granted"})
}

func (h *Handler) requireSuper(w http.ResponseWriter, r *http.Request, userID string) bool {
	_, isSuper, err := h.Admin.IsAdmin(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to verify admin")
		return false
	}
	if !isSuper {
		respondError(w, http.StatusForbidden, "super_admin_required")
		return false
	}
	return true
}

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := parseLimit(query.Get("limit"), 50)
	page := parseInt(query.Get("page"), 1)
	rows, err := h.Audit.List(r.Context(), limit, (page-1)*limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load audit logs")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// Reconcile lists every account whose stored coins disagree with the coin
// ledger.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	type reconRow struct {
		UserID      string `db:"user_id" json:"userId"`
		StoredCoins int64  `db:"stored_coins" json:"storedCoins"`
		LedgerCoins int64  `db:"ledger_coins" json:"ledgerCoins"`
		Difference  int64  `db:"difference" json:"difference"`
	}
	rows := []reconRow{}
	query := `
		SELECT a.user_id,
		       a.coins AS stored_coins,
		       COALESCE(SUM(l.amount), 0) AS ledger_coins,
		       (a.coins - COALESCE(SUM(l.amount), 0)) AS difference
		FROM accounts a
		LEFT JOIN coin_ledger_entries l ON l.user_id = a.user_id
		GROUP BY a.user_id, a.coins
		HAVING a.coins <> COALESCE(SUM(l.amount), 0)
		ORDER BY a.user_id
	`
	if err := h.ReconcileDB.SelectContext(r.Context(), &rows, query); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to reconcile coins")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}
