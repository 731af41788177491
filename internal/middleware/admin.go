package middleware

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
)

const (
	RoleManageStores        = "CanManageStores"
	RoleManageAnnouncements = "CanManageAnnouncements"
	RoleManageNfts          = "CanManageNfts"
)

type AdminStore interface {
	IsAdmin(ctx context.Context, userID string) (bool, bool, error)
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

// RequireAdmin lets super admins through and checks role for everyone else.
// An empty role only requires an admin row.
func RequireAdmin(adminStore AdminStore, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			isAdmin, isSuper, err := adminStore.IsAdmin(r.Context(), userID)
			if err != nil {
				logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Error("admin lookup failed")
				writeError(w, http.StatusInternalServerError, "unable to verify admin")
				return
			}
			if !isAdmin {
				writeError(w, http.StatusForbidden, "admin privileges required")
				return
			}
			if isSuper || role == "" {
				next.ServeHTTP(w, r)
				return
			}
			hasRole, err := adminStore.HasRole(r.Context(), userID, role)
			if err != nil {
				logrus.WithFields(logrus.Fields{"user_id": userID, "role": role, "error": err.Error()}).Error("admin role lookup failed")
				writeError(w, http.StatusInternalServerError, "unable to verify role")
				return
			}
			if !hasRole {
				writeError(w, http.StatusForbidden, "missing required role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
