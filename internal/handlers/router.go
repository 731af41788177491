package handlers

import (
	"net/http"

	"loyalty/internal/config"
	"loyalty/internal/db"
	"loyalty/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	txRunner db.TxRunner
	cfg      config.Config
	Deps
}

func New(cfg config.Config, txRunner db.TxRunner, deps Deps) *Handler {
	return &Handler{
		txRunner: txRunner,
		cfg:      cfg,
		Deps:     deps,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", middleware.IdempotencyKeyHeader},
		ExposedHeaders:   []string{middleware.ReplayedHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		idempotent := r.With(middleware.Idempotency(h.Idempotency))

		r.Put("/profile", h.UpdateProfile)
		r.Get("/users/email/{email}", h.GetUserByEmail)

		idempotent.Post("/checkin", h.CheckIn)
		r.Get("/transactions", h.ListTransactions)
		r.Get("/visits", h.ListVisits)
		r.Get("/activity", h.Activity)

		idempotent.Post("/coins/transfer", h.Transfer)
		r.Get("/coins/balance", h.Balance)
		r.Get("/coins/transactions", h.CoinTransactions)
		r.Get("/coins/self-check", h.SelfCheck)

		r.Get("/address-book", h.ListAddressBook)
		r.Post("/address-book", h.AddAddressBookEntry)
		r.Put("/address-book/{id}", h.UpdateAddressBookEntry)
		r.Delete("/address-book/{id}", h.RemoveAddressBookEntry)

		r.Get("/stores", h.ListStores)
		r.Get("/stores/{id}", h.GetStore)
		r.Get("/stores/{id}/favorite", h.IsFavorite)
		r.Get("/stores/{id}/announcements", h.StoreAnnouncements)
		r.Get("/favorites", h.ListFavorites)
		r.Put("/favorites/{storeId}", h.AddFavorite)
		r.Delete("/favorites/{storeId}", h.RemoveFavorite)
		r.Get("/announcements", h.ListAnnouncements)

		r.Get("/notifications", h.ListNotifications)
		r.Get("/notifications/unread-count", h.UnreadNotifications)
		r.Post("/notifications/read-all", h.MarkAllNotificationsRead)
		r.Post("/notifications/{id}/read", h.MarkNotificationRead)

		r.Get("/nfts", h.ListNfts)
		r.Get("/nfts/mine", h.MyNfts)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.With(middleware.RequireAdmin(h.Admin, "")).Post("/promote", h.PromoteAdmin)
		r.With(middleware.RequireAdmin(h.Admin, "")).Post("/roles/grant", h.GrantRole)
		r.With(middleware.RequireAdmin(h.Admin, "")).Get("/audit", h.ListAuditLogs)
		r.With(middleware.RequireAdmin(h.Admin, "")).Get("/reconcile", h.Reconcile)

		r.With(middleware.RequireAdmin(h.Admin, middleware.RoleManageStores)).Post("/stores", h.CreateStore)
		r.With(middleware.RequireAdmin(h.Admin, middleware.RoleManageStores)).Get("/stores/{id}/code", h.StoreCode)

		r.With(middleware.RequireAdmin(h.Admin, middleware.RoleManageAnnouncements)).Post("/announcements", h.CreateAnnouncement)
		r.With(middleware.RequireAdmin(h.Admin, middleware.RoleManageAnnouncements)).Put("/announcements/{id}", h.UpdateAnnouncement)
		r.With(middleware.RequireAdmin(h.Admin, middleware.RoleManageAnnouncements)).Delete("/announcements/{id}", h.DeleteAnnouncement)

		r.With(middleware.RequireAdmin(h.Admin, middleware.RoleManageNfts)).Post("/nfts", h.CreateNft)
		r.With(middleware.RequireAdmin(h.Admin, middleware.RoleManageNfts)).Post("/nfts/{id}/award", h.AwardNft)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
