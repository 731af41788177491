package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"loyalty/internal/cache"
	"loyalty/internal/config"
	"loyalty/internal/db"
	"loyalty/internal/handlers"
	"loyalty/internal/idempotency"
	"loyalty/internal/services"
	"loyalty/internal/store"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg)

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect database")
	}
	defer database.Close()

	balanceCache := connectCache(cfg)

	users := store.NewUserStore(database)
	accounts := store.NewAccountStore(database)
	shops := store.NewShopStore(database)
	visits := store.NewVisitStore(database)
	transactions := store.NewTransactionStore(database)
	transfers := store.NewCoinTransferStore(database)
	ledger := store.NewLedgerStore(database)
	addressBook := store.NewAddressBookStore(database)
	favorites := store.NewFavoriteStore(database)
	announcements := store.NewAnnouncementStore(database)
	notifications := store.NewNotificationStore(database)
	nfts := store.NewNftStore(database)
	admin := store.NewAdminStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)

	notifier := services.NewNotificationService(notifications)
	book := services.NewAddressBookService(addressBook, users)
	checkin := services.NewCheckinService(txRunner, accounts, shops, visits, transactions, ledger, audit, balanceCache, notifier).
		WithReplayWindow(cfg.CheckinReplayWindow)
	coins := services.NewTransferService(txRunner, accounts, transfers, ledger, audit, users, book, balanceCache, notifier)
	balances := services.NewBalanceService(accounts, balanceCache, cfg.BalanceCacheTTL)

	deps := handlers.Deps{
		ReconcileDB:   database,
		Users:         users,
		Accounts:      accounts,
		Shops:         shops,
		Visits:        visits,
		Transactions:  transactions,
		Transfers:     transfers,
		Favorites:     favorites,
		Announcements: announcements,
		Nfts:          nfts,
		Admin:         admin,
		Audit:         audit,
		Checkin:       checkin,
		Coins:         coins,
		Balances:      balances,
		AddressBook:   book,
		Notifications: notifier,
	}
	if keys := openIdempotency(cfg); keys != nil {
		defer keys.Close()
		deps.Idempotency = keys
	}

	handler := handlers.New(cfg, txRunner, deps)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.WithField("addr", server.Addr).Info("loyalty API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server error")
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("shutdown error")
	}
}

func setupLogging(cfg config.Config) {
	if cfg.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// connectCache falls back to a no-op cache when redis is not configured or
// unreachable. Balances are then always read from postgres and the check-in
// replay window is not enforced.
func connectCache(cfg config.Config) cache.Cache {
	if cfg.RedisAddr == "" {
		logrus.Info("REDIS_ADDR not set, caching disabled")
		return cache.Nop{}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logrus.WithError(err).WithField("addr", cfg.RedisAddr).Warn("redis unavailable, caching disabled")
		return cache.Nop{}
	}
	return client
}

func openIdempotency(cfg config.Config) *idempotency.Store {
	if cfg.IdempotencyDBPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.IdempotencyDBPath), 0o755); err != nil {
		logrus.WithError(err).Warn("unable to create idempotency directory, Idempotency-Key disabled")
		return nil
	}
	keys, err := idempotency.Open(cfg.IdempotencyDBPath)
	if err != nil {
		logrus.WithError(err).Warn("unable to open idempotency store, Idempotency-Key disabled")
		return nil
	}
	return keys
}
