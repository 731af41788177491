package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"loyalty/internal/cache"
	"loyalty/internal/rewards"

	"github.com/sirupsen/logrus"
)

type Balance struct {
	Coins         int64  `json:"coins"`
	Experience    int64  `json:"experience"`
	Loyalty       int64  `json:"loyalty"`
	Gems          int64  `json:"gems"`
	Level         int    `json:"level"`
	Rank          string `json:"rank"`
	LevelProgress string `json:"levelProgress"`
}

type BalanceService struct {
	accounts AccountStore
	cache    cache.Cache
	ttl      time.Duration
}

func NewBalanceService(accounts AccountStore, c cache.Cache, ttl time.Duration) *BalanceService {
	return &BalanceService{accounts: accounts, cache: c, ttl: ttl}
}

// Balance reads through the cache. Cache errors fall back to the database.
func (s *BalanceService) Balance(ctx context.Context, userID string) (Balance, error) {
	key := cache.BalanceKey(userID)
	var cached Balance
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("balance cache read failed")
	}
	if hit && err == nil {
		return cached, nil
	}

	account, err := s.accounts.GetByUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Balance{}, ErrAccountNotFound
	}
	if err != nil {
		return Balance{}, err
	}
	balance := Balance{
		Coins:         account.Coins,
		Experience:    account.Experience,
		Loyalty:       account.Loyalty,
		Gems:          account.Gems,
		Level:         account.Level,
		Rank:          account.Rank,
		LevelProgress: rewards.Progress(account.Experience),
	}
	if s.ttl > 0 {
		if err := s.cache.Set(ctx, key, balance, s.ttl); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("balance cache write failed")
		}
	}
	return balance, nil
}
