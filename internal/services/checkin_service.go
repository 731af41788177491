package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"loyalty/internal/cache"
	"loyalty/internal/db"
	"loyalty/internal/models"
	"loyalty/internal/rewards"
	"loyalty/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type CheckinService struct {
	txRunner     db.TxRunner
	accounts     AccountStore
	shops        ShopLookup
	visits       VisitStore
	transactions TransactionStore
	ledger       LedgerStore
	audit        AuditStore
	cache        cache.Cache
	notifier     Notifier
	replayWindow time.Duration
}

type CheckinResult struct {
	Visit          models.Visit       `json:"visit"`
	Transaction    models.Transaction `json:"transaction"`
	UpdatedAccount models.Account     `json:"updatedAccount"`
	Rewards        rewards.Reward     `json:"rewards"`
	LeveledUp      bool               `json:"leveledUp"`
	LevelBefore    int                `json:"levelBefore"`
	LevelAfter     int                `json:"levelAfter"`
	StoreName      string             `json:"storeName"`
}

func NewCheckinService(txRunner db.TxRunner, accounts AccountStore, shops ShopLookup, visits VisitStore, transactions TransactionStore, ledger LedgerStore, audit AuditStore, c cache.Cache, notifier Notifier) *CheckinService {
	return &CheckinService{
		txRunner:     txRunner,
		accounts:     accounts,
		shops:        shops,
		visits:       visits,
		transactions: transactions,
		ledger:       ledger,
		audit:        audit,
		cache:        c,
		notifier:     notifier,
	}
}

// WithReplayWindow rejects a second scan of the same store by the same user
// inside window. Zero disables the check.
func (s *CheckinService) WithReplayWindow(window time.Duration) *CheckinService {
	s.replayWindow = window
	return s
}

// CheckIn resolves code to a store and grants that store's per-visit reward.
// Repeated scans grant repeatedly unless a replay window is set.
func (s *CheckinService) CheckIn(ctx context.Context, userID, code string) (CheckinResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return CheckinResult{}, ErrInvalidCode
	}
	shop, err := s.shops.GetByScanCode(ctx, code)
	if errors.Is(err, sql.ErrNoRows) {
		return CheckinResult{}, ErrInvalidCode
	}
	if err != nil {
		return CheckinResult{}, err
	}

	claimKey := ""
	if s.replayWindow > 0 {
		key := cache.CheckinKey(userID, shop.ID)
		claimed, err := s.cache.Claim(ctx, key, s.replayWindow)
		switch {
		case err != nil:
			logrus.WithError(err).WithField("user_id", userID).Warn("checkin replay claim failed")
		case !claimed:
			return CheckinResult{}, ErrCheckinTooSoon
		default:
			claimKey = key
		}
	}

	reward := rewards.Reward{
		Experience: shop.ExperiencePerVisit,
		Loyalty:    shop.LoyaltyPerVisit,
		Coins:      shop.CoinsPerVisit,
		Gems:       shop.GemsPerVisit,
	}
	var result CheckinResult
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		row, err := s.accounts.GetForUpdate(ctx, tx, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAccountNotFound
		}
		if err != nil {
			return err
		}
		current := store.ToRewards(row)
		updated, leveledUp := rewards.Apply(current, reward)
		if err := s.accounts.Save(ctx, tx, userID, updated); err != nil {
			return err
		}

		now := time.Now().UTC()
		visit := models.Visit{
			ID:               uuid.NewString(),
			UserID:           userID,
			StoreID:          shop.ID,
			ExperienceEarned: reward.Experience,
			LoyaltyEarned:    reward.Loyalty,
			CoinsEarned:      reward.Coins,
			GemsEarned:       reward.Gems,
			LevelBefore:      current.Level,
			LevelAfter:       updated.Level,
			CreatedAt:        now,
		}
		if err := s.visits.Create(ctx, tx, visit); err != nil {
			return err
		}
		storeID := shop.ID
		transaction := models.Transaction{
			ID:               uuid.NewString(),
			UserID:           userID,
			StoreID:          &storeID,
			Type:             models.TransactionCheckin,
			Description:      "Check-in at " + shop.Name,
			ExperienceEarned: reward.Experience,
			LoyaltyEarned:    reward.Loyalty,
			CoinsEarned:      reward.Coins,
			GemsEarned:       reward.Gems,
			CreatedAt:        now,
		}
		if err := s.transactions.Create(ctx, tx, transaction); err != nil {
			return err
		}
		if reward.Coins > 0 {
			if err := s.ledger.InsertEntries(ctx, tx, []store.LedgerEntryInput{{
				ID:          uuid.NewString(),
				ReferenceID: transaction.ID,
				UserID:      userID,
				Amount:      reward.Coins,
				Description: "Check-in reward",
			}}); err != nil {
				return err
			}
		}
		if err := s.audit.Log(ctx, tx, userID, "checkin", "visit", visit.ID, map[string]any{
			"store_id":   shop.ID,
			"reward":     reward,
			"level_from": current.Level,
			"level_to":   updated.Level,
		}); err != nil {
			return err
		}

		account := store.FromRewards(userID, updated)
		account.UpdatedAt = now
		result = CheckinResult{
			Visit:          visit,
			Transaction:    transaction,
			UpdatedAccount: account,
			Rewards:        reward,
			LeveledUp:      leveledUp,
			LevelBefore:    current.Level,
			LevelAfter:     updated.Level,
			StoreName:      shop.Name,
		}
		return nil
	})
	if err != nil {
		if claimKey != "" {
			if delErr := s.cache.Delete(ctx, claimKey); delErr != nil {
				logrus.WithError(delErr).WithField("user_id", userID).Warn("checkin replay claim release failed")
			}
		}
		return CheckinResult{}, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"store_id":   shop.ID,
		"experience": reward.Experience,
		"loyalty":    reward.Loyalty,
		"coins":      reward.Coins,
		"gems":       reward.Gems,
		"level":      result.LevelAfter,
	}).Info("checkin granted")

	if err := s.cache.Delete(ctx, cache.BalanceKey(userID)); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("balance cache invalidation failed")
	}
	if result.LeveledUp {
		s.notifier.LevelUp(ctx, userID, result.LevelAfter)
	}
	return result, nil
}
