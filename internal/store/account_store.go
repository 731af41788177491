package store

import (
	"context"

	"loyalty/internal/models"
	"loyalty/internal/rewards"
)

type AccountStore struct {
	db DB
}

// CoinSummary compares the stored coin balance with the coin ledger.
type CoinSummary struct {
	UserID      string `db:"user_id" json:"userId"`
	StoredCoins int64  `db:"stored_coins" json:"storedCoins"`
	LedgerCoins int64  `db:"ledger_coins" json:"ledgerCoins"`
	Difference  int64  `db:"difference" json:"difference"`
}

func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Create(ctx context.Context, tx Execer, userID string) error {
	fresh := rewards.New()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (user_id, experience, loyalty, coins, gems, level, rank)
		VALUES ($1, 0, 0, 0, 0, $2, $3)
	`, userID, fresh.Level, string(fresh.Rank))
	return err
}

func (s *AccountStore) GetByUser(ctx context.Context, userID string) (models.Account, error) {
	var row models.Account
	err := s.db.GetContext(ctx, &row, `
		SELECT user_id, experience, loyalty, coins, gems, level, rank, updated_at
		FROM accounts
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return models.Account{}, err
	}
	return row, nil
}

func (s *AccountStore) GetForUpdate(ctx context.Context, tx Getter, userID string) (models.Account, error) {
	var row models.Account
	err := tx.GetContext(ctx, &row, `
		SELECT user_id, experience, loyalty, coins, gems, level, rank, updated_at
		FROM accounts
		WHERE user_id = $1
		FOR UPDATE
	`, userID)
	if err != nil {
		return models.Account{}, err
	}
	return row, nil
}

// Save writes the totals of a and the level and rank derived from them.
// Level and rank supplied by the caller are ignored.
func (s *AccountStore) Save(ctx context.Context, tx Execer, userID string, a rewards.Account) error {
	a = rewards.Derive(a)
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET experience = $1, loyalty = $2, coins = $3, gems = $4, level = $5, rank = $6, updated_at = NOW()
		WHERE user_id = $7
	`, a.Experience, a.Loyalty, a.Coins, a.Gems, a.Level, string(a.Rank), userID)
	return err
}

func (s *AccountStore) UpdateCoins(ctx context.Context, tx Execer, userID string, coins int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET coins = $1, updated_at = NOW()
		WHERE user_id = $2
	`, coins, userID)
	return err
}

func (s *AccountStore) CoinSummary(ctx context.Context, userID string) (CoinSummary, error) {
	var row CoinSummary
	err := s.db.GetContext(ctx, &row, `
		SELECT a.user_id,
		       a.coins AS stored_coins,
		       COALESCE(SUM(l.amount), 0) AS ledger_coins,
		       (a.coins - COALESCE(SUM(l.amount), 0)) AS difference
		FROM accounts a
		LEFT JOIN coin_ledger_entries l ON l.user_id = a.user_id
		WHERE a.user_id = $1
		GROUP BY a.user_id, a.coins
	`, userID)
	if err != nil {
		return CoinSummary{}, err
	}
	return row, nil
}

// ToRewards converts a stored row into the engine's view of the account.
func ToRewards(a models.Account) rewards.Account {
	return rewards.Account{
		Experience: a.Experience,
		Loyalty:    a.Loyalty,
		Coins:      a.Coins,
		Gems:       a.Gems,
		Level:      a.Level,
		Rank:       rewards.Rank(a.Rank),
	}
}

func FromRewards(userID string, a rewards.Account) models.Account {
	return models.Account{
		UserID:     userID,
		Experience: a.Experience,
		Loyalty:    a.Loyalty,
		Coins:      a.Coins,
		Gems:       a.Gems,
		Level:      a.Level,
		Rank:       string(a.Rank),
	}
}
