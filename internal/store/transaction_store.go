package store

import (
	"context"

	"loyalty/internal/models"
)

// TransactionStore holds reward transactions. Coin transfers live in
// CoinTransferStore.
type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) Create(ctx context.Context, tx Execer, t models.Transaction) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, store_id, type, description, experience_earned, loyalty_earned, coins_earned, gems_earned)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, t.ID, t.UserID, t.StoreID, t.Type, t.Description,
		t.ExperienceEarned, t.LoyaltyEarned, t.CoinsEarned, t.GemsEarned)
	return err
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	rows := []models.Transaction{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, store_id, type, description, experience_earned, loyalty_earned,
		       coins_earned, gems_earned, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, clampLimit(limit, 50, 200))
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListActivity returns the newest reward transactions with their store name.
func (s *TransactionStore) ListActivity(ctx context.Context, userID string, limit int) ([]models.Activity, error) {
	rows := []models.Activity{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT t.id, t.user_id, t.store_id, t.type, t.description, t.experience_earned, t.loyalty_earned,
		       t.coins_earned, t.gems_earned, t.created_at, s.name AS store_name
		FROM transactions t
		LEFT JOIN stores s ON s.id = t.store_id
		WHERE t.user_id = $1
		ORDER BY t.created_at DESC
		LIMIT $2
	`, userID, clampLimit(limit, 20, 100))
	if err != nil {
		return nil, err
	}
	return rows, nil
}
