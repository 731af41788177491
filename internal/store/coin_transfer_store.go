package store

import (
	"context"

	"loyalty/internal/models"
)

type CoinTransferStore struct {
	db DB
}

func NewCoinTransferStore(db DB) *CoinTransferStore {
	return &CoinTransferStore{db: db}
}

func (s *CoinTransferStore) Create(ctx context.Context, tx Execer, t models.CoinTransfer) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO coin_transfers (id, from_user_id, to_user_id, amount, message, status, type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, t.ID, t.FromUserID, t.ToUserID, t.Amount, t.Message, t.Status, t.Type)
	return err
}

// ListByUser returns transfers the user sent or received, newest first.
func (s *CoinTransferStore) ListByUser(ctx context.Context, userID string, limit int) ([]models.CoinTransfer, error) {
	rows := []models.CoinTransfer{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, from_user_id, to_user_id, amount, message, status, type, created_at
		FROM coin_transfers
		WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, clampLimit(limit, 50, 200))
	if err != nil {
		return nil, err
	}
	return rows, nil
}
