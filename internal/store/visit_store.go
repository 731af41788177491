package store

import (
	"context"

	"loyalty/internal/models"
)

type VisitStore struct {
	db DB
}

func NewVisitStore(db DB) *VisitStore {
	return &VisitStore{db: db}
}

func (s *VisitStore) Create(ctx context.Context, tx Execer, v models.Visit) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO visits (id, user_id, store_id, experience_earned, loyalty_earned, coins_earned, gems_earned, level_before, level_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, v.ID, v.UserID, v.StoreID, v.ExperienceEarned, v.LoyaltyEarned, v.CoinsEarned, v.GemsEarned, v.LevelBefore, v.LevelAfter)
	return err
}

func (s *VisitStore) ListByUser(ctx context.Context, userID string, limit int) ([]models.Visit, error) {
	rows := []models.Visit{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, store_id, experience_earned, loyalty_earned, coins_earned, gems_earned,
		       level_before, level_after, created_at
		FROM visits
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, clampLimit(limit, 50, 200))
	if err != nil {
		return nil, err
	}
	return rows, nil
}
