package store

import (
	"context"

	"loyalty/internal/models"
)

type FavoriteStore struct {
	db DB
}

func NewFavoriteStore(db DB) *FavoriteStore {
	return &FavoriteStore{db: db}
}

// Add is a no-op when the store is already a favorite.
func (s *FavoriteStore) Add(ctx context.Context, userID, storeID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO favorite_stores (user_id, store_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, userID, storeID)
	return err
}

func (s *FavoriteStore) Remove(ctx context.Context, userID, storeID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM favorite_stores WHERE user_id = $1 AND store_id = $2`, userID, storeID)
	return err
}

func (s *FavoriteStore) IsFavorite(ctx context.Context, userID, storeID string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(1) FROM favorite_stores WHERE user_id = $1 AND store_id = $2
	`, userID, storeID)
	return count > 0, err
}

func (s *FavoriteStore) StoreIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := s.db.SelectContext(ctx, &ids, `SELECT store_id FROM favorite_stores WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *FavoriteStore) ListStores(ctx context.Context, userID string) ([]models.Shop, error) {
	rows := []models.Shop{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT s.id, s.name, s.address, s.scan_code, s.experience_per_visit, s.loyalty_per_visit,
		       s.coins_per_visit, s.gems_per_visit, s.created_at
		FROM favorite_stores f
		JOIN stores s ON s.id = f.store_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
