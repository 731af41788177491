package store

import (
	"context"

	"loyalty/internal/models"
)

type NftStore struct {
	db DB
}

func NewNftStore(db DB) *NftStore {
	return &NftStore{db: db}
}

const nftColumns = `id, name, description, image_url, rarity, is_active, created_at`

func (s *NftStore) Create(ctx context.Context, tx Execer, n models.Nft) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO nfts (id, name, description, image_url, rarity, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, n.ID, n.Name, n.Description, n.ImageURL, n.Rarity, n.IsActive)
	return err
}

// CreateIfAbsent skips badges whose name is already in the catalog.
func (s *NftStore) CreateIfAbsent(ctx context.Context, n models.Nft) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO nfts (id, name, description, image_url, rarity, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO NOTHING
	`, n.ID, n.Name, n.Description, n.ImageURL, n.Rarity, n.IsActive)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

func (s *NftStore) GetByID(ctx context.Context, id string) (models.Nft, error) {
	var row models.Nft
	err := s.db.GetContext(ctx, &row, `SELECT `+nftColumns+` FROM nfts WHERE id = $1`, id)
	return row, err
}

func (s *NftStore) ListActive(ctx context.Context) ([]models.Nft, error) {
	rows := []models.Nft{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+nftColumns+`
		FROM nfts
		WHERE is_active = TRUE
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Award gives the badge to the user once. It reports false when the user
// already owns it.
func (s *NftStore) Award(ctx context.Context, tx Execer, id, userID, nftID, reason string) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO user_nfts (id, user_id, nft_id, reason)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, nft_id) DO NOTHING
	`, id, userID, nftID, reason)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

func (s *NftStore) ListByUser(ctx context.Context, userID string) ([]models.UserNft, error) {
	rows := []models.UserNft{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT un.id, un.user_id, un.nft_id, un.reason, un.awarded_at, n.name, n.image_url, n.rarity
		FROM user_nfts un
		JOIN nfts n ON n.id = un.nft_id
		WHERE un.user_id = $1
		ORDER BY un.awarded_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
