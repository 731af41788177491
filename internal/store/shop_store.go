package store

import (
	"context"

	"loyalty/internal/models"
)

// ShopStore reads and writes the stores table.
type ShopStore struct {
	db DB
}

func NewShopStore(db DB) *ShopStore {
	return &ShopStore{db: db}
}

const shopColumns = `id, name, address, scan_code, experience_per_visit, loyalty_per_visit, coins_per_visit, gems_per_visit, created_at`

func (s *ShopStore) Create(ctx context.Context, tx Execer, shop models.Shop) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO stores (id, name, address, scan_code, experience_per_visit, loyalty_per_visit, coins_per_visit, gems_per_visit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, shop.ID, shop.Name, shop.Address, shop.ScanCode,
		shop.ExperiencePerVisit, shop.LoyaltyPerVisit, shop.CoinsPerVisit, shop.GemsPerVisit)
	return err
}

// CreateIfAbsent inserts shop unless its scan code is already registered.
func (s *ShopStore) CreateIfAbsent(ctx context.Context, shop models.Shop) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO stores (id, name, address, scan_code, experience_per_visit, loyalty_per_visit, coins_per_visit, gems_per_visit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (scan_code) DO NOTHING
	`, shop.ID, shop.Name, shop.Address, shop.ScanCode,
		shop.ExperiencePerVisit, shop.LoyaltyPerVisit, shop.CoinsPerVisit, shop.GemsPerVisit)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

func (s *ShopStore) GetByID(ctx context.Context, id string) (models.Shop, error) {
	var row models.Shop
	err := s.db.GetContext(ctx, &row, `SELECT `+shopColumns+` FROM stores WHERE id = $1`, id)
	return row, err
}

func (s *ShopStore) GetByScanCode(ctx context.Context, code string) (models.Shop, error) {
	var row models.Shop
	err := s.db.GetContext(ctx, &row, `SELECT `+shopColumns+` FROM stores WHERE scan_code = $1`, code)
	return row, err
}

func (s *ShopStore) List(ctx context.Context) ([]models.Shop, error) {
	rows := []models.Shop{}
	err := s.db.SelectContext(ctx, &rows, `SELECT `+shopColumns+` FROM stores ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
