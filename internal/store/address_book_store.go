package store

import (
	"context"

	"loyalty/internal/models"
)

type AddressBookStore struct {
	db DB
}

func NewAddressBookStore(db DB) *AddressBookStore {
	return &AddressBookStore{db: db}
}

const addressBookColumns = `id, owner_id, recipient_id, nickname, is_favorite, created_at, updated_at`

func (s *AddressBookStore) Find(ctx context.Context, ownerID, recipientID string) (models.AddressBookEntry, error) {
	var row models.AddressBookEntry
	err := s.db.GetContext(ctx, &row, `
		SELECT `+addressBookColumns+`
		FROM address_book
		WHERE owner_id = $1 AND recipient_id = $2
	`, ownerID, recipientID)
	return row, err
}

// Insert fails with a unique violation when the pair already exists.
func (s *AddressBookStore) Insert(ctx context.Context, e models.AddressBookEntry) (models.AddressBookEntry, error) {
	var row models.AddressBookEntry
	err := s.db.GetContext(ctx, &row, `
		INSERT INTO address_book (id, owner_id, recipient_id, nickname, is_favorite)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+addressBookColumns,
		e.ID, e.OwnerID, e.RecipientID, e.Nickname, e.IsFavorite)
	return row, err
}

// InsertIfAbsent inserts e unless the (owner, recipient) pair exists and
// reports whether a row was written.
func (s *AddressBookStore) InsertIfAbsent(ctx context.Context, e models.AddressBookEntry) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO address_book (id, owner_id, recipient_id, nickname, is_favorite)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id, recipient_id) DO NOTHING
	`, e.ID, e.OwnerID, e.RecipientID, e.Nickname, e.IsFavorite)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

// Update applies the non-nil fields to the entry owned by ownerID. It returns
// sql.ErrNoRows when no such entry exists.
func (s *AddressBookStore) Update(ctx context.Context, id, ownerID string, nickname *string, isFavorite *bool) (models.AddressBookEntry, error) {
	var row models.AddressBookEntry
	err := s.db.GetContext(ctx, &row, `
		UPDATE address_book
		SET nickname = COALESCE($1, nickname),
		    is_favorite = COALESCE($2, is_favorite),
		    updated_at = NOW()
		WHERE id = $3 AND owner_id = $4
		RETURNING `+addressBookColumns,
		nickname, isFavorite, id, ownerID)
	return row, err
}

func (s *AddressBookStore) Delete(ctx context.Context, id, ownerID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM address_book WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *AddressBookStore) ListByOwner(ctx context.Context, ownerID string) ([]models.AddressBookEntry, error) {
	rows := []models.AddressBookEntry{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+addressBookColumns+`
		FROM address_book
		WHERE owner_id = $1
		ORDER BY is_favorite DESC, created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
