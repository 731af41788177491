package store

import (
	"context"

	"loyalty/internal/models"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, email, password_hash, nickname, first_name, last_name, created_at`

func (s *UserStore) Create(ctx context.Context, tx Execer, id, email, passwordHash string, nickname *string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, nickname)
		VALUES ($1, $2, $3, $4)
	`, id, email, passwordHash, nickname)
	return err
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return row, err
}

func (s *UserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return row, err
}

// NicknameTaken reports whether another user already uses nickname.
func (s *UserStore) NicknameTaken(ctx context.Context, nickname, exceptUserID string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(1)
		FROM users
		WHERE nickname = $1 AND id <> $2
	`, nickname, exceptUserID)
	return count > 0, err
}

// UpdateProfile changes only the non-nil fields and returns the stored user.
func (s *UserStore) UpdateProfile(ctx context.Context, userID string, nickname, firstName, lastName *string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `
		UPDATE users
		SET nickname = COALESCE($1, nickname),
		    first_name = COALESCE($2, first_name),
		    last_name = COALESCE($3, last_name),
		    updated_at = NOW()
		WHERE id = $4
		RETURNING `+userColumns, nickname, firstName, lastName, userID)
	return row, err
}
