package store

import (
	"context"

	"loyalty/internal/models"
)

type NotificationStore struct {
	db DB
}

func NewNotificationStore(db DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) Create(ctx context.Context, n models.Notification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message)
		VALUES ($1, $2, $3, $4, $5)
	`, n.ID, n.UserID, n.Type, n.Title, n.Message)
	return err
}

func (s *NotificationStore) ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	rows := []models.Notification{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, type, title, message, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, clampLimit(limit, 20, 100))
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *NotificationStore) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(1) FROM notifications WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	return count, err
}

func (s *NotificationStore) MarkRead(ctx context.Context, id, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
