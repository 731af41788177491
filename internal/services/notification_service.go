package services

import (
	"context"
	"fmt"

	"loyalty/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// NotificationService persists per-user notifications. Writes triggered by
// check-ins and transfers happen after commit and never fail the caller.
type NotificationService struct {
	store NotificationStore
}

func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

func (s *NotificationService) LevelUp(ctx context.Context, userID string, level int) {
	s.write(ctx, models.Notification{
		UserID:  userID,
		Type:    models.NotificationLevelUp,
		Title:   "Level up!",
		Message: fmt.Sprintf("You reached level %d.", level),
	})
}

func (s *NotificationService) CoinsReceived(ctx context.Context, userID, fromName string, amount int64) {
	s.write(ctx, models.Notification{
		UserID:  userID,
		Type:    models.NotificationCoinsReceived,
		Title:   "Coins received",
		Message: fmt.Sprintf("%s sent you %d coins.", fromName, amount),
	})
}

func (s *NotificationService) write(ctx context.Context, n models.Notification) {
	n.ID = uuid.NewString()
	if err := s.store.Create(ctx, n); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": n.UserID,
			"type":    n.Type,
		}).Warn("notification write failed")
	}
}

func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	return s.store.ListByUser(ctx, userID, limit)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.store.UnreadCount(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	rows, err := s.store.MarkRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.store.MarkAllRead(ctx, userID)
}
