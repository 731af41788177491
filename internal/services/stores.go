package services

import (
	"context"

	"loyalty/internal/models"
	"loyalty/internal/rewards"
	"loyalty/internal/store"
)

type AccountStore interface {
	GetByUser(ctx context.Context, userID string) (models.Account, error)
	GetForUpdate(ctx context.Context, tx store.Getter, userID string) (models.Account, error)
	Save(ctx context.Context, tx store.Execer, userID string, a rewards.Account) error
	UpdateCoins(ctx context.Context, tx store.Execer, userID string, coins int64) error
}

type ShopLookup interface {
	GetByScanCode(ctx context.Context, code string) (models.Shop, error)
}

type VisitStore interface {
	Create(ctx context.Context, tx store.Execer, v models.Visit) error
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, t models.Transaction) error
}

type CoinTransferStore interface {
	Create(ctx context.Context, tx store.Execer, t models.CoinTransfer) error
}

type LedgerStore interface {
	InsertEntries(ctx context.Context, tx store.Execer, entries []store.LedgerEntryInput) error
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID string, data any) error
}

type UserLookup interface {
	GetByID(ctx context.Context, userID string) (models.User, error)
}

type AddressBookStore interface {
	Find(ctx context.Context, ownerID, recipientID string) (models.AddressBookEntry, error)
	Insert(ctx context.Context, e models.AddressBookEntry) (models.AddressBookEntry, error)
	InsertIfAbsent(ctx context.Context, e models.AddressBookEntry) (bool, error)
	Update(ctx context.Context, id, ownerID string, nickname *string, isFavorite *bool) (models.AddressBookEntry, error)
	Delete(ctx context.Context, id, ownerID string) (int64, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.AddressBookEntry, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n models.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) (int64, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// Notifier receives best-effort events after a commit.
type Notifier interface {
	LevelUp(ctx context.Context, userID string, level int)
	CoinsReceived(ctx context.Context, userID, fromName string, amount int64)
}
