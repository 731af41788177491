package handlers

import (
	"context"
	"time"

	"loyalty/internal/middleware"
	"loyalty/internal/models"
	"loyalty/internal/services"
	"loyalty/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, email, passwordHash string, nickname *string) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
	NicknameTaken(ctx context.Context, nickname, exceptUserID string) (bool, error)
	UpdateProfile(ctx context.Context, userID string, nickname, firstName, lastName *string) (models.User, error)
}

type AccountStore interface {
	Create(ctx context.Context, tx store.Execer, userID string) error
	GetByUser(ctx context.Context, userID string) (models.Account, error)
	CoinSummary(ctx context.Context, userID string) (store.CoinSummary, error)
}

type ShopStore interface {
	Create(ctx context.Context, tx store.Execer, shop models.Shop) error
	GetByID(ctx context.Context, id string) (models.Shop, error)
	List(ctx context.Context) ([]models.Shop, error)
}

type VisitStore interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Visit, error)
}

type TransactionStore interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Transaction, error)
	ListActivity(ctx context.Context, userID string, limit int) ([]models.Activity, error)
}

type CoinTransferStore interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]models.CoinTransfer, error)
}

type FavoriteStore interface {
	Add(ctx context.Context, userID, storeID string) error
	Remove(ctx context.Context, userID, storeID string) error
	IsFavorite(ctx context.Context, userID, storeID string) (bool, error)
	StoreIDs(ctx context.Context, userID string) ([]string, error)
	ListStores(ctx context.Context, userID string) ([]models.Shop, error)
}

type AnnouncementStore interface {
	Create(ctx context.Context, tx store.Execer, a models.Announcement) error
	Update(ctx context.Context, tx store.Getter, id string, patch store.AnnouncementPatch) (models.Announcement, error)
	Delete(ctx context.Context, tx store.Execer, id string) (int64, error)
	ListActive(ctx context.Context, storeIDs []string, now time.Time) ([]models.Announcement, error)
	ListByStore(ctx context.Context, storeID string, now time.Time) ([]models.Announcement, error)
}

type NftStore interface {
	Create(ctx context.Context, tx store.Execer, n models.Nft) error
	GetByID(ctx context.Context, id string) (models.Nft, error)
	ListActive(ctx context.Context) ([]models.Nft, error)
	Award(ctx context.Context, tx store.Execer, id, userID, nftID, reason string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]models.UserNft, error)
}

type AdminStore interface {
	IsAdmin(ctx context.Context, userID string) (bool, bool, error)
	HasRole(ctx context.Context, userID, role string) (bool, error)
	CreateAdmin(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error
	GrantRole(ctx context.Context, tx store.Execer, adminUserID, role string) error
	ListRoles(ctx context.Context, userID string) ([]string, error)
	HasAnyAdmin(ctx context.Context, tx store.Getter) (bool, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID string, data any) error
	List(ctx context.Context, limit, offset int) ([]store.AuditLog, error)
}

type CheckinService interface {
	CheckIn(ctx context.Context, userID, code string) (services.CheckinResult, error)
}

type TransferService interface {
	Transfer(ctx context.Context, req services.TransferRequest) (models.CoinTransfer, error)
}

type BalanceService interface {
	Balance(ctx context.Context, userID string) (services.Balance, error)
}

type AddressBookService interface {
	List(ctx context.Context, ownerID string) ([]models.AddressBookEntry, error)
	Add(ctx context.Context, req services.AddEntryRequest) (models.AddressBookEntry, error)
	Update(ctx context.Context, ownerID, id string, req services.UpdateEntryRequest) (models.AddressBookEntry, error)
	Remove(ctx context.Context, ownerID, id string) error
}

type NotificationService interface {
	List(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// Deps bundles everything the handlers read from or write to. Idempotency
// may be left nil to disable Idempotency-Key handling.
type Deps struct {
	ReconcileDB   store.Selecter
	Users         UserStore
	Accounts      AccountStore
	Shops         ShopStore
	Visits        VisitStore
	Transactions  TransactionStore
	Transfers     CoinTransferStore
	Favorites     FavoriteStore
	Announcements AnnouncementStore
	Nfts          NftStore
	Admin         AdminStore
	Audit         AuditStore

	Checkin       CheckinService
	Coins         TransferService
	Balances      BalanceService
	AddressBook   AddressBookService
	Notifications NotificationService

	Idempotency middleware.IdempotencyStore
}
