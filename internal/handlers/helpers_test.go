package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"loyalty/internal/auth"
	"loyalty/internal/config"
	"loyalty/internal/models"
	"loyalty/internal/services"
	"loyalty/internal/store"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubReconcileDB struct {
	selectFn func(ctx context.Context, dest any, query string, args ...any) error
}

func (s stubReconcileDB) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	if s.selectFn == nil {
		return nil
	}
	return s.selectFn(ctx, dest, query, args...)
}

type stubUserStore struct {
	createFn        func(ctx context.Context, tx store.Execer, id, email, passwordHash string, nickname *string) error
	getByEmailFn    func(ctx context.Context, email string) (models.User, error)
	getByIDFn       func(ctx context.Context, userID string) (models.User, error)
	nicknameTakenFn func(ctx context.Context, nickname, exceptUserID string) (bool, error)
	updateFn        func(ctx context.Context, userID string, nickname, firstName, lastName *string) (models.User, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, email, passwordHash string, nickname *string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, email, passwordHash, nickname)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.getByEmailFn == nil {
		return models.User{}, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{ID: userID}, nil
	}
	return s.getByIDFn(ctx, userID)
}

func (s stubUserStore) NicknameTaken(ctx context.Context, nickname, exceptUserID string) (bool, error) {
	if s.nicknameTakenFn == nil {
		return false, nil
	}
	return s.nicknameTakenFn(ctx, nickname, exceptUserID)
}

func (s stubUserStore) UpdateProfile(ctx context.Context, userID string, nickname, firstName, lastName *string) (models.User, error) {
	if s.updateFn == nil {
		return models.User{ID: userID, Nickname: nickname, FirstName: firstName, LastName: lastName}, nil
	}
	return s.updateFn(ctx, userID, nickname, firstName, lastName)
}

type stubAccountStore struct {
	createFn      func(ctx context.Context, tx store.Execer, userID string) error
	getByUserFn   func(ctx context.Context, userID string) (models.Account, error)
	coinSummaryFn func(ctx context.Context, userID string) (store.CoinSummary, error)
}

func (s stubAccountStore) Create(ctx context.Context, tx store.Execer, userID string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, userID)
}

func (s stubAccountStore) GetByUser(ctx context.Context, userID string) (models.Account, error) {
	if s.getByUserFn == nil {
		return models.Account{UserID: userID, Level: 1, Rank: "Bronze"}, nil
	}
	return s.getByUserFn(ctx, userID)
}

func (s stubAccountStore) CoinSummary(ctx context.Context, userID string) (store.CoinSummary, error) {
	if s.coinSummaryFn == nil {
		return store.CoinSummary{UserID: userID}, nil
	}
	return s.coinSummaryFn(ctx, userID)
}

type stubShopStore struct {
	createFn  func(ctx context.Context, tx store.Execer, shop models.Shop) error
	getByIDFn func(ctx context.Context, id string) (models.Shop, error)
	listFn    func(ctx context.Context) ([]models.Shop, error)
}

func (s stubShopStore) Create(ctx context.Context, tx store.Execer, shop models.Shop) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, shop)
}

func (s stubShopStore) GetByID(ctx context.Context, id string) (models.Shop, error) {
	if s.getByIDFn == nil {
		return models.Shop{ID: id}, nil
	}
	return s.getByIDFn(ctx, id)
}

func (s stubShopStore) List(ctx context.Context) ([]models.Shop, error) {
	if s.listFn == nil {
		return []models.Shop{}, nil
	}
	return s.listFn(ctx)
}

type stubVisitStore struct{}

func (stubVisitStore) ListByUser(context.Context, string, int) ([]models.Visit, error) {
	return []models.Visit{}, nil
}

type stubTransactionStore struct {
	listByUserFn   func(ctx context.Context, userID string, limit int) ([]models.Transaction, error)
	listActivityFn func(ctx context.Context, userID string, limit int) ([]models.Activity, error)
}

func (s stubTransactionStore) ListByUser(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	if s.listByUserFn == nil {
		return []models.Transaction{}, nil
	}
	return s.listByUserFn(ctx, userID, limit)
}

func (s stubTransactionStore) ListActivity(ctx context.Context, userID string, limit int) ([]models.Activity, error) {
	if s.listActivityFn == nil {
		return []models.Activity{}, nil
	}
	return s.listActivityFn(ctx, userID, limit)
}

type stubCoinTransferStore struct {
	listByUserFn func(ctx context.Context, userID string, limit int) ([]models.CoinTransfer, error)
}

func (s stubCoinTransferStore) ListByUser(ctx context.Context, userID string, limit int) ([]models.CoinTransfer, error) {
	if s.listByUserFn == nil {
		return []models.CoinTransfer{}, nil
	}
	return s.listByUserFn(ctx, userID, limit)
}

type stubFavoriteStore struct {
	addFn      func(ctx context.Context, userID, storeID string) error
	storeIDsFn func(ctx context.Context, userID string) ([]string, error)
}

func (s stubFavoriteStore) Add(ctx context.Context, userID, storeID string) error {
	if s.addFn == nil {
		return nil
	}
	return s.addFn(ctx, userID, storeID)
}

func (s stubFavoriteStore) Remove(context.Context, string, string) error {
	return nil
}

func (s stubFavoriteStore) IsFavorite(context.Context, string, string) (bool, error) {
	return false, nil
}

func (s stubFavoriteStore) StoreIDs(ctx context.Context, userID string) ([]string, error) {
	if s.storeIDsFn == nil {
		return []string{}, nil
	}
	return s.storeIDsFn(ctx, userID)
}

func (s stubFavoriteStore) ListStores(context.Context, string) ([]models.Shop, error) {
	return []models.Shop{}, nil
}

type stubAnnouncementStore struct {
	createFn     func(ctx context.Context, tx store.Execer, a models.Announcement) error
	updateFn     func(ctx context.Context, tx store.Getter, id string, patch store.AnnouncementPatch) (models.Announcement, error)
	deleteFn     func(ctx context.Context, tx store.Execer, id string) (int64, error)
	listActiveFn func(ctx context.Context, storeIDs []string, now time.Time) ([]models.Announcement, error)
}

func (s stubAnnouncementStore) Create(ctx context.Context, tx store.Execer, a models.Announcement) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, a)
}

func (s stubAnnouncementStore) Update(ctx context.Context, tx store.Getter, id string, patch store.AnnouncementPatch) (models.Announcement, error) {
	if s.updateFn == nil {
		return models.Announcement{ID: id}, nil
	}
	return s.updateFn(ctx, tx, id, patch)
}

func (s stubAnnouncementStore) Delete(ctx context.Context, tx store.Execer, id string) (int64, error) {
	if s.deleteFn == nil {
		return 1, nil
	}
	return s.deleteFn(ctx, tx, id)
}

func (s stubAnnouncementStore) ListActive(ctx context.Context, storeIDs []string, now time.Time) ([]models.Announcement, error) {
	if s.listActiveFn == nil {
		return []models.Announcement{}, nil
	}
	return s.listActiveFn(ctx, storeIDs, now)
}

func (s stubAnnouncementStore) ListByStore(context.Context, string, time.Time) ([]models.Announcement, error) {
	return []models.Announcement{}, nil
}

type stubNftStore struct {
	getByIDFn func(ctx context.Context, id string) (models.Nft, error)
	awardFn   func(ctx context.Context, tx store.Execer, id, userID, nftID, reason string) (bool, error)
}

func (s stubNftStore) Create(context.Context, store.Execer, models.Nft) error {
	return nil
}

func (s stubNftStore) GetByID(ctx context.Context, id string) (models.Nft, error) {
	if s.getByIDFn == nil {
		return models.Nft{ID: id}, nil
	}
	return s.getByIDFn(ctx, id)
}

func (s stubNftStore) ListActive(context.Context) ([]models.Nft, error) {
	return []models.Nft{}, nil
}

func (s stubNftStore) Award(ctx context.Context, tx store.Execer, id, userID, nftID, reason string) (bool, error) {
	if s.awardFn == nil {
		return true, nil
	}
	return s.awardFn(ctx, tx, id, userID, nftID, reason)
}

func (s stubNftStore) ListByUser(context.Context, string) ([]models.UserNft, error) {
	return []models.UserNft{}, nil
}

type stubAdminStore struct {
	isAdminFn     func(ctx context.Context, userID string) (bool, bool, error)
	hasRoleFn     func(ctx context.Context, userID, role string) (bool, error)
	createAdminFn func(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error
	grantRoleFn   func(ctx context.Context, tx store.Execer, adminUserID, role string) error
	hasAnyAdminFn func(ctx context.Context, tx store.Getter) (bool, error)
}

func (s stubAdminStore) IsAdmin(ctx context.Context, userID string) (bool, bool, error) {
	if s.isAdminFn == nil {
		return false, false, nil
	}
	return s.isAdminFn(ctx, userID)
}

func (s stubAdminStore) HasRole(ctx context.Context, userID, role string) (bool, error) {
	if s.hasRoleFn == nil {
		return false, nil
	}
	return s.hasRoleFn(ctx, userID, role)
}

func (s stubAdminStore) CreateAdmin(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error {
	if s.createAdminFn == nil {
		return nil
	}
	return s.createAdminFn(ctx, tx, userID, isSuper, createdBy)
}

func (s stubAdminStore) GrantRole(ctx context.Context, tx store.Execer, adminUserID, role string) error {
	if s.grantRoleFn == nil {
		return nil
	}
	return s.grantRoleFn(ctx, tx, adminUserID, role)
}

func (s stubAdminStore) ListRoles(context.Context, string) ([]string, error) {
	return []string{}, nil
}

func (s stubAdminStore) HasAnyAdmin(ctx context.Context, tx store.Getter) (bool, error) {
	if s.hasAnyAdminFn == nil {
		return true, nil
	}
	return s.hasAnyAdminFn(ctx, tx)
}

type stubAuditStore struct {
	logFn func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID string, data any) error
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID string, data any) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

func (s stubAuditStore) List(context.Context, int, int) ([]store.AuditLog, error) {
	return []store.AuditLog{}, nil
}

type stubCheckin struct {
	checkInFn func(ctx context.Context, userID, code string) (services.CheckinResult, error)
}

func (s stubCheckin) CheckIn(ctx context.Context, userID, code string) (services.CheckinResult, error) {
	if s.checkInFn == nil {
		return services.CheckinResult{}, nil
	}
	return s.checkInFn(ctx, userID, code)
}

type stubTransfer struct {
	transferFn func(ctx context.Context, req services.TransferRequest) (models.CoinTransfer, error)
}

func (s stubTransfer) Transfer(ctx context.Context, req services.TransferRequest) (models.CoinTransfer, error) {
	if s.transferFn == nil {
		return models.CoinTransfer{}, nil
	}
	return s.transferFn(ctx, req)
}

type stubBalance struct {
	balanceFn func(ctx context.Context, userID string) (services.Balance, error)
}

func (s stubBalance) Balance(ctx context.Context, userID string) (services.Balance, error) {
	if s.balanceFn == nil {
		return services.Balance{}, nil
	}
	return s.balanceFn(ctx, userID)
}

type stubAddressBook struct {
	listFn   func(ctx context.Context, ownerID string) ([]models.AddressBookEntry, error)
	addFn    func(ctx context.Context, req services.AddEntryRequest) (models.AddressBookEntry, error)
	updateFn func(ctx context.Context, ownerID, id string, req services.UpdateEntryRequest) (models.AddressBookEntry, error)
	removeFn func(ctx context.Context, ownerID, id string) error
}

func (s stubAddressBook) List(ctx context.Context, ownerID string) ([]models.AddressBookEntry, error) {
	if s.listFn == nil {
		return []models.AddressBookEntry{}, nil
	}
	return s.listFn(ctx, ownerID)
}

func (s stubAddressBook) Add(ctx context.Context, req services.AddEntryRequest) (models.AddressBookEntry, error) {
	if s.addFn == nil {
		return models.AddressBookEntry{}, nil
	}
	return s.addFn(ctx, req)
}

func (s stubAddressBook) Update(ctx context.Context, ownerID, id string, req services.UpdateEntryRequest) (models.AddressBookEntry, error) {
	if s.updateFn == nil {
		return models.AddressBookEntry{}, nil
	}
	return s.updateFn(ctx, ownerID, id, req)
}

func (s stubAddressBook) Remove(ctx context.Context, ownerID, id string) error {
	if s.removeFn == nil {
		return nil
	}
	return s.removeFn(ctx, ownerID, id)
}

type stubNotifications struct {
	listFn     func(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	markReadFn func(ctx context.Context, userID, id string) error
}

func (s stubNotifications) List(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	if s.listFn == nil {
		return []models.Notification{}, nil
	}
	return s.listFn(ctx, userID, limit)
}

func (s stubNotifications) UnreadCount(context.Context, string) (int, error) {
	return 0, nil
}

func (s stubNotifications) MarkRead(ctx context.Context, userID, id string) error {
	if s.markReadFn == nil {
		return nil
	}
	return s.markReadFn(ctx, userID, id)
}

func (s stubNotifications) MarkAllRead(context.Context, string) (int64, error) {
	return 0, nil
}

func testDeps() Deps {
	return Deps{
		ReconcileDB:   stubReconcileDB{},
		Users:         stubUserStore{},
		Accounts:      stubAccountStore{},
		Shops:         stubShopStore{},
		Visits:        stubVisitStore{},
		Transactions:  stubTransactionStore{},
		Transfers:     stubCoinTransferStore{},
		Favorites:     stubFavoriteStore{},
		Announcements: stubAnnouncementStore{},
		Nfts:          stubNftStore{},
		Admin:         stubAdminStore{},
		Audit:         stubAuditStore{},
		Checkin:       stubCheckin{},
		Coins:         stubTransfer{},
		Balances:      stubBalance{},
		AddressBook:   stubAddressBook{},
		Notifications: stubNotifications{},
	}
}

func newTestHandler(txRunner fakeTxRunner, deps Deps) *Handler {
	cfg := config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
	return New(cfg, txRunner, deps)
}

// serve sends a request through the full router. An empty userID sends no
// token.
func serve(t *testing.T, h *Handler, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return serveWithHeaders(t, h, method, path, userID, body, nil)
}

func serveWithHeaders(t *testing.T, h *Handler, method, path, userID string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if userID != "" {
		token, err := auth.GenerateToken("secret", userID, time.Minute)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.Routes().ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var payload map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return payload["error"]
}

func stringPtr(value string) *string {
	return &value
}
