package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"loyalty/internal/db"
	"loyalty/internal/models"
	"loyalty/internal/rewards"
	"loyalty/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(_ context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

// memTxRunner serializes transactions the way row locks would and restores
// the account rows when fn fails. Rows locked through GetForUpdate are
// released when the transaction ends.
type memTxRunner struct {
	mu       sync.Mutex
	accounts *memAccounts
}

func (r *memTxRunner) WithTx(_ context.Context, fn func(*sqlx.Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := r.accounts.snapshot()
	r.accounts.begin()
	defer r.accounts.end()
	if err := fn(nil); err != nil {
		r.accounts.restore(snapshot)
		return err
	}
	return nil
}

type memAccounts struct {
	mu         sync.Mutex
	rows       map[string]models.Account
	lockOrder  []string
	failUpdate map[string]error

	// held is non-nil while a transaction is open.
	held           map[string]bool
	unlockedReads  int
	unlockedWrites int
}

func (m *memAccounts) begin() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held = map[string]bool{}
}

func (m *memAccounts) end() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held = nil
}

// checkHeld counts a write to a row the open transaction has not locked.
func (m *memAccounts) checkHeld(userID string) {
	if m.held != nil && !m.held[userID] {
		m.unlockedWrites++
	}
}

func (m *memAccounts) lockStats() (reads, writes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unlockedReads, m.unlockedWrites
}

func newMemAccounts(rows ...models.Account) *memAccounts {
	m := &memAccounts{rows: map[string]models.Account{}, failUpdate: map[string]error{}}
	for _, row := range rows {
		m.rows[row.UserID] = row
	}
	return m
}

func (m *memAccounts) GetByUser(_ context.Context, userID string) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held != nil {
		m.unlockedReads++
	}
	row, ok := m.rows[userID]
	if !ok {
		return models.Account{}, sql.ErrNoRows
	}
	return row, nil
}

func (m *memAccounts) GetForUpdate(_ context.Context, _ store.Getter, userID string) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lockOrder = append(m.lockOrder, userID)
	if m.held != nil {
		m.held[userID] = true
	}
	row, ok := m.rows[userID]
	if !ok {
		return models.Account{}, sql.ErrNoRows
	}
	return row, nil
}

func (m *memAccounts) Save(_ context.Context, _ store.Execer, userID string, a rewards.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkHeld(userID)
	if err := m.failUpdate[userID]; err != nil {
		return err
	}
	m.rows[userID] = store.FromRewards(userID, rewards.Derive(a))
	return nil
}

func (m *memAccounts) UpdateCoins(_ context.Context, _ store.Execer, userID string, coins int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkHeld(userID)
	if err := m.failUpdate[userID]; err != nil {
		return err
	}
	row := m.rows[userID]
	row.Coins = coins
	m.rows[userID] = row
	return nil
}

func (m *memAccounts) get(userID string) models.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[userID]
}

func (m *memAccounts) snapshot() map[string]models.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]models.Account, len(m.rows))
	for k, v := range m.rows {
		out[k] = v
	}
	return out
}

func (m *memAccounts) restore(rows map[string]models.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = rows
}

type stubShops struct {
	shops map[string]models.Shop
}

func (s stubShops) GetByScanCode(_ context.Context, code string) (models.Shop, error) {
	shop, ok := s.shops[code]
	if !ok {
		return models.Shop{}, sql.ErrNoRows
	}
	return shop, nil
}

type recorder struct {
	mu           sync.Mutex
	visits       []models.Visit
	transactions []models.Transaction
	transfers    []models.CoinTransfer
	ledger       []store.LedgerEntryInput
	audits       []string
}

type recVisits struct{ r *recorder }

func (s recVisits) Create(_ context.Context, _ store.Execer, v models.Visit) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	s.r.visits = append(s.r.visits, v)
	return nil
}

type recTransactions struct{ r *recorder }

func (s recTransactions) Create(_ context.Context, _ store.Execer, t models.Transaction) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	s.r.transactions = append(s.r.transactions, t)
	return nil
}

type recTransfers struct{ r *recorder }

func (s recTransfers) Create(_ context.Context, _ store.Execer, t models.CoinTransfer) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	s.r.transfers = append(s.r.transfers, t)
	return nil
}

type recLedger struct{ r *recorder }

func (s recLedger) InsertEntries(_ context.Context, _ store.Execer, entries []store.LedgerEntryInput) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	s.r.ledger = append(s.r.ledger, entries...)
	return nil
}

type recAudit struct{ r *recorder }

func (s recAudit) Log(_ context.Context, _ store.Execer, _, action, _, _ string, _ any) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	s.r.audits = append(s.r.audits, action)
	return nil
}

type stubUsers struct {
	users map[string]models.User
	err   error
}

func (s stubUsers) GetByID(_ context.Context, userID string) (models.User, error) {
	if s.err != nil {
		return models.User{}, s.err
	}
	user, ok := s.users[userID]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	return user, nil
}

type stubNotifier struct {
	mu       sync.Mutex
	levelUps []int
	received []string
}

func (s *stubNotifier) LevelUp(_ context.Context, _ string, level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levelUps = append(s.levelUps, level)
}

func (s *stubNotifier) CoinsReceived(_ context.Context, userID, fromName string, amount int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, userID+"<-"+fromName)
}

type memCache struct {
	mu      sync.Mutex
	values  map[string][]byte
	claims  map[string]bool
	deleted []string
	err     error
}

func newMemCache() *memCache {
	return &memCache{values: map[string][]byte{}, claims: map[string]bool{}}
}

func (c *memCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	raw, ok := c.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.values, key)
		delete(c.claims, key)
		c.deleted = append(c.deleted, key)
	}
	return c.err
}

func (c *memCache) Claim(_ context.Context, key string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	if c.claims[key] {
		return false, nil
	}
	c.claims[key] = true
	return true, nil
}

type memAddressBook struct {
	mu      sync.Mutex
	entries []models.AddressBookEntry
	clock   time.Time
	err     error
}

func (m *memAddressBook) tick() time.Time {
	if m.clock.IsZero() {
		m.clock = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memAddressBook) Find(_ context.Context, ownerID, recipientID string) (models.AddressBookEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.AddressBookEntry{}, m.err
	}
	for _, e := range m.entries {
		if e.OwnerID == ownerID && e.RecipientID == recipientID {
			return e, nil
		}
	}
	return models.AddressBookEntry{}, sql.ErrNoRows
}

func (m *memAddressBook) Insert(_ context.Context, e models.AddressBookEntry) (models.AddressBookEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.AddressBookEntry{}, m.err
	}
	for _, existing := range m.entries {
		if existing.OwnerID == e.OwnerID && existing.RecipientID == e.RecipientID {
			return models.AddressBookEntry{}, &pq.Error{Code: "23505"}
		}
	}
	now := m.tick()
	e.CreatedAt, e.UpdatedAt = now, now
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *memAddressBook) InsertIfAbsent(ctx context.Context, e models.AddressBookEntry) (bool, error) {
	_, err := m.Insert(ctx, e)
	if db.IsUniqueViolation(err) {
		return false, nil
	}
	return err == nil, err
}

func (m *memAddressBook) Update(_ context.Context, id, ownerID string, nickname *string, isFavorite *bool) (models.AddressBookEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.AddressBookEntry{}, m.err
	}
	for i, e := range m.entries {
		if e.ID != id || e.OwnerID != ownerID {
			continue
		}
		if nickname != nil {
			e.Nickname = *nickname
		}
		if isFavorite != nil {
			e.IsFavorite = *isFavorite
		}
		e.UpdatedAt = m.tick()
		m.entries[i] = e
		return e, nil
	}
	return models.AddressBookEntry{}, sql.ErrNoRows
}

func (m *memAddressBook) Delete(_ context.Context, id, ownerID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	for i, e := range m.entries {
		if e.ID == id && e.OwnerID == ownerID {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memAddressBook) ListByOwner(_ context.Context, ownerID string) ([]models.AddressBookEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	rows := []models.AddressBookEntry{}
	for _, e := range m.entries {
		if e.OwnerID == ownerID {
			rows = append(rows, e)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].IsFavorite != rows[j].IsFavorite {
			return rows[i].IsFavorite
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	return rows, nil
}

func (m *memAddressBook) count(ownerID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.OwnerID == ownerID {
			n++
		}
	}
	return n
}

func stringPtr(value string) *string {
	return &value
}

func boolPtr(value bool) *bool {
	return &value
}
