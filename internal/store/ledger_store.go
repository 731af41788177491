package store

import "context"

// LedgerStore records every coin movement so stored balances can be
// reconciled against the sum of entries.
type LedgerStore struct {
	db DB
}

func NewLedgerStore(db DB) *LedgerStore {
	return &LedgerStore{db: db}
}

type LedgerEntryInput struct {
	ID          string
	ReferenceID string
	UserID      string
	Amount      int64
	Description string
}

func (s *LedgerStore) InsertEntries(ctx context.Context, tx Execer, entries []LedgerEntryInput) error {
	query := `
		INSERT INTO coin_ledger_entries (id, reference_id, user_id, amount, description)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, entry := range entries {
		if _, err := tx.ExecContext(ctx, query, entry.ID, entry.ReferenceID, entry.UserID, entry.Amount, entry.Description); err != nil {
			return err
		}
	}
	return nil
}

