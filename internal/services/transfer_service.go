package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"loyalty/internal/cache"
	"loyalty/internal/db"
	"loyalty/internal/models"
	"loyalty/internal/store"
	"loyalty/internal/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type TransferService struct {
	txRunner    db.TxRunner
	accounts    AccountStore
	transfers   CoinTransferStore
	ledger      LedgerStore
	audit       AuditStore
	users       UserLookup
	addressBook AddressBookUpserter
	cache       cache.Cache
	notifier    Notifier
}

type AddressBookUpserter interface {
	UpsertOnFirstTransfer(ctx context.Context, ownerID, recipientID string) (bool, error)
}

type TransferRequest struct {
	FromUserID string
	ToUserID   string
	Amount     int64
	Message    *string
}

func NewTransferService(txRunner db.TxRunner, accounts AccountStore, transfers CoinTransferStore, ledger LedgerStore, audit AuditStore, users UserLookup, addressBook AddressBookUpserter, c cache.Cache, notifier Notifier) *TransferService {
	return &TransferService{
		txRunner:    txRunner,
		accounts:    accounts,
		transfers:   transfers,
		ledger:      ledger,
		audit:       audit,
		users:       users,
		addressBook: addressBook,
		cache:       c,
		notifier:    notifier,
	}
}

// Transfer moves coins between two users atomically. Once the debit and
// credit commit, the recipient is added to the sender's address book if
// absent; a failure there is logged and does not fail the transfer.
func (s *TransferService) Transfer(ctx context.Context, req TransferRequest) (models.CoinTransfer, error) {
	if req.Amount <= 0 {
		return models.CoinTransfer{}, ErrInvalidAmount
	}
	var message *string
	if req.Message != nil {
		trimmed := strings.TrimSpace(*req.Message)
		if err := validator.ValidateMessage(trimmed); err != nil {
			return models.CoinTransfer{}, ErrMessageTooLong
		}
		if trimmed != "" {
			message = &trimmed
		}
	}

	var transfer models.CoinTransfer
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		locked, err := lockAccounts(ctx, tx, s.accounts, req.FromUserID, req.ToUserID)
		if err != nil {
			return err
		}
		sender, ok := locked[req.FromUserID]
		if !ok || sender.Coins < req.Amount {
			return ErrInsufficientFunds
		}
		recipient, ok := locked[req.ToUserID]
		if !ok {
			return ErrRecipientNotFound
		}
		if req.FromUserID == req.ToUserID {
			return ErrSelfTransfer
		}
		if err := s.accounts.UpdateCoins(ctx, tx, req.FromUserID, sender.Coins-req.Amount); err != nil {
			return err
		}
		if err := s.accounts.UpdateCoins(ctx, tx, req.ToUserID, recipient.Coins+req.Amount); err != nil {
			return err
		}

		from := req.FromUserID
		transfer = models.CoinTransfer{
			ID:         uuid.NewString(),
			FromUserID: &from,
			ToUserID:   req.ToUserID,
			Amount:     req.Amount,
			Message:    message,
			Status:     models.TransferCompleted,
			Type:       models.TransferTypeTransfer,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.transfers.Create(ctx, tx, transfer); err != nil {
			return err
		}
		entries := []store.LedgerEntryInput{
			{
				ID:          uuid.NewString(),
				ReferenceID: transfer.ID,
				UserID:      req.FromUserID,
				Amount:      -req.Amount,
				Description: "Transfer debit",
			},
			{
				ID:          uuid.NewString(),
				ReferenceID: transfer.ID,
				UserID:      req.ToUserID,
				Amount:      req.Amount,
				Description: "Transfer credit",
			},
		}
		if err := ensureBalanced(entries); err != nil {
			return err
		}
		if err := s.ledger.InsertEntries(ctx, tx, entries); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, req.FromUserID, "coins.transfer", "coin_transfer", transfer.ID, map[string]any{
			"to_user_id": req.ToUserID,
			"amount":     req.Amount,
		})
	})
	if err != nil {
		return models.CoinTransfer{}, err
	}

	logrus.WithFields(logrus.Fields{
		"transfer_id":  transfer.ID,
		"from_user_id": req.FromUserID,
		"to_user_id":   req.ToUserID,
		"amount":       req.Amount,
	}).Info("coins transferred")

	s.recordRecipient(ctx, req.FromUserID, req.ToUserID)
	if err := s.cache.Delete(ctx, cache.BalanceKey(req.FromUserID), cache.BalanceKey(req.ToUserID)); err != nil {
		logrus.WithError(err).WithField("transfer_id", transfer.ID).Warn("balance cache invalidation failed")
	}
	s.notifier.CoinsReceived(ctx, req.ToUserID, s.displayName(ctx, req.FromUserID), req.Amount)
	return transfer, nil
}

func (s *TransferService) recordRecipient(ctx context.Context, ownerID, recipientID string) {
	if _, err := s.addressBook.UpsertOnFirstTransfer(ctx, ownerID, recipientID); err != nil {
		werr := &AddressBookWriteError{OwnerID: ownerID, RecipientID: recipientID, Cause: err}
		logrus.WithError(werr).Warn("address book update after transfer failed")
	}
}

func (s *TransferService) displayName(ctx context.Context, userID string) string {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return userID
	}
	return user.DisplayName()
}

// lockAccounts takes row locks in user-id order so two opposing transfers
// cannot deadlock. Missing or empty ids are left out of the result and each
// row is locked once.
func lockAccounts(ctx context.Context, tx store.Getter, accounts AccountStore, firstID, secondID string) (map[string]models.Account, error) {
	locked := make(map[string]models.Account, 2)
	lowID, highID := orderedIDs(firstID, secondID)
	for _, id := range []string{lowID, highID} {
		if _, seen := locked[id]; seen || id == "" {
			continue
		}
		row, err := accounts.GetForUpdate(ctx, tx, id)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		locked[id] = row
	}
	return locked, nil
}

func orderedIDs(firstID, secondID string) (string, string) {
	if firstID <= secondID {
		return firstID, secondID
	}
	return secondID, firstID
}

func ensureBalanced(entries []store.LedgerEntryInput) error {
	var sum int64
	for _, entry := range entries {
		sum += entry.Amount
	}
	if sum != 0 {
		return errors.New("ledger entries are not balanced")
	}
	return nil
}
