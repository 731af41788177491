package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"loyalty/internal/db"
	"loyalty/internal/models"
	"loyalty/internal/validator"

	"github.com/google/uuid"
)

const maxEntryNickname = 100

type AddressBookService struct {
	entries AddressBookStore
	users   UserLookup
}

type AddEntryRequest struct {
	OwnerID     string
	RecipientID string
	Nickname    *string
	IsFavorite  bool
}

type UpdateEntryRequest struct {
	Nickname   *string
	IsFavorite *bool
}

func NewAddressBookService(entries AddressBookStore, users UserLookup) *AddressBookService {
	return &AddressBookService{entries: entries, users: users}
}

func (s *AddressBookService) List(ctx context.Context, ownerID string) ([]models.AddressBookEntry, error) {
	return s.entries.ListByOwner(ctx, ownerID)
}

// Add creates an explicit entry. The nickname defaults to the recipient's
// display name.
func (s *AddressBookService) Add(ctx context.Context, req AddEntryRequest) (models.AddressBookEntry, error) {
	if req.RecipientID == "" {
		return models.AddressBookEntry{}, ErrRecipientNotFound
	}
	if req.OwnerID == req.RecipientID {
		return models.AddressBookEntry{}, ErrSelfEntry
	}
	recipient, err := s.users.GetByID(ctx, req.RecipientID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AddressBookEntry{}, ErrRecipientNotFound
	}
	if err != nil {
		return models.AddressBookEntry{}, err
	}
	nickname := recipient.DisplayName()
	if req.Nickname != nil {
		trimmed, err := normalizeNickname(*req.Nickname)
		if err != nil {
			return models.AddressBookEntry{}, err
		}
		nickname = trimmed
	}

	_, err = s.entries.Find(ctx, req.OwnerID, req.RecipientID)
	if err == nil {
		return models.AddressBookEntry{}, ErrDuplicateEntry
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.AddressBookEntry{}, err
	}
	entry, err := s.entries.Insert(ctx, models.AddressBookEntry{
		ID:          uuid.NewString(),
		OwnerID:     req.OwnerID,
		RecipientID: req.RecipientID,
		Nickname:    nickname,
		IsFavorite:  req.IsFavorite,
	})
	if db.IsUniqueViolation(err) {
		return models.AddressBookEntry{}, ErrDuplicateEntry
	}
	return entry, err
}

// Update changes only the fields present in req on an entry owned by ownerID.
func (s *AddressBookService) Update(ctx context.Context, ownerID, id string, req UpdateEntryRequest) (models.AddressBookEntry, error) {
	var nickname *string
	if req.Nickname != nil {
		trimmed, err := normalizeNickname(*req.Nickname)
		if err != nil {
			return models.AddressBookEntry{}, err
		}
		nickname = &trimmed
	}
	entry, err := s.entries.Update(ctx, id, ownerID, nickname, req.IsFavorite)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AddressBookEntry{}, ErrEntryNotFound
	}
	return entry, err
}

func (s *AddressBookService) Remove(ctx context.Context, ownerID, id string) error {
	rows, err := s.entries.Delete(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// UpsertOnFirstTransfer records recipientID in ownerID's address book unless
// an entry already exists. Existing entries are left untouched.
func (s *AddressBookService) UpsertOnFirstTransfer(ctx context.Context, ownerID, recipientID string) (bool, error) {
	_, err := s.entries.Find(ctx, ownerID, recipientID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	nickname := recipientID
	if recipient, err := s.users.GetByID(ctx, recipientID); err == nil {
		nickname = recipient.DisplayName()
	} else if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	return s.entries.InsertIfAbsent(ctx, models.AddressBookEntry{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		RecipientID: recipientID,
		Nickname:    nickname,
	})
}

func normalizeNickname(nickname string) (string, error) {
	if err := validator.ValidateName(nickname, maxEntryNickname); err != nil {
		return "", ErrInvalidNickname
	}
	return strings.TrimSpace(nickname), nil
}
