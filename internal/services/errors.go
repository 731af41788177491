package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCode          = errors.New("invalid code")
	ErrAccountNotFound      = errors.New("account not found")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrRecipientNotFound    = errors.New("recipient not found")
	ErrSelfTransfer         = errors.New("cannot transfer to yourself")
	ErrMessageTooLong       = errors.New("message too long")
	ErrDuplicateEntry       = errors.New("address book entry already exists")
	ErrSelfEntry            = errors.New("cannot add yourself to the address book")
	ErrEntryNotFound        = errors.New("address book entry not found")
	ErrInvalidNickname      = errors.New("invalid nickname")
	ErrCheckinTooSoon       = errors.New("already checked in at this store recently")
	ErrNotificationNotFound = errors.New("notification not found")
)

// AddressBookWriteError reports a failed address-book upsert after a
// transfer has committed. Callers log it; the transfer still succeeded.
type AddressBookWriteError struct {
	OwnerID     string
	RecipientID string
	Cause       error
}

func (e *AddressBookWriteError) Error() string {
	return fmt.Sprintf("address book upsert %s -> %s: %v", e.OwnerID, e.RecipientID, e.Cause)
}

func (e *AddressBookWriteError) Unwrap() error {
	return e.Cause
}
