package validator

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

const MaxMessageLength = 500

var (
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidNickname = errors.New("invalid nickname")
	ErrInvalidPassword = errors.New("invalid password")
	ErrMessageTooLong  = errors.New("message too long")
	ErrInvalidName     = errors.New("invalid name")
)

var (
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	nicknameRegex = regexp.MustCompile(`^[\p{L}\p{N}_ .-]{2,40}$`)
)

func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func ValidateNickname(nickname string) error {
	if strings.TrimSpace(nickname) != nickname || !nicknameRegex.MatchString(nickname) {
		return ErrInvalidNickname
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrInvalidPassword
	}
	return nil
}

// ValidateMessage limits transfer messages by characters, not bytes.
func ValidateMessage(message string) error {
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}

func ValidateName(name string, max int) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || utf8.RuneCountInString(trimmed) > max {
		return ErrInvalidName
	}
	return nil
}
