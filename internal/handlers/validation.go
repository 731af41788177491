package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"loyalty/internal/amount"

	"github.com/google/uuid"
)

var errInvalidAmount = errors.New("invalid amount")

func parseCoinAmount(raw json.RawMessage) (int64, error) {
	value, err := amount.Parse(raw)
	if err != nil || value <= 0 {
		return 0, errInvalidAmount
	}
	return value, nil
}

// maxListLimit caps every ?limit= query parameter.
const maxListLimit = 50

func parseInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func parseLimit(raw string, fallback int) int {
	return min(parseInt(raw, fallback), maxListLimit)
}

// newScanCode returns 32 hex characters.
func newScanCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
