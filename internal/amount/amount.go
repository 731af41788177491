// Package amount parses coin amounts supplied by clients.
package amount

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

var maxCoins = decimal.NewFromInt(math.MaxInt64)

// Parse accepts a JSON number or a quoted number and returns it as a whole
// count of coins. Fractions, zero, negatives and overflow are rejected.
func Parse(raw json.RawMessage) (int64, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, ErrInvalidAmount
	}
	text := string(trimmed)
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return 0, ErrInvalidAmount
		}
	}
	return ParseString(text)
}

func ParseString(input string) (int64, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if !value.IsInteger() || !value.IsPositive() || value.GreaterThan(maxCoins) {
		return 0, ErrInvalidAmount
	}
	return value.IntPart(), nil
}
