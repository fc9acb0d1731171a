package shopify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// parseMoney reads a Money value that may arrive as a JSON string, a JSON
// number or a MoneyV2 object. ok is false for null or empty.
func parseMoney(raw json.RawMessage) (value decimal.Decimal, ok bool, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, false, nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, false, err
		}
		return parseMoneyString(s)
	case '{':
		var money struct {
			Amount json.RawMessage `json:"amount"`
		}
		if err := json.Unmarshal(raw, &money); err != nil {
			return decimal.Zero, false, err
		}
		return parseMoney(money.Amount)
	default:
		return parseMoneyString(string(raw))
	}
}

func parseMoneyString(s string) (decimal.Decimal, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false, nil
	}
	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("shopify money %q: %w", s, err)
	}
	return value, true, nil
}

func optionalMoney(raw json.RawMessage) (*decimal.Decimal, error) {
	value, ok, err := parseMoney(raw)
	if err != nil || !ok {
		return nil, err
	}
	return &value, nil
}

// moneyVariable renders a price for a mutation; nil becomes JSON null,
// which clears the field on Shopify.
func moneyVariable(value *decimal.Decimal) any {
	if value == nil {
		return nil
	}
	return value.StringFixed(2)
}
