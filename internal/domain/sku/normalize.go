// Package sku canonicalizes SKUs so records from systems with different
// zero-padding conventions can be matched.
package sku

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PadWidth is the zero-padded width used by the ERP for numeric SKUs.
const PadWidth = 5

// Key is the result of normalizing a raw SKU. Candidates lists the keys to
// look up in an index, canonical first.
type Key struct {
	Canonical  string
	Valid      bool
	Candidates []string
}

// Normalize strips every non-digit and then leading zeros. It never fails:
// unusable input yields an invalid Key with no candidates.
func Normalize(raw any) Key {
	digits := stripLeadingZeros(onlyDigits(rawString(raw)))
	if digits == "" {
		return Key{}
	}
	candidates := []string{digits}
	if len(digits) < PadWidth {
		candidates = append(candidates, strings.Repeat("0", PadWidth-len(digits))+digits)
	}
	return Key{Canonical: digits, Valid: true, Candidates: candidates}
}

// Canonical is a shortcut for Normalize(raw).Canonical.
func Canonical(raw any) (string, bool) {
	key := Normalize(raw)
	return key.Canonical, key.Valid
}

func rawString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func onlyDigits(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stripLeadingZeros(value string) string {
	return strings.TrimLeft(value, "0")
}
