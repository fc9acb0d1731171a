package model

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var errAmbiguousSeparator = errors.New("ambiguous decimal separator")

// ParseDecimal reads an ERP number. A comma is taken as the decimal point only
// when it is the sole separator and is followed by one or two digits, so
// "12,5" is 12.5 while "1,299" and "1,299.00" are rejected.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	if comma := strings.IndexByte(value, ','); comma >= 0 {
		fraction := value[comma+1:]
		if strings.ContainsAny(fraction, ",.") || strings.Contains(value[:comma], ".") ||
			len(fraction) == 0 || len(fraction) > 2 {
			return decimal.Zero, errAmbiguousSeparator
		}
		value = value[:comma] + "." + fraction
	}
	return decimal.NewFromString(value)
}
