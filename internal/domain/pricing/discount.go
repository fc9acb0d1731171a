// Package pricing computes target Shopify prices from ERP base prices and
// CSV discounts.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"shopify-reconciler/internal/domain/model"
)

const moneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Result is the price to write. CompareAtPrice is nil when no discount applies.
type Result struct {
	FinalPrice     decimal.Decimal
	CompareAtPrice *decimal.Decimal
	Applied        bool
}

// ValidPercent reports whether percentOff is inside (0, 100].
func ValidPercent(percentOff float64) bool {
	return percentOff > 0 && percentOff <= 100
}

// ApplyDiscount returns base minus percentOff percent, with the undiscounted
// base as compare-at price. Out of range percentages leave the price alone;
// callers are expected to log them.
func ApplyDiscount(base decimal.Decimal, percentOff float64) Result {
	if !ValidPercent(percentOff) {
		return Result{FinalPrice: Round2(base)}
	}
	factor := hundred.Sub(decimal.NewFromFloat(percentOff)).Div(hundred)
	compareAt := Round2(base)
	return Result{
		FinalPrice:     Round2(base.Mul(factor)),
		CompareAtPrice: &compareAt,
		Applied:        true,
	}
}

// Round2 rounds half up to cents.
func Round2(value decimal.Decimal) decimal.Decimal {
	return value.Round(moneyPlaces)
}

// Equal compares two amounts at cent precision so "90", "90.0" and "90.00"
// are the same price.
func Equal(a, b decimal.Decimal) bool {
	return Round2(a).Equal(Round2(b))
}

// EqualOptional compares nullable amounts; nil only equals nil.
func EqualOptional(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Equal(*a, *b)
}

// Format renders an amount the way Shopify expects money strings.
func Format(value decimal.Decimal) string {
	return Round2(value).StringFixed(moneyPlaces)
}

// ParsePrice converts a raw ERP price. Empty, malformed and negative values
// are invalid data.
func ParsePrice(raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return decimal.Zero, model.NewInvalidData("basePrice", raw, "missing price")
	}
	price, err := model.ParseDecimal(value)
	if err != nil {
		return decimal.Zero, model.NewInvalidData("basePrice", raw, err.Error())
	}
	if price.IsNegative() {
		return decimal.Zero, model.NewInvalidData("basePrice", raw, "negative price")
	}
	return price, nil
}
