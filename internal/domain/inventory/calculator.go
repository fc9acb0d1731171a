// Package inventory derives the on-hand quantity from ERP ledger rows.
package inventory

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shopify-reconciler/internal/domain/model"
)

// WarnFunc receives non-fatal data problems, such as an unreadable date.
type WarnFunc func(message string)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ComputeAvailable picks the most recent record and returns
// max(0, initial + received - shipped) floored to whole units. Records must
// all belong to the same SKU.
func ComputeAvailable(records []model.InventoryRecord, warn WarnFunc) (int, error) {
	if len(records) == 0 {
		return 0, model.NewInvalidData("inventory", "", "no inventory records")
	}
	if warn == nil {
		warn = func(string) {}
	}

	latest := records[0]
	latestAt := parseRecordedAt(latest, warn)
	for _, record := range records[1:] {
		at := parseRecordedAt(record, warn)
		if at.After(latestAt) {
			latest = record
			latestAt = at
		}
	}

	initial, err := parseQuantity("initialQty", latest.InitialQty)
	if err != nil {
		return 0, err
	}
	received, err := parseQuantity("receivedQty", latest.ReceivedQty)
	if err != nil {
		return 0, err
	}
	shipped, err := parseQuantity("shippedQty", latest.ShippedQty)
	if err != nil {
		return 0, err
	}

	available := initial.Add(received).Sub(shipped).Floor()
	if available.IsNegative() {
		return 0, nil
	}
	return int(available.IntPart()), nil
}

// ParseRecordedAt understands RFC3339 variants, plain SQL timestamps and the
// OData "/Date(ms)/" form.
func ParseRecordedAt(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if strings.HasPrefix(value, "/Date(") && strings.HasSuffix(value, ")/") {
		inner := strings.TrimSuffix(strings.TrimPrefix(value, "/Date("), ")/")
		if inner == "" {
			return time.Time{}, fmt.Errorf("empty odata date")
		}
		if idx := strings.IndexAny(inner[1:], "+-"); idx >= 0 {
			inner = inner[:idx+1]
		}
		ms, err := strconv.ParseInt(inner, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("odata date %q: %w", value, err)
		}
		return time.UnixMilli(ms).UTC(), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp %q", value)
}

func parseRecordedAt(record model.InventoryRecord, warn WarnFunc) time.Time {
	at, err := ParseRecordedAt(record.RecordedAt)
	if err != nil {
		warn(fmt.Sprintf("inventory record sku=%s has unreadable date, treating as epoch: %v", record.Sku, err))
		return time.Unix(0, 0).UTC()
	}
	return at
}

func parseQuantity(field, raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return decimal.Zero, model.NewInvalidData(field, raw, "missing quantity")
	}
	qty, err := model.ParseDecimal(value)
	if err != nil {
		return decimal.Zero, model.NewInvalidData(field, raw, err.Error())
	}
	return qty, nil
}
