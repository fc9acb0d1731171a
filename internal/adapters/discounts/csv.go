// Package discounts loads per-SKU percentage discounts from a CSV file or
// URL.
package discounts

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"shopify-reconciler/internal/config"
	"shopify-reconciler/internal/domain/model"
	"shopify-reconciler/internal/domain/pricing"
	"shopify-reconciler/internal/infra/httpx"
	"shopify-reconciler/internal/logging"
)

var (
	skuAliases     = []string{"sku", "item", "itemcode", "item_code", "item code", "code", "barcode"}
	percentAliases = []string{"discount", "percent", "percent_off", "percentoff", "discount_percent", "discount %", "discount%", "%"}
)

type Loader struct {
	source        string
	skuColumn     string
	percentColumn string
	httpClient    *httpx.Client
	logger        logging.LoggerService
}

// NewLoader reads cfg.Source, a local path or an http(s) URL. httpClient is
// only used for URLs.
func NewLoader(cfg config.DiscountConfig, httpClient *httpx.Client, logger logging.LoggerService) *Loader {
	return &Loader{
		source:        strings.TrimSpace(cfg.Source),
		skuColumn:     strings.TrimSpace(cfg.SkuColumn),
		percentColumn: strings.TrimSpace(cfg.PercentColumn),
		httpClient:    httpClient,
		logger:        logger,
	}
}

func (l *Loader) Load(ctx context.Context) ([]model.DiscountEntry, error) {
	raw, err := l.read(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := l.parse(raw)
	if err != nil {
		return nil, fmt.Errorf("discounts %s: %w", l.source, err)
	}
	l.logger.Log(fmt.Sprintf("discounts loaded entries=%d", len(entries)))
	return entries, nil
}

func (l *Loader) read(ctx context.Context) ([]byte, error) {
	if l.source == "" {
		return nil, errors.New("discount source is empty")
	}
	lower := strings.ToLower(l.source)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		if l.httpClient == nil {
			return nil, errors.New("discount http client is nil")
		}
		resp, err := l.httpClient.Do(ctx, httpx.Request{
			Target: "discounts csv",
			Method: http.MethodGet,
			URL:    l.source,
			Header: http.Header{"Accept": {"text/csv, */*"}},
		})
		if err != nil {
			return nil, err
		}
		return resp.Body, nil
	}
	return os.ReadFile(l.source)
}

func (l *Loader) parse(raw []byte) ([]model.DiscountEntry, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = detectDelimiter(raw)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, model.NewInvalidData("header", "", "file is empty")
	}
	if err != nil {
		return nil, err
	}
	skuCol := column(header, l.skuColumn, skuAliases)
	percentCol := column(header, l.percentColumn, percentAliases)
	if skuCol < 0 || percentCol < 0 {
		return nil, model.NewInvalidData("header", strings.Join(header, ","), "sku or discount column not found")
	}

	var entries []model.DiscountEntry
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			l.logger.LogWarning("discount row unreadable, skipped", zap.Int("line", line), zap.Error(err))
			continue
		}
		if isBlank(row) {
			continue
		}
		if skuCol >= len(row) || percentCol >= len(row) {
			l.logger.LogWarning("discount row too short, skipped", zap.Int("line", line))
			continue
		}
		sku := strings.TrimSpace(row[skuCol])
		if sku == "" {
			l.logger.LogWarning("discount row without sku, skipped", zap.Int("line", line))
			continue
		}
		percent, err := ParsePercent(row[percentCol])
		if err != nil {
			l.logger.LogWarning("discount percent unreadable, skipped",
				zap.Int("line", line), zap.String("sku", sku), zap.String("value", row[percentCol]))
			continue
		}
		if !pricing.ValidPercent(percent) {
			l.logger.LogWarning("discount percent out of range, skipped",
				zap.Int("line", line), zap.String("sku", sku), zap.Float64("percent_off", percent))
			continue
		}
		entries = append(entries, model.DiscountEntry{Sku: sku, PercentOff: percent})
	}
	return entries, nil
}

// ParsePercent accepts "10", "10%", "12,5" and " 12.5 % ".
func ParsePercent(raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	value = strings.TrimSpace(strings.TrimSuffix(value, "%"))
	if value == "" {
		return 0, model.NewInvalidData("percent", raw, "empty")
	}
	percent, err := model.ParseDecimal(value)
	if err != nil {
		return 0, model.NewInvalidData("percent", raw, "not a number")
	}
	return percent.InexactFloat64(), nil
}

// column finds the header index of the configured name or the first alias.
func column(header []string, configured string, aliases []string) int {
	names := aliases
	if configured != "" {
		names = append([]string{configured}, aliases...)
	}
	for _, name := range names {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
	}
	return -1
}

// detectDelimiter picks ';' for files whose header has semicolons and no
// commas, as spreadsheet exports with decimal commas do.
func detectDelimiter(raw []byte) rune {
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	if !scanner.Scan() {
		return ','
	}
	first := scanner.Text()
	if strings.Contains(first, ";") && !strings.Contains(first, ",") {
		return ';'
	}
	return ','
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
