package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"shopify-reconciler/internal/domain/model"
	"shopify-reconciler/internal/domain/sku"
	"shopify-reconciler/internal/infra/httpx"
	"shopify-reconciler/internal/logging"
)

const (
	defaultPageSize         = 250
	defaultMaxPages         = 500
	defaultPageDelay        = 500 * time.Millisecond
	defaultThrottleCooldown = 10 * time.Second
	defaultMaxPageCooldowns = 5
)

type CatalogOptions struct {
	PageSize  int
	MaxPages  int
	PageDelay time.Duration
	// Cooldown is the pause before re-reading a page that still failed
	// transiently after the client's own retries.
	Cooldown     time.Duration
	MaxCooldowns int
}

func (o CatalogOptions) withDefaults() CatalogOptions {
	if o.PageSize <= 0 {
		o.PageSize = defaultPageSize
	}
	if o.MaxPages <= 0 {
		o.MaxPages = defaultMaxPages
	}
	if o.PageDelay < 0 {
		o.PageDelay = defaultPageDelay
	}
	if o.Cooldown <= 0 {
		o.Cooldown = defaultThrottleCooldown
	}
	if o.MaxCooldowns < 0 {
		o.MaxCooldowns = defaultMaxPageCooldowns
	}
	return o
}

type VariantCatalog struct {
	pager   VariantPager
	logger  logging.LoggerService
	options CatalogOptions
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewVariantCatalog(pager VariantPager, logger logging.LoggerService, options CatalogOptions) *VariantCatalog {
	return &VariantCatalog{
		pager:   pager,
		logger:  logger,
		options: options.withDefaults(),
		sleep:   httpx.Sleep,
	}
}

// FetchAll walks the catalog until the last page or the page ceiling.
// Hitting the ceiling is logged and the partial catalog returned.
func (c *VariantCatalog) FetchAll(ctx context.Context) (*sku.Index[model.RemoteVariant], error) {
	index := sku.NewIndex[model.RemoteVariant]()
	cursor := ""
	var skipped, duplicates int

	for page := 0; ; page++ {
		if page >= c.options.MaxPages {
			c.logger.LogWarning("catalog page ceiling reached, remaining variants ignored",
				zap.Int("max_pages", c.options.MaxPages),
				zap.Int("variants", index.Len()))
			break
		}
		if page > 0 && c.options.PageDelay > 0 {
			if err := c.sleep(ctx, c.options.PageDelay); err != nil {
				return nil, err
			}
		}

		result, err := c.fetchPage(ctx, cursor, page)
		if err != nil {
			return nil, err
		}

		for _, variant := range result.Variants {
			if strings.TrimSpace(variant.VariantID) == "" {
				skipped++
				c.logger.LogWarning("remote variant without id skipped", zap.String("sku", variant.Sku))
				continue
			}
			key, previous, replaced := index.Put(variant.Sku, variant)
			if !key.Valid {
				skipped++
				c.logger.LogWarning("remote variant without usable sku skipped",
					zap.String("variant_id", variant.VariantID),
					zap.String("raw_sku", variant.Sku))
				continue
			}
			if replaced {
				duplicates++
				c.logger.LogWarning("duplicate remote sku, last variant wins",
					zap.String("sku", key.Canonical),
					zap.String("discarded_variant_id", previous.VariantID),
					zap.String("kept_variant_id", variant.VariantID))
			}
		}

		if !result.HasNext {
			break
		}
		if strings.TrimSpace(result.NextCursor) == "" {
			c.logger.LogWarning("catalog page reports more results without a cursor, stopping", zap.Int("page", page+1))
			break
		}
		cursor = result.NextCursor
	}

	c.logger.Log(fmt.Sprintf("Catalog fetched variants=%d skipped=%d duplicates=%d", index.Len(), skipped, duplicates))
	return index, nil
}

// fetchPage re-reads one page after a cool-down while it keeps failing
// transiently.
func (c *VariantCatalog) fetchPage(ctx context.Context, cursor string, page int) (model.VariantPage, error) {
	for cooldown := 0; ; cooldown++ {
		result, err := c.pager.FetchVariantPage(ctx, cursor, c.options.PageSize)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil || !httpx.IsTransient(err) {
			return model.VariantPage{}, fmt.Errorf("catalog page %d: %w", page+1, err)
		}
		if cooldown >= c.options.MaxCooldowns {
			return model.VariantPage{}, fmt.Errorf("catalog page %d still failing after %d cool-downs: %w", page+1, cooldown, err)
		}
		c.logger.LogWarning("catalog page throttled, cooling down",
			zap.Int("page", page+1),
			zap.Int("cooldown", cooldown+1),
			zap.Duration("wait", c.options.Cooldown),
			zap.Error(err))
		if err := c.sleep(ctx, c.options.Cooldown); err != nil {
			return model.VariantPage{}, err
		}
	}
}
