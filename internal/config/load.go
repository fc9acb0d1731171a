package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile        = ".env"
	defaultAPIVersion     = "2024-10"
	defaultShopifyTimeout = 30 * time.Second
	defaultLocalTimeout   = 60 * time.Second
	defaultLocalMaxPages  = 1000

	defaultRatePerSecond = 2.0
	defaultBurst         = 1
	defaultMaxRetries    = 3
	defaultBaseDelay     = 500 * time.Millisecond
	defaultJitter        = 250 * time.Millisecond

	defaultUpdateConcurrency = 8
	defaultPageSize          = 250
	defaultMaxPages          = 500
	defaultPageDelay         = 500 * time.Millisecond
	defaultThrottleCooldown  = 10 * time.Second
	defaultMaxPageCooldowns  = 5
	defaultShutdownGrace     = 30 * time.Second

	defaultProductsQuery  = "SELECT sku, price FROM products"
	defaultInventoryQuery = "SELECT sku, initial_qty, received_qty, shipped_qty, recorded_at FROM inventory"
)

// LoadEnvFile loads ENV_FILE (default .env) into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile() error {
	path := stringWithDefault("ENV_FILE", defaultEnvFile)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// LoadForSync reads the reconciliation job configuration from the
// environment. All problems are reported together.
func LoadForSync() (*Config, error) {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	cfg := &Config{LogLevel: stringWithDefault("LOG_LEVEL", "info")}

	domain, err := requriedString("SHOPIFY_SHOP_DOMAIN")
	collect(err)
	token, err := requriedString("SHOPIFY_TOKEN")
	collect(err)
	transport, err := oneOf("SHOPIFY_TRANSPORT", stringWithDefault("SHOPIFY_TRANSPORT", TransportGraphQL), TransportGraphQL, TransportREST)
	collect(err)
	shopifyTimeout, err := durationWithDefault("SHOPIFY_TIMEOUT", defaultShopifyTimeout)
	collect(err)
	cfg.Shopify = ShopifyConfig{
		ShopDomain: domain,
		Token:      token,
		APIVer:     stringWithDefault("SHOPIFY_API_VERSION", defaultAPIVersion),
		Transport:  transport,
		LocationID: stringWithDefault("SHOPIFY_LOCATION_ID", ""),
		Timeout:    shopifyTimeout,
	}

	source, err := oneOf("LOCAL_SOURCE", stringWithDefault("LOCAL_SOURCE", LocalSourceOData), LocalSourceOData, LocalSourceMysql, LocalSourcePostgres)
	collect(err)
	localTimeout, err := durationWithDefault("LOCAL_TIMEOUT", defaultLocalTimeout)
	collect(err)
	localMaxPages, err := intWithDefault("LOCAL_MAX_PAGES", defaultLocalMaxPages)
	collect(err)
	cfg.Local = LocalConfig{
		Source:       source,
		ProductsURL:  stringWithDefault("LOCAL_PRODUCTS_URL", ""),
		InventoryURL: stringWithDefault("LOCAL_INVENTORY_URL", ""),
		Token:        stringWithDefault("LOCAL_TOKEN", ""),
		Timeout:      localTimeout,
		MaxPages:     localMaxPages,
		Fields: FieldMap{
			Sku:        stringWithDefault("LOCAL_FIELD_SKU", "sku"),
			Price:      stringWithDefault("LOCAL_FIELD_PRICE", "price"),
			Initial:    stringWithDefault("LOCAL_FIELD_INITIAL", "initialQty"),
			Received:   stringWithDefault("LOCAL_FIELD_RECEIVED", "receivedQty"),
			Shipped:    stringWithDefault("LOCAL_FIELD_SHIPPED", "shippedQty"),
			RecordedAt: stringWithDefault("LOCAL_FIELD_RECORDED_AT", "recordedAt"),
		},
		ProductsQuery:  stringWithDefault("LOCAL_PRODUCTS_QUERY", defaultProductsQuery),
		InventoryQuery: stringWithDefault("LOCAL_INVENTORY_QUERY", defaultInventoryQuery),
	}

	mysqlPort, err := intWithDefault("MYSQL_PORT", 3306)
	collect(err)
	cfg.Mysql = MysqlConfig{
		Host:     stringWithDefault("MYSQL_HOST", ""),
		Port:     mysqlPort,
		Username: stringWithDefault("MYSQL_USERNAME", ""),
		Password: stringWithDefault("MYSQL_PASSWORD", ""),
		Database: stringWithDefault("MYSQL_DATABASE", ""),
	}
	cfg.Postgres = PostgresConfig{DSN: stringWithDefault("POSTGRES_DSN", "")}

	cfg.Discount = DiscountConfig{
		Source:        stringWithDefault("DISCOUNT_SOURCE", ""),
		SkuColumn:     stringWithDefault("DISCOUNT_SKU_COLUMN", ""),
		PercentColumn: stringWithDefault("DISCOUNT_PERCENT_COLUMN", ""),
	}

	joinMode, err := oneOf("SYNC_JOIN_MODE", stringWithDefault("SYNC_JOIN_MODE", "remote-first"), "remote-first", "local-first")
	collect(err)
	scope, err := oneOf("SYNC_SCOPE", stringWithDefault("SYNC_SCOPE", "both"), "price", "inventory", "both")
	collect(err)
	dryRun, err := boolWithDefault("SYNC_DRY_RUN", false)
	collect(err)
	concurrency, err := intWithDefault("UPDATE_CONCURRENCY", defaultUpdateConcurrency)
	collect(err)
	pageSize, err := intWithDefault("PAGE_SIZE", defaultPageSize)
	collect(err)
	maxPages, err := intWithDefault("MAX_PAGES", defaultMaxPages)
	collect(err)
	pageDelay, err := durationWithDefault("PAGE_DELAY", defaultPageDelay)
	collect(err)
	cooldown, err := durationWithDefault("THROTTLE_COOLDOWN", defaultThrottleCooldown)
	collect(err)
	maxCooldowns, err := intWithDefault("MAX_PAGE_COOLDOWNS", defaultMaxPageCooldowns)
	collect(err)
	grace, err := durationWithDefault("SHUTDOWN_GRACE", defaultShutdownGrace)
	collect(err)
	cfg.Sync = SyncConfig{
		JoinMode:          joinMode,
		Scope:             scope,
		DryRun:            dryRun,
		UpdateConcurrency: concurrency,
		PageSize:          pageSize,
		MaxPages:          maxPages,
		PageDelay:         pageDelay,
		ThrottleCooldown:  cooldown,
		MaxPageCooldowns:  maxCooldowns,
		ShutdownGrace:     grace,
	}

	rps, err := floatWithDefault("RATE_LIMIT_PER_SECOND", defaultRatePerSecond)
	collect(err)
	burst, err := intWithDefault("RATE_LIMIT_BURST", defaultBurst)
	collect(err)
	maxRetries, err := intWithDefault("MAX_RETRIES", defaultMaxRetries)
	collect(err)
	baseDelay, err := durationWithDefault("RETRY_BASE_DELAY", defaultBaseDelay)
	collect(err)
	jitter, err := durationWithDefault("RETRY_JITTER", defaultJitter)
	collect(err)
	cfg.Retry = RetryConfig{
		RatePerSecond: rps,
		Burst:         burst,
		MaxRetries:    maxRetries,
		BaseDelay:     baseDelay,
		Jitter:        jitter,
	}

	cfg.TelegramBot = TelegramBotConfig{
		ChatId: stringWithDefault("TELEGRAM_CHAT_ID", ""),
		Token:  stringWithDefault("TELEGRAM_TOKEN", ""),
	}

	collect(cfg.validate())
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.Local.Source {
	case LocalSourceOData:
		if c.Local.ProductsURL == "" && c.Sync.Scope != "inventory" {
			errs = append(errs, errors.New("LOCAL_PRODUCTS_URL is required for price sync"))
		}
		if c.Local.InventoryURL == "" && c.Sync.Scope != "price" {
			errs = append(errs, errors.New("LOCAL_INVENTORY_URL is required for inventory sync"))
		}
	case LocalSourceMysql:
		if c.Mysql.Host == "" || c.Mysql.Username == "" || c.Mysql.Database == "" {
			errs = append(errs, errors.New("MYSQL_HOST, MYSQL_USERNAME and MYSQL_DATABASE are required"))
		}
	case LocalSourcePostgres:
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required"))
		}
	}
	if c.Retry.RatePerSecond <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_SECOND must be positive"))
	}
	if c.Retry.Burst < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be at least 1"))
	}
	if c.Retry.MaxRetries < 0 {
		errs = append(errs, errors.New("MAX_RETRIES must not be negative"))
	}
	if c.Sync.UpdateConcurrency < 1 {
		errs = append(errs, errors.New("UPDATE_CONCURRENCY must be at least 1"))
	}
	if c.Sync.PageSize < 1 || c.Sync.PageSize > 250 {
		errs = append(errs, errors.New("PAGE_SIZE must be between 1 and 250"))
	}
	if c.Sync.MaxPages < 1 {
		errs = append(errs, errors.New("MAX_PAGES must be at least 1"))
	}
	return errors.Join(errs...)
}
