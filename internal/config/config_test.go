package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var syncEnvKeys = []string{
	"SHOPIFY_SHOP_DOMAIN", "SHOPIFY_TOKEN", "SHOPIFY_API_VERSION", "SHOPIFY_TRANSPORT", "SHOPIFY_LOCATION_ID", "SHOPIFY_TIMEOUT",
	"LOCAL_SOURCE", "LOCAL_PRODUCTS_URL", "LOCAL_INVENTORY_URL", "LOCAL_TOKEN", "LOCAL_TIMEOUT", "LOCAL_MAX_PAGES",
	"LOCAL_FIELD_SKU", "LOCAL_FIELD_PRICE", "LOCAL_PRODUCTS_QUERY", "LOCAL_INVENTORY_QUERY",
	"MYSQL_HOST", "MYSQL_PORT", "MYSQL_USERNAME", "MYSQL_PASSWORD", "MYSQL_DATABASE", "POSTGRES_DSN",
	"DISCOUNT_SOURCE", "SYNC_JOIN_MODE", "SYNC_SCOPE", "SYNC_DRY_RUN", "UPDATE_CONCURRENCY", "PAGE_SIZE", "MAX_PAGES",
	"PAGE_DELAY", "THROTTLE_COOLDOWN", "MAX_PAGE_COOLDOWNS", "SHUTDOWN_GRACE", "RATE_LIMIT_PER_SECOND", "RATE_LIMIT_BURST",
	"MAX_RETRIES", "RETRY_BASE_DELAY", "RETRY_JITTER", "TELEGRAM_CHAT_ID", "TELEGRAM_TOKEN", "LOG_LEVEL", "ENV_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range syncEnvKeys {
		t.Setenv(key, "")
	}
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SHOPIFY_SHOP_DOMAIN", "demo.myshopify.com")
	t.Setenv("SHOPIFY_TOKEN", "shpat_x")
	t.Setenv("LOCAL_PRODUCTS_URL", "http://erp.local/odata/Products")
	t.Setenv("LOCAL_INVENTORY_URL", "http://erp.local/odata/Inventory")
}

func TestLoadForSyncDefaults(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	cfg, err := LoadForSync()
	require.NoError(t, err)

	require.Equal(t, "demo.myshopify.com", cfg.Shopify.ShopDomain)
	require.Equal(t, defaultAPIVersion, cfg.Shopify.APIVer)
	require.Equal(t, TransportGraphQL, cfg.Shopify.Transport)
	require.Equal(t, LocalSourceOData, cfg.Local.Source)
	require.Equal(t, "sku", cfg.Local.Fields.Sku)
	require.Equal(t, "remote-first", cfg.Sync.JoinMode)
	require.Equal(t, "both", cfg.Sync.Scope)
	require.False(t, cfg.Sync.DryRun)
	require.Equal(t, 250, cfg.Sync.PageSize)
	require.Equal(t, 500, cfg.Sync.MaxPages)
	require.Equal(t, 500*time.Millisecond, cfg.Sync.PageDelay)
	require.Equal(t, 30*time.Second, cfg.Sync.ShutdownGrace)
	require.Equal(t, 2.0, cfg.Retry.RatePerSecond)
	require.Equal(t, 3, cfg.Retry.MaxRetries)
	require.Equal(t, 3306, cfg.Mysql.Port)
}

func TestLoadForSyncOverrides(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("SHOPIFY_TRANSPORT", "REST")
	t.Setenv("SYNC_JOIN_MODE", "local-first")
	t.Setenv("SYNC_SCOPE", "price")
	t.Setenv("SYNC_DRY_RUN", "true")
	t.Setenv("RATE_LIMIT_PER_SECOND", "0.5")
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("RETRY_BASE_DELAY", "250ms")
	t.Setenv("SHUTDOWN_GRACE", "10")
	t.Setenv("LOCAL_FIELD_SKU", "ItemKey")

	cfg, err := LoadForSync()
	require.NoError(t, err)
	require.Equal(t, TransportREST, cfg.Shopify.Transport)
	require.Equal(t, "local-first", cfg.Sync.JoinMode)
	require.Equal(t, "price", cfg.Sync.Scope)
	require.True(t, cfg.Sync.DryRun)
	require.Equal(t, 0.5, cfg.Retry.RatePerSecond)
	require.Equal(t, 5, cfg.Retry.MaxRetries)
	require.Equal(t, 250*time.Millisecond, cfg.Retry.BaseDelay)
	require.Equal(t, 10*time.Second, cfg.Sync.ShutdownGrace)
	require.Equal(t, "ItemKey", cfg.Local.Fields.Sku)
}

func TestLoadForSyncReportsAllErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("SYNC_SCOPE", "everything")
	t.Setenv("MAX_RETRIES", "three")

	_, err := LoadForSync()
	require.Error(t, err)
	msg := err.Error()
	require.Contains(t, msg, "SHOPIFY_SHOP_DOMAIN")
	require.Contains(t, msg, "SHOPIFY_TOKEN")
	require.Contains(t, msg, "SYNC_SCOPE")
	require.Contains(t, msg, "MAX_RETRIES")
}

func TestLoadForSyncSQLSourceValidation(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOPIFY_SHOP_DOMAIN", "demo.myshopify.com")
	t.Setenv("SHOPIFY_TOKEN", "shpat_x")
	t.Setenv("LOCAL_SOURCE", "mysql")

	_, err := LoadForSync()
	require.ErrorContains(t, err, "MYSQL_HOST")

	t.Setenv("MYSQL_HOST", "db")
	t.Setenv("MYSQL_USERNAME", "erp")
	t.Setenv("MYSQL_DATABASE", "erp")
	cfg, err := LoadForSync()
	require.NoError(t, err)
	require.Equal(t, defaultProductsQuery, cfg.Local.ProductsQuery)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "sync.env")
	require.NoError(t, os.WriteFile(path, []byte("SHOPIFY_TOKEN=from-file\nSHOPIFY_SHOP_DOMAIN=file.myshopify.com\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("SHOPIFY_SHOP_DOMAIN", "env.myshopify.com")
	require.NoError(t, os.Unsetenv("SHOPIFY_TOKEN"))

	require.NoError(t, LoadEnvFile())
	require.Equal(t, "from-file", os.Getenv("SHOPIFY_TOKEN"))
	require.Equal(t, "env.myshopify.com", os.Getenv("SHOPIFY_SHOP_DOMAIN"))

	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	require.NoError(t, LoadEnvFile())
}
