package config

import "time"

type Config struct {
	Shopify     ShopifyConfig
	Local       LocalConfig
	Mysql       MysqlConfig
	Postgres    PostgresConfig
	Discount    DiscountConfig
	Sync        SyncConfig
	Retry       RetryConfig
	TelegramBot TelegramBotConfig
	LogLevel    string
}

type ShopifyConfig struct {
	ShopDomain string
	Token      string
	APIVer     string
	Transport  string
	LocationID string
	Timeout    time.Duration
}

const (
	TransportGraphQL = "graphql"
	TransportREST    = "rest"
)

const (
	LocalSourceOData    = "odata"
	LocalSourceMysql    = "mysql"
	LocalSourcePostgres = "postgres"
)

// LocalConfig describes where ERP products and inventory come from.
type LocalConfig struct {
	Source         string
	ProductsURL    string
	InventoryURL   string
	Token          string
	Timeout        time.Duration
	MaxPages       int
	Fields         FieldMap
	ProductsQuery  string
	InventoryQuery string
}

// FieldMap names the JSON properties of the ERP records.
type FieldMap struct {
	Sku        string
	Price      string
	Initial    string
	Received   string
	Shipped    string
	RecordedAt string
}

type MysqlConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
}

type PostgresConfig struct {
	DSN string
}

type DiscountConfig struct {
	Source        string
	SkuColumn     string
	PercentColumn string
}

type SyncConfig struct {
	JoinMode          string
	Scope             string
	DryRun            bool
	UpdateConcurrency int
	PageSize          int
	MaxPages          int
	PageDelay         time.Duration
	ThrottleCooldown  time.Duration
	MaxPageCooldowns  int
	ShutdownGrace     time.Duration
}

type RetryConfig struct {
	RatePerSecond float64
	Burst         int
	MaxRetries    int
	BaseDelay     time.Duration
	Jitter        time.Duration
}

type TelegramBotConfig struct {
	ChatId string
	Token  string
}
