package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App     AppConfig
	Service ServiceConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Store   StoreConfig
	Pricing PricingConfig
	Sync    SyncConfig
	Import  ImportConfig
	Email   EmailConfig
	GCP     GCPConfig
	Roles   RolesConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"QUOTESYNC_APP_ENV" required:"true"`
	Port         string `envconfig:"QUOTESYNC_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"QUOTESYNC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"QUOTESYNC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"QUOTESYNC_SERVICE_KIND" default:"api"`
}

type RedisConfig struct {
	URL          string        `envconfig:"QUOTESYNC_REDIS_URL"`
	Address      string        `envconfig:"QUOTESYNC_REDIS_ADDR"`
	Password     string        `envconfig:"QUOTESYNC_REDIS_PASSWORD"`
	DB           int           `envconfig:"QUOTESYNC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"QUOTESYNC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"QUOTESYNC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"QUOTESYNC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"QUOTESYNC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"QUOTESYNC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"QUOTESYNC_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"QUOTESYNC_JWT_ISSUER" default:"quotesync"`
	ExpirationMinutes int    `envconfig:"QUOTESYNC_JWT_EXPIRATION_MINUTES" default:"60"`
}

type StoreConfig struct {
	Driver          string        `envconfig:"QUOTESYNC_STORE_DRIVER" default:"memory"`
	BadgerDir       string        `envconfig:"QUOTESYNC_STORE_BADGER_DIR" default:"./data/tree"`
	DatabaseURL     string        `envconfig:"QUOTESYNC_STORE_DATABASE_URL"`
	CredentialsJSON string        `envconfig:"QUOTESYNC_STORE_CREDENTIALS_JSON"`
	HTTPTimeout     time.Duration `envconfig:"QUOTESYNC_STORE_HTTP_TIMEOUT" default:"30s"`
}

type PricingConfig struct {
	TaxRate             decimal.Decimal `envconfig:"QUOTESYNC_PRICING_TAX_RATE" default:"0.16"`
	FreeShippingAbove   decimal.Decimal `envconfig:"QUOTESYNC_PRICING_FREE_SHIPPING_ABOVE" default:"50000"`
	ShippingFlatFee     decimal.Decimal `envconfig:"QUOTESYNC_PRICING_SHIPPING_FLAT_FEE" default:"2500"`
	QuoteValidity       time.Duration   `envconfig:"QUOTESYNC_PRICING_QUOTE_VALIDITY" default:"720h"`
	LargeOrderThreshold decimal.Decimal `envconfig:"QUOTESYNC_PRICING_LARGE_ORDER_THRESHOLD" default:"100000"`
	Currency            string          `envconfig:"QUOTESYNC_PRICING_CURRENCY" default:"MXN"`
	QuotePrefix         string          `envconfig:"QUOTESYNC_PRICING_QUOTE_PREFIX" default:"TAQ"`
	Numbering           string          `envconfig:"QUOTESYNC_PRICING_NUMBERING" default:"random"`
}

type SyncConfig struct {
	ChunkSize int `envconfig:"QUOTESYNC_SYNC_CHUNK_SIZE" default:"100"`
}

type ImportConfig struct {
	ShareLink       string        `envconfig:"QUOTESYNC_IMPORT_SHARE_LINK"`
	HeaderRow       int           `envconfig:"QUOTESYNC_IMPORT_HEADER_ROW" default:"3"`
	DownloadTimeout time.Duration `envconfig:"QUOTESYNC_IMPORT_DOWNLOAD_TIMEOUT" default:"60s"`
	Interval        time.Duration `envconfig:"QUOTESYNC_IMPORT_INTERVAL" default:"30m"`
	TimeZone        string        `envconfig:"QUOTESYNC_IMPORT_TIME_ZONE" default:"America/Mexico_City"`
	LogLimit        int           `envconfig:"QUOTESYNC_IMPORT_LOG_LIMIT" default:"50"`
}

// Location resolves the configured time zone, falling back to UTC.
func (i ImportConfig) Location() *time.Location {
	loc, err := time.LoadLocation(strings.TrimSpace(i.TimeZone))
	if err != nil || loc == nil {
		return time.UTC
	}
	return loc
}

type EmailConfig struct {
	Sender          string `envconfig:"QUOTESYNC_EMAIL_SENDER"`
	SenderName      string `envconfig:"QUOTESYNC_EMAIL_SENDER_NAME" default:"TurboAir Quotes"`
	AlertRecipient  string `envconfig:"QUOTESYNC_EMAIL_ALERT_RECIPIENT"`
	CredentialsJSON string `envconfig:"QUOTESYNC_EMAIL_CREDENTIALS_JSON"`
	TokenJSON       string `envconfig:"QUOTESYNC_EMAIL_TOKEN_JSON"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"QUOTESYNC_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"QUOTESYNC_GCP_CREDENTIALS_JSON"`
}

// RolesConfig drives the one-time super admin bootstrap. Without an init
// token the bootstrap route refuses every request.
type RolesConfig struct {
	SuperAdminEmail string `envconfig:"QUOTESYNC_ROLES_SUPERADMIN_EMAIL"`
	InitToken       string `envconfig:"QUOTESYNC_ROLES_INIT_TOKEN"`
}

const minInitTokenLength = 16

func (c *Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Store.Driver)) {
	case StoreDriverMemory, StoreDriverBadger:
	case StoreDriverRTDB:
		if strings.TrimSpace(c.Store.DatabaseURL) == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvStoreDatabaseURL, EnvStoreDriver, StoreDriverRTDB)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvStoreDriver, c.Store.Driver)
	}
	switch strings.ToLower(strings.TrimSpace(c.Pricing.Numbering)) {
	case NumberingRandom:
	case NumberingSequence:
		if !c.Redis.Enabled() {
			return fmt.Errorf("%s=%s requires %s", EnvPricingNumbering, NumberingSequence, EnvRedisURL)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvPricingNumbering, c.Pricing.Numbering)
	}
	if c.Sync.ChunkSize <= 0 {
		return fmt.Errorf("%s must be positive", EnvSyncChunkSize)
	}
	if c.Import.HeaderRow < 1 {
		return fmt.Errorf("%s must be at least 1", EnvImportHeaderRow)
	}
	if token := strings.TrimSpace(c.Roles.InitToken); token != "" {
		if len(token) < minInitTokenLength {
			return fmt.Errorf("%s must be at least %d characters", EnvRolesInitToken, minInitTokenLength)
		}
		if strings.TrimSpace(c.Roles.SuperAdminEmail) == "" {
			return fmt.Errorf("%s is required when %s is set", EnvRolesSuperAdminEmail, EnvRolesInitToken)
		}
	}
	if c.Pricing.TaxRate.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvPricingTaxRate)
	}
	return nil
}
