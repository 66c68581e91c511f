package config

const EnvPrefix = "QUOTESYNC"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StoreDriverMemory = "memory"
	StoreDriverBadger = "badger"
	StoreDriverRTDB   = "rtdb"
)

const (
	NumberingRandom   = "random"
	NumberingSequence = "sequence"
)

const (
	EnvAppEnv           = "QUOTESYNC_APP_ENV"
	EnvPort             = "QUOTESYNC_APP_PORT"
	EnvLogLevel         = "QUOTESYNC_LOG_LEVEL"
	EnvRedisURL         = "QUOTESYNC_REDIS_URL"
	EnvJWTSecret        = "QUOTESYNC_JWT_SECRET"
	EnvJWTIssuer        = "QUOTESYNC_JWT_ISSUER"
	EnvStoreDriver      = "QUOTESYNC_STORE_DRIVER"
	EnvStoreDatabaseURL = "QUOTESYNC_STORE_DATABASE_URL"
	EnvPricingTaxRate   = "QUOTESYNC_PRICING_TAX_RATE"
	EnvPricingNumbering = "QUOTESYNC_PRICING_NUMBERING"
	EnvSyncChunkSize    = "QUOTESYNC_SYNC_CHUNK_SIZE"
	EnvImportHeaderRow  = "QUOTESYNC_IMPORT_HEADER_ROW"
	EnvImportInterval   = "QUOTESYNC_IMPORT_INTERVAL"

	EnvRolesSuperAdminEmail = "QUOTESYNC_ROLES_SUPERADMIN_EMAIL"
	EnvRolesInitToken       = "QUOTESYNC_ROLES_INIT_TOKEN"
)
