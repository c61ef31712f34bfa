package config

const EnvPrefix = "DEALTRACKER"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "DEALTRACKER_APP_ENV"
	EnvPort      = "DEALTRACKER_APP_PORT"
	EnvLogLevel  = "DEALTRACKER_LOG_LEVEL"
	EnvLogFormat = "DEALTRACKER_LOG_FORMAT"

	EnvDBDSN  = "DEALTRACKER_DB_DSN"
	EnvDBHost = "DEALTRACKER_DB_HOST"
	EnvDBUser = "DEALTRACKER_DB_USER"
	EnvDBName = "DEALTRACKER_DB_NAME"

	EnvRedisURL  = "DEALTRACKER_REDIS_URL"
	EnvRedisAddr = "DEALTRACKER_REDIS_ADDR"

	EnvJWTSecret  = "DEALTRACKER_JWT_SECRET"
	EnvJWTIssuer  = "DEALTRACKER_JWT_ISSUER"
	EnvJWTExpMins = "DEALTRACKER_JWT_EXPIRATION_MINUTES"

	EnvCORSAllowedOrigins = "DEALTRACKER_CORS_ALLOWED_ORIGINS"

	EnvPriceAlertsEnabled         = "DEALTRACKER_PRICE_ALERTS_ENABLED"
	EnvPriceAlertsInterval        = "DEALTRACKER_PRICE_ALERTS_INTERVAL"
	EnvPriceAlertsFetchTimeout    = "DEALTRACKER_PRICE_ALERTS_FETCH_TIMEOUT"
	EnvPriceAlertsWriteTimeout    = "DEALTRACKER_PRICE_ALERTS_WRITE_TIMEOUT"
	EnvPriceAlertsDistributedLock = "DEALTRACKER_PRICE_ALERTS_DISTRIBUTED_LOCK"
	EnvPriceAlertsLockTTL         = "DEALTRACKER_PRICE_ALERTS_LOCK_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
