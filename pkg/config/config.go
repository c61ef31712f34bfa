package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Cookie        CookieConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	RateLimit     RateLimitConfig
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
	PriceAlerts   PriceAlertsConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.PriceAlerts.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DEALTRACKER_APP_ENV" required:"true"`
	Port         string `envconfig:"DEALTRACKER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DEALTRACKER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DEALTRACKER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"DEALTRACKER_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"DEALTRACKER_DB_DSN"`

	LegacyHost     string `envconfig:"DEALTRACKER_DB_HOST"`
	LegacyPort     int    `envconfig:"DEALTRACKER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DEALTRACKER_DB_USER"`
	LegacyPassword string `envconfig:"DEALTRACKER_DB_PASSWORD"`
	LegacyName     string `envconfig:"DEALTRACKER_DB_NAME"`
	LegacySSLMode  string `envconfig:"DEALTRACKER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DEALTRACKER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DEALTRACKER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DEALTRACKER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DEALTRACKER_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// SlowQueryThreshold logs statements slower than this; zero disables slow query logging.
	SlowQueryThreshold time.Duration `envconfig:"DEALTRACKER_DB_SLOW_QUERY_THRESHOLD" default:"250ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DEALTRACKER_REDIS_URL"`
	Address      string        `envconfig:"DEALTRACKER_REDIS_ADDR"`
	Password     string        `envconfig:"DEALTRACKER_REDIS_PASSWORD"`
	DB           int           `envconfig:"DEALTRACKER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DEALTRACKER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DEALTRACKER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DEALTRACKER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DEALTRACKER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DEALTRACKER_REDIS_WRITE_TIMEOUT" default:"5s"`
	KeyPrefix    string        `envconfig:"DEALTRACKER_REDIS_KEY_PREFIX" default:"dt"`
}

type JWTConfig struct {
	Secret            string `envconfig:"DEALTRACKER_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"DEALTRACKER_JWT_ISSUER" default:"dealtracker"`
	ExpirationMinutes int    `envconfig:"DEALTRACKER_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type CookieConfig struct {
	Name   string `envconfig:"DEALTRACKER_AUTH_COOKIE_NAME" default:"auth_token"`
	Domain string `envconfig:"DEALTRACKER_AUTH_COOKIE_DOMAIN"`
	Secure bool   `envconfig:"DEALTRACKER_AUTH_COOKIE_SECURE" default:"false"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DEALTRACKER_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DEALTRACKER_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DEALTRACKER_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DEALTRACKER_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DEALTRACKER_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"DEALTRACKER_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"DEALTRACKER_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"DEALTRACKER_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"DEALTRACKER_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"DEALTRACKER_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"DEALTRACKER_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// RateLimitConfig throttles the public API per client IP.
type RateLimitConfig struct {
	RequestsPerSecond float64       `envconfig:"DEALTRACKER_RATE_LIMIT_RPS" default:"10"`
	Burst             int           `envconfig:"DEALTRACKER_RATE_LIMIT_BURST" default:"20"`
	IdleTTL           time.Duration `envconfig:"DEALTRACKER_RATE_LIMIT_IDLE_TTL" default:"10m"`
	// TrustProxyHeaders takes the client IP from X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool `envconfig:"DEALTRACKER_RATE_LIMIT_TRUST_PROXY_HEADERS" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string      `envconfig:"DEALTRACKER_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	MaxAge         time.Duration `envconfig:"DEALTRACKER_CORS_MAX_AGE" default:"5m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DEALTRACKER_AUTO_MIGRATE" default:"false"`
}

// PriceAlertsConfig tunes the recurring price drop scan.
type PriceAlertsConfig struct {
	Enabled         bool          `envconfig:"DEALTRACKER_PRICE_ALERTS_ENABLED" default:"true"`
	Interval        time.Duration `envconfig:"DEALTRACKER_PRICE_ALERTS_INTERVAL" default:"30s"`
	FetchTimeout    time.Duration `envconfig:"DEALTRACKER_PRICE_ALERTS_FETCH_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"DEALTRACKER_PRICE_ALERTS_WRITE_TIMEOUT" default:"5s"`
	DistributedLock bool          `envconfig:"DEALTRACKER_PRICE_ALERTS_DISTRIBUTED_LOCK" default:"false"`
	LockTTL         time.Duration `envconfig:"DEALTRACKER_PRICE_ALERTS_LOCK_TTL" default:"2m"`
}

func (p PriceAlertsConfig) validate() error {
	if !p.Enabled {
		return nil
	}
	if p.Interval <= 0 {
		return fmt.Errorf("%s must be positive", EnvPriceAlertsInterval)
	}
	if p.FetchTimeout <= 0 || p.WriteTimeout <= 0 {
		return fmt.Errorf("%s and %s must be positive", EnvPriceAlertsFetchTimeout, EnvPriceAlertsWriteTimeout)
	}
	if p.DistributedLock && p.LockTTL <= p.FetchTimeout {
		return fmt.Errorf("%s must exceed %s", EnvPriceAlertsLockTTL, EnvPriceAlertsFetchTimeout)
	}
	return nil
}

type CronConfig struct {
	Interval                  time.Duration `envconfig:"DEALTRACKER_CRON_INTERVAL" default:"24h"`
	NotificationRetentionDays int           `envconfig:"DEALTRACKER_NOTIFICATION_RETENTION_DAYS" default:"30"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
