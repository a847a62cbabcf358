package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	PayPal    PayPalConfig
	Checkout  CheckoutConfig
	RateLimit RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TDB_APP_ENV" required:"true"`
	Port         string `envconfig:"TDB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TDB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TDB_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"TDB_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TDB_DB_DSN"`
	Driver string `envconfig:"TDB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TDB_DB_HOST"`
	LegacyPort     int    `envconfig:"TDB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TDB_DB_USER"`
	LegacyPassword string `envconfig:"TDB_DB_PASSWORD"`
	LegacyName     string `envconfig:"TDB_DB_NAME"`
	LegacySSLMode  string `envconfig:"TDB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TDB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TDB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TDB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TDB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the DSN points at a local sqlite file (dev/test).
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"TDB_REDIS_URL"`
	Address      string        `envconfig:"TDB_REDIS_ADDR"`
	Password     string        `envconfig:"TDB_REDIS_PASSWORD"`
	DB           int           `envconfig:"TDB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TDB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TDB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TDB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TDB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TDB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured at all. The payment
// flow works without one; only the rate limiter needs it.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"TDB_JWT_SECRET"`
	Issuer            string `envconfig:"TDB_JWT_ISSUER" default:"tdb"`
	ExpirationMinutes int    `envconfig:"TDB_JWT_EXPIRATION_MINUTES" default:"60"`
}

// Enabled reports whether tokens can be verified. Checkout is guest-friendly,
// so an empty secret just disables identity attachment.
func (j JWTConfig) Enabled() bool {
	return j.Secret != ""
}

type PayPalConfig struct {
	ClientID       string        `envconfig:"TDB_PAYPAL_CLIENT_ID" required:"true"`
	ClientSecret   string        `envconfig:"TDB_PAYPAL_CLIENT_SECRET" required:"true"`
	Mode           string        `envconfig:"TDB_PAYPAL_MODE" default:"sandbox"`
	RequestTimeout time.Duration `envconfig:"TDB_PAYPAL_REQUEST_TIMEOUT" default:"15s"`
}

// IsLive reports whether the live PayPal environment is bound. Anything other
// than the literal "live" stays in the sandbox.
func (p PayPalConfig) IsLive() bool {
	return strings.EqualFold(strings.TrimSpace(p.Mode), "live")
}

type CheckoutConfig struct {
	ClientURL          string `envconfig:"TDB_CLIENT_URL" default:"http://localhost:3000"`
	BrandName          string `envconfig:"TDB_BRAND_NAME" default:"TDB"`
	DefaultCurrency    string `envconfig:"TDB_DEFAULT_CURRENCY" default:"GBP"`
	DefaultDescription string `envconfig:"TDB_DEFAULT_DESCRIPTION" default:"TDB"`
}

// ReturnURL is where PayPal redirects the shopper after approval.
func (c CheckoutConfig) ReturnURL() string {
	return strings.TrimRight(c.ClientURL, "/") + "/order-success"
}

// CancelURL is where PayPal redirects the shopper after abandoning approval.
func (c CheckoutConfig) CancelURL() string {
	return strings.TrimRight(c.ClientURL, "/") + "/cart"
}

type RateLimitConfig struct {
	Window  time.Duration `envconfig:"TDB_PAYMENTS_RATE_LIMIT_WINDOW" default:"1m"`
	IPLimit int           `envconfig:"TDB_PAYMENTS_RATE_LIMIT_IP_LIMIT" default:"30"`
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
