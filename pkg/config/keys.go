package config

import "os"

// EnvPrefix is empty: every variable carries the full TDB_ name in its tag.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names shared with tests and deploy tooling.
const (
	EnvAppEnv           = "TDB_APP_ENV"
	EnvPort             = "TDB_APP_PORT"
	EnvDBDSN            = "TDB_DB_DSN"
	EnvDBHost           = "TDB_DB_HOST"
	EnvDBUser           = "TDB_DB_USER"
	EnvDBName           = "TDB_DB_NAME"
	EnvRedisURL         = "TDB_REDIS_URL"
	EnvJWTSecret        = "TDB_JWT_SECRET"
	EnvJWTIssuer        = "TDB_JWT_ISSUER"
	EnvPayPalClientID   = "TDB_PAYPAL_CLIENT_ID"
	EnvPayPalSecret     = "TDB_PAYPAL_CLIENT_SECRET"
	EnvPayPalMode       = "TDB_PAYPAL_MODE"
	EnvClientURL        = "TDB_CLIENT_URL"
	EnvDefaultCurrency  = "TDB_DEFAULT_CURRENCY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

// Getenv reads a raw environment variable with a fallback, for the few
// settings consumed before or outside Load (log format, platform PORT).
func Getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
