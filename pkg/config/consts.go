package config

const (
	// EnvPrefix is the envconfig prefix shared by every setting.
	EnvPrefix = "RICESTORE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "RICESTORE_APP_ENV"
	EnvPort   = "RICESTORE_APP_PORT"

	EnvDBDSN  = "RICESTORE_DB_DSN"
	EnvDBHost = "RICESTORE_DB_HOST"
	EnvDBUser = "RICESTORE_DB_USER"
	EnvDBName = "RICESTORE_DB_NAME"

	EnvRedisURL               = "RICESTORE_REDIS_URL"
	EnvJWTSecret              = "RICESTORE_JWT_SECRET"
	EnvJWTIssuer              = "RICESTORE_JWT_ISSUER"
	EnvJWTExpMins             = "RICESTORE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "RICESTORE_REFRESH_TOKEN_TTL_MINUTES"
)

// legacyDBEnvVars are the discrete connection settings accepted in place of a
// full DSN.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
