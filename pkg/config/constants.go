package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "TOKOPOS"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names shared by Load and the test helpers.
const (
	EnvAppEnv   = "TOKOPOS_APP_ENV"
	EnvPort     = "TOKOPOS_APP_PORT"
	EnvLogLevel = "TOKOPOS_LOG_LEVEL"

	EnvDBDSN      = "TOKOPOS_DB_DSN"
	EnvDBHost     = "TOKOPOS_DB_HOST"
	EnvDBPort     = "TOKOPOS_DB_PORT"
	EnvDBUser     = "TOKOPOS_DB_USER"
	EnvDBPassword = "TOKOPOS_DB_PASSWORD"
	EnvDBName     = "TOKOPOS_DB_NAME"

	EnvRedisURL = "TOKOPOS_REDIS_URL"

	EnvJWTSecret  = "TOKOPOS_JWT_SECRET"
	EnvJWTIssuer  = "TOKOPOS_JWT_ISSUER"
	EnvJWTExpMins = "TOKOPOS_JWT_EXPIRATION_MINUTES"

	EnvGatewayBaseURL   = "TOKOPOS_GATEWAY_BASE_URL"
	EnvGatewayServerKey = "TOKOPOS_GATEWAY_SERVER_KEY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
