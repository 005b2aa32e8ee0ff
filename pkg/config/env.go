package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "RIDERS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	DefaultSQLiteDSN = "file:riderschoice.db?_foreign_keys=on"
)

const (
	EnvAppEnv     = "RIDERS_APP_ENV"
	EnvPort       = "RIDERS_APP_PORT"
	EnvLogLevel   = "RIDERS_LOG_LEVEL"
	EnvDBDSN      = "RIDERS_DB_DSN"
	EnvDBDriver   = "RIDERS_DB_DRIVER"
	EnvDBHost     = "RIDERS_DB_HOST"
	EnvDBUser     = "RIDERS_DB_USER"
	EnvDBName     = "RIDERS_DB_NAME"
	EnvRedisURL   = "RIDERS_REDIS_URL"
	EnvJWTSecret  = "RIDERS_JWT_SECRET"
	EnvJWTIssuer  = "RIDERS_JWT_ISSUER"
	EnvJWTExpMins = "RIDERS_JWT_EXPIRATION_MINUTES"

	EnvCORSAllowedOrigins = "RIDERS_CORS_ALLOWED_ORIGINS"
	EnvPubSubOrdersTopic  = "RIDERS_PUBSUB_ORDERS_TOPIC"
	EnvGCPProjectID       = "RIDERS_GCP_PROJECT_ID"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
