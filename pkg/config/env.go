package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "CONFIGURATOR"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DraftsDriverRedis    = "redis"
	DraftsDriverPostgres = "postgres"
	DraftsDriverMemory   = "memory"
)

const (
	EnvAppEnv       = "CONFIGURATOR_APP_ENV"
	EnvPort         = "CONFIGURATOR_APP_PORT"
	EnvLogLevel     = "CONFIGURATOR_LOG_LEVEL"
	EnvDBDSN        = "CONFIGURATOR_DB_DSN"
	EnvDBHost       = "CONFIGURATOR_DB_HOST"
	EnvDBUser       = "CONFIGURATOR_DB_USER"
	EnvDBName       = "CONFIGURATOR_DB_NAME"
	EnvDBPassword   = "CONFIGURATOR_DB_PASSWORD"
	EnvRedisURL     = "CONFIGURATOR_REDIS_URL"
	EnvDraftsDriver = "CONFIGURATOR_DRAFTS_DRIVER"
	EnvCodeTTL      = "CONFIGURATOR_VERIFICATION_CODE_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
