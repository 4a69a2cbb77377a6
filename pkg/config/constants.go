package config

const EnvPrefix = "CRAFTBAZAAR"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	LocalDriverMemory   = "memory"
	LocalDriverSQLite   = "sqlite"
	LocalDriverPostgres = "postgres"
	LocalDriverRedis    = "redis"
)

const (
	EnvAppEnv             = "CRAFTBAZAAR_APP_ENV"
	EnvLogLevel           = "CRAFTBAZAAR_LOG_LEVEL"
	EnvAPIBaseURL         = "CRAFTBAZAAR_API_BASE_URL"
	EnvAPITimeout         = "CRAFTBAZAAR_API_TIMEOUT"
	EnvLocalStoreDriver   = "CRAFTBAZAAR_LOCAL_STORE_DRIVER"
	EnvLocalStoreDSN      = "CRAFTBAZAAR_LOCAL_STORE_DSN"
	EnvRedisURL           = "CRAFTBAZAAR_REDIS_URL"
	EnvCatalogFixturePath = "CRAFTBAZAAR_CATALOG_FIXTURE_PATH"
)
