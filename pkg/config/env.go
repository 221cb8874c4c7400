package config

// EnvPrefix scopes envconfig lookups. Every field also carries its full name in
// the envconfig tag, which envconfig falls back to.
const EnvPrefix = "DRONEMART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv          = "DRONEMART_APP_ENV"
	EnvPort            = "DRONEMART_APP_PORT"
	EnvDBDSN           = "DRONEMART_DB_DSN"
	EnvDBHost          = "DRONEMART_DB_HOST"
	EnvDBUser          = "DRONEMART_DB_USER"
	EnvDBPassword      = "DRONEMART_DB_PASSWORD"
	EnvDBName          = "DRONEMART_DB_NAME"
	EnvRedisURL        = "DRONEMART_REDIS_URL"
	EnvJWTSecret       = "DRONEMART_JWT_SECRET"
	EnvJWTIssuer       = "DRONEMART_JWT_ISSUER"
	EnvJWTExpMins      = "DRONEMART_JWT_EXPIRATION_MINUTES"
	EnvGCSBucket       = "DRONEMART_GCS_BUCKET_NAME"
	EnvCatalogCacheTTL = "DRONEMART_CATALOG_CACHE_TTL"
	EnvCheckoutAtomic  = "DRONEMART_CHECKOUT_ATOMIC"
	EnvOrdersTopic     = "DRONEMART_PUBSUB_ORDERS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
