package config

const EnvPrefix = "SHOPDESK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv                 = "SHOPDESK_APP_ENV"
	EnvPort                   = "SHOPDESK_APP_PORT"
	EnvDBDSN                  = "SHOPDESK_DB_DSN"
	EnvDBDriver               = "SHOPDESK_DB_DRIVER"
	EnvDBHost                 = "SHOPDESK_DB_HOST"
	EnvDBUser                 = "SHOPDESK_DB_USER"
	EnvDBName                 = "SHOPDESK_DB_NAME"
	EnvDBPassword             = "SHOPDESK_DB_PASSWORD"
	EnvRedisURL               = "SHOPDESK_REDIS_URL"
	EnvJWTSecret              = "SHOPDESK_JWT_SECRET"
	EnvJWTIssuer              = "SHOPDESK_JWT_ISSUER"
	EnvJWTExpMins             = "SHOPDESK_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SHOPDESK_REFRESH_TOKEN_TTL_MINUTES"
	EnvGCPProjectID           = "SHOPDESK_GCP_PROJECT_ID"
	EnvPubSubDomainTopic      = "SHOPDESK_PUBSUB_DOMAIN_TOPIC"
	EnvCatalogMaxFeedBytes    = "SHOPDESK_CATALOG_MAX_FEED_BYTES"
)
