package config

// EnvPrefix is passed to envconfig.Process; individual fields carry
// fully-qualified names in their tags so the prefix only matters for
// fields without an explicit override.
const EnvPrefix = "campuskart"

// Recognized values for CAMPUSKART_APP_ENV.
const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names, kept as constants so error messages and
// tests never drift from the struct tags.
const (
	EnvAppEnv       = "CAMPUSKART_APP_ENV"
	EnvPort         = "CAMPUSKART_APP_PORT"
	EnvLogLevel     = "CAMPUSKART_LOG_LEVEL"
	EnvLogWarnStack = "CAMPUSKART_LOG_WARN_STACK"
	EnvServiceKind  = "CAMPUSKART_SERVICE_KIND"

	EnvDBDSN      = "CAMPUSKART_DB_DSN"
	EnvDBDriver   = "CAMPUSKART_DB_DRIVER"
	EnvDBHost     = "CAMPUSKART_DB_HOST"
	EnvDBPort     = "CAMPUSKART_DB_PORT"
	EnvDBUser     = "CAMPUSKART_DB_USER"
	EnvDBPassword = "CAMPUSKART_DB_PASSWORD"
	EnvDBName     = "CAMPUSKART_DB_NAME"
	EnvDBSSLMode  = "CAMPUSKART_DB_SSLMODE"

	EnvRedisURL = "CAMPUSKART_REDIS_URL"

	EnvJWTSecret  = "CAMPUSKART_JWT_SECRET"
	EnvJWTIssuer  = "CAMPUSKART_JWT_ISSUER"
	EnvJWTExpMins = "CAMPUSKART_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID = "CAMPUSKART_GCP_PROJECT_ID"

	EnvPubSubOrdersTopic      = "CAMPUSKART_PUBSUB_ORDERS_TOPIC"
	EnvPubSubNotificationsSub = "CAMPUSKART_PUBSUB_NOTIFICATIONS_SUBSCRIPTION"
	EnvPubSubAnalyticsSub     = "CAMPUSKART_PUBSUB_ANALYTICS_SUBSCRIPTION"

	EnvBigQueryDataset     = "CAMPUSKART_BIGQUERY_DATASET"
	EnvBigQueryOrdersTable = "CAMPUSKART_BIGQUERY_ORDER_EVENTS_TABLE"
)

// legacyDBEnvVars are the discrete connection variables required when
// CAMPUSKART_DB_DSN is not provided.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
