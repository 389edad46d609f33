package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Orders       OrdersConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Outbox       OutboxConfig
	Cron         CronConfig
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
	Env          string `envconfig:"CAMPUSKART_APP_ENV" required:"true"`
	Port         string `envconfig:"CAMPUSKART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CAMPUSKART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CAMPUSKART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CAMPUSKART_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CAMPUSKART_DB_DSN"`
	Driver string `envconfig:"CAMPUSKART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CAMPUSKART_DB_HOST"`
	LegacyPort     int    `envconfig:"CAMPUSKART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CAMPUSKART_DB_USER"`
	LegacyPassword string `envconfig:"CAMPUSKART_DB_PASSWORD"`
	LegacyName     string `envconfig:"CAMPUSKART_DB_NAME"`
	LegacySSLMode  string `envconfig:"CAMPUSKART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CAMPUSKART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CAMPUSKART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CAMPUSKART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CAMPUSKART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CAMPUSKART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CAMPUSKART_REDIS_ADDR"`
	Password     string        `envconfig:"CAMPUSKART_REDIS_PASSWORD"`
	DB           int           `envconfig:"CAMPUSKART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CAMPUSKART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CAMPUSKART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CAMPUSKART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CAMPUSKART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CAMPUSKART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CAMPUSKART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CAMPUSKART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CAMPUSKART_JWT_EXPIRATION_MINUTES" required:"true"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type OrdersConfig struct {
	// PendingConfirmationTTL is how long an order may sit in
	// pending_confirmation before the cron sweep cancels it.
	PendingConfirmationTTL time.Duration `envconfig:"CAMPUSKART_ORDERS_PENDING_CONFIRMATION_TTL" default:"48h"`
	StaleSweepBatchSize    int           `envconfig:"CAMPUSKART_ORDERS_STALE_SWEEP_BATCH_SIZE" default:"200"`
}

type RateLimitConfig struct {
	CheckoutWindow    time.Duration `envconfig:"CAMPUSKART_RATE_LIMIT_CHECKOUT_WINDOW" default:"1m"`
	CheckoutUserLimit int           `envconfig:"CAMPUSKART_RATE_LIMIT_CHECKOUT_USER_LIMIT" default:"10"`
	CheckoutIPLimit   int           `envconfig:"CAMPUSKART_RATE_LIMIT_CHECKOUT_IP_LIMIT" default:"30"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CAMPUSKART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CAMPUSKART_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"CAMPUSKART_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CAMPUSKART_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"CAMPUSKART_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CAMPUSKART_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic               string `envconfig:"CAMPUSKART_PUBSUB_ORDERS_TOPIC" required:"true"`
	NotificationsSubscription string `envconfig:"CAMPUSKART_PUBSUB_NOTIFICATIONS_SUBSCRIPTION" required:"true"`
	AnalyticsSubscription     string `envconfig:"CAMPUSKART_PUBSUB_ANALYTICS_SUBSCRIPTION" required:"true"`
}

type BigQueryConfig struct {
	Dataset          string `envconfig:"CAMPUSKART_BIGQUERY_DATASET" default:"campuskart"`
	OrderEventsTable string `envconfig:"CAMPUSKART_BIGQUERY_ORDER_EVENTS_TABLE" default:"order_events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CAMPUSKART_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CAMPUSKART_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CAMPUSKART_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval              time.Duration `envconfig:"CAMPUSKART_CRON_INTERVAL" default:"24h"`
	NotificationRetention time.Duration `envconfig:"CAMPUSKART_CRON_NOTIFICATION_RETENTION" default:"720h"`
	OutboxRetention       time.Duration `envconfig:"CAMPUSKART_CRON_OUTBOX_RETENTION" default:"168h"`
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
