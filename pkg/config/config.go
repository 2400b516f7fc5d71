package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Eventing      EventingConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Catalog       CatalogConfig
}

// Load reads the process environment. Every binary calls godotenv first so
// a local .env file can fill in unset variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.resolveDSN(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	return multierr.Combine(
		positive(EnvJWTExpMins, c.JWT.ExpirationMinutes),
		positive("SHOPDESK_OUTBOX_PUBLISH_BATCH_SIZE", c.Outbox.BatchSize),
		positive("SHOPDESK_OUTBOX_MAX_ATTEMPTS", c.Outbox.MaxAttempts),
		positive("SHOPDESK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT", c.AuthRateLimit.LoginIPLimit),
		positive("SHOPDESK_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT", c.AuthRateLimit.RegisterIPLimit),
		c.DB.checkDriver(),
	)
}

func positive(env string, v int) error {
	if v <= 0 {
		return fmt.Errorf("%s must be positive, got %d", env, v)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPDESK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SHOPDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPDESK_LOG_WARN_STACK" default:"false"`
	// MetricsAddr enables a /metrics listener on background workers when set.
	MetricsAddr string `envconfig:"SHOPDESK_METRICS_ADDR"`
	// CORSOrigins is a comma separated allow-list.
	CORSOrigins []string `envconfig:"SHOPDESK_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SHOPDESK_SERVICE_KIND" default:"api"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPDESK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SHOPDESK_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SHOPDESK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SHOPDESK_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SHOPDESK_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SHOPDESK_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SHOPDESK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SHOPDESK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SHOPDESK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SHOPDESK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SHOPDESK_ARGON_KEY_LEN" default:"32"`
	MinLength        int `envconfig:"SHOPDESK_PASSWORD_MIN_LENGTH" default:"8"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SHOPDESK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SHOPDESK_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SHOPDESK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SHOPDESK_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SHOPDESK_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SHOPDESK_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHOPDESK_AUTO_MIGRATE" default:"false"`
	Idempotency bool `envconfig:"SHOPDESK_FEATURE_IDEMPOTENCY" default:"true"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"SHOPDESK_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SHOPDESK_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"SHOPDESK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic              string `envconfig:"SHOPDESK_PUBSUB_DOMAIN_TOPIC" default:"shopdesk-domain-events"`
	NotificationSubscription string `envconfig:"SHOPDESK_PUBSUB_NOTIFICATION_SUBSCRIPTION" default:"shopdesk-notifications"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SHOPDESK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SHOPDESK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SHOPDESK_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (o OutboxConfig) PollInterval() time.Duration {
	return time.Duration(o.PollIntervalMS) * time.Millisecond
}

type CatalogConfig struct {
	MaxFeedBytes int64         `envconfig:"SHOPDESK_CATALOG_MAX_FEED_BYTES" default:"10485760"`
	FetchTimeout time.Duration `envconfig:"SHOPDESK_CATALOG_FETCH_TIMEOUT" default:"30s"`
	FeedDir      string        `envconfig:"SHOPDESK_CATALOG_FEED_DIR" default:"data"`
}
