package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "EVENTUNE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, errors).
const (
	EnvAppEnv   = "EVENTUNE_APP_ENV"
	EnvPort     = "EVENTUNE_APP_PORT"
	EnvDBDSN    = "EVENTUNE_DB_DSN"
	EnvDBHost   = "EVENTUNE_DB_HOST"
	EnvDBUser   = "EVENTUNE_DB_USER"
	EnvDBName   = "EVENTUNE_DB_NAME"
	EnvRedisURL = "EVENTUNE_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Stripe   StripeConfig
	NotchPay NotchPayConfig
	GCP      GCPConfig
	PubSub   PubSubConfig
	Mail     MailConfig
	Webhook  WebhookConfig
	Features FeatureFlagsConfig
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
	Env          string `envconfig:"EVENTUNE_APP_ENV" required:"true"`
	Port         string `envconfig:"EVENTUNE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"EVENTUNE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EVENTUNE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"EVENTUNE_DB_DSN"`
	Driver string `envconfig:"EVENTUNE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"EVENTUNE_DB_HOST"`
	LegacyPort     int    `envconfig:"EVENTUNE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"EVENTUNE_DB_USER"`
	LegacyPassword string `envconfig:"EVENTUNE_DB_PASSWORD"`
	LegacyName     string `envconfig:"EVENTUNE_DB_NAME"`
	LegacySSLMode  string `envconfig:"EVENTUNE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"EVENTUNE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EVENTUNE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EVENTUNE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EVENTUNE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"EVENTUNE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"EVENTUNE_REDIS_ADDR"`
	Password     string        `envconfig:"EVENTUNE_REDIS_PASSWORD"`
	DB           int           `envconfig:"EVENTUNE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EVENTUNE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EVENTUNE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EVENTUNE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EVENTUNE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EVENTUNE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"EVENTUNE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"EVENTUNE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"EVENTUNE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type StripeConfig struct {
	APIKey string `envconfig:"EVENTUNE_STRIPE_API_KEY"`
	Secret string `envconfig:"EVENTUNE_STRIPE_WEBHOOK_SECRET"`
	Env    string `envconfig:"EVENTUNE_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type NotchPayConfig struct {
	PublicKey     string `envconfig:"EVENTUNE_NOTCHPAY_PUBLIC_KEY"`
	WebhookSecret string `envconfig:"EVENTUNE_NOTCHPAY_WEBHOOK_SECRET"`
	BaseURL       string `envconfig:"EVENTUNE_NOTCHPAY_BASE_URL" default:"https://api.notchpay.co"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"EVENTUNE_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"EVENTUNE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"EVENTUNE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"EVENTUNE_PUBSUB_NOTIFICATION_TOPIC" default:"et-notification-events"`
	NotificationSubscription string `envconfig:"EVENTUNE_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type MailConfig struct {
	Host     string `envconfig:"EVENTUNE_SMTP_HOST"`
	Port     int    `envconfig:"EVENTUNE_SMTP_PORT" default:"587"`
	Username string `envconfig:"EVENTUNE_SMTP_USERNAME"`
	Password string `envconfig:"EVENTUNE_SMTP_PASSWORD"`
	From     string `envconfig:"EVENTUNE_MAIL_FROM" default:"hello@eventune.app"`
}

type WebhookConfig struct {
	IdempotencyTTL time.Duration `envconfig:"EVENTUNE_WEBHOOK_IDEMPOTENCY_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"EVENTUNE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"EVENTUNE_AUTO_MIGRATE" default:"false"`
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
