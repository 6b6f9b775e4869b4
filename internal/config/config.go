package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Backend      BackendConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `envconfig:"APP_NAME" default:"expert-forum"`
	Env                   string `envconfig:"APP_ENV" default:"development"`
	Host                  string `envconfig:"APP_HOST" default:"0.0.0.0"`
	Port                  string `envconfig:"APP_PORT" default:"8080"`
	Version               string `envconfig:"APP_VERSION" default:"dev"`
	RequestTimeoutSeconds int    `envconfig:"HTTP_REQUEST_TIMEOUT_SECONDS" default:"30"`
}

// BackendConfig points at the external forum backend API.
type BackendConfig struct {
	BaseURL        string `envconfig:"BACKEND_BASE_URL" default:"http://127.0.0.1:4000/api"`
	TimeoutSeconds int    `envconfig:"BACKEND_TIMEOUT_SECONDS" default:"10"`
	UserAgent      string `envconfig:"BACKEND_USER_AGENT" default:"expert-forum/1.0"`
}

// PostgresConfig holds DB connection values for the moderation log.
type PostgresConfig struct {
	DSN            string `envconfig:"POSTGRES_DSN"`
	MaxConns       int32  `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
	MinConns       int32  `envconfig:"POSTGRES_MIN_CONNS" default:"2"`
	RunMigrations  bool   `envconfig:"POSTGRES_RUN_MIGRATIONS" default:"true"`
	ConnMaxIdleSec int32  `envconfig:"POSTGRES_CONN_MAX_IDLE_SECONDS" default:"30"`
	ConnMaxLifeSec int32  `envconfig:"POSTGRES_CONN_MAX_LIFE_SECONDS" default:"300"`
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr               string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	Password           string `envconfig:"REDIS_PASSWORD"`
	DB                 int    `envconfig:"REDIS_DB" default:"0"`
	QuestionTTLSeconds int    `envconfig:"REDIS_QUESTION_TTL_SECONDS" default:"30"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// AuthConfig defines how viewer identities are read from backend-issued tokens.
type AuthConfig struct {
	JWTSecret  string `envconfig:"AUTH_JWT_SECRET" default:"dev-secret"`
	CookieName string `envconfig:"AUTH_COOKIE_NAME" default:"token"`
}

// NotificationConfig holds outbound notification endpoints.
type NotificationConfig struct {
	EmailFrom  string `envconfig:"NOTIFY_EMAIL_FROM" default:"noreply@example.com"`
	WebhookURL string `envconfig:"NOTIFY_WEBHOOK_URL"`
}

// Load reads configuration from environment variables (and an optional .env
// file), applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	sections := []struct {
		name   string
		target any
	}{
		{"app", &cfg.App},
		{"backend", &cfg.Backend},
		{"postgres", &cfg.Postgres},
		{"redis", &cfg.Redis},
		{"logger", &cfg.Logger},
		{"auth", &cfg.Auth},
		{"notification", &cfg.Notification},
	}
	for _, s := range sections {
		if err := envconfig.Process("", s.target); err != nil {
			return nil, fmt.Errorf("load %s config: %w", s.name, err)
		}
	}

	if cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf("BACKEND_BASE_URL must be set")
	}
	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the per-call timeout for backend requests.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// QuestionTTL returns how long question bundles stay cached.
func (r RedisConfig) QuestionTTL() time.Duration {
	if r.QuestionTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(r.QuestionTTLSeconds) * time.Second
}
