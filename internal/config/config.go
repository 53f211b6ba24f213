package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	App            AppConfig
	Database       DatabaseConfig
	JWT            JWTConfig
	CORS           CORSConfig
	Reconciliation ReconciliationConfig
	Notification   NotificationConfig
	SMTP           SMTPConfig
	Telegram       TelegramConfig
	Telemetry      TelemetryConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int    `env:"APP_PORT" envDefault:"8080"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type DatabaseConfig struct {
	Driver     string `env:"DB_DRIVER" envDefault:"postgres"`
	Host       string `env:"DB_HOST" envDefault:"localhost"`
	Port       int    `env:"DB_PORT" envDefault:"5432"`
	User       string `env:"DB_USER" envDefault:"postgres"`
	Password   string `env:"DB_PASSWORD"`
	Name       string `env:"DB_NAME" envDefault:"hris_attendance"`
	SSLMode    string `env:"DB_SSL_MODE" envDefault:"disable"`
	SQLitePath string `env:"DB_SQLITE_PATH" envDefault:"attendance.db"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string        `env:"JWT_SECRET_KEY"`
	AccessExpiration time.Duration `env:"JWT_ACCESS_EXPIRATION_TIME" envDefault:"1h"`
	AcceptableSkew   time.Duration `env:"JWT_ACCEPTABLE_SKEW" envDefault:"30s"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// ReconciliationConfig drives the scheduled reconciliation job. Mode is
// "month_to_date" or "rolling"; Days applies to rolling.
type ReconciliationConfig struct {
	Enabled  bool          `env:"RECONCILE_ENABLED" envDefault:"true"`
	Mode     string        `env:"RECONCILE_RANGE_MODE" envDefault:"month_to_date"`
	Days     int           `env:"RECONCILE_DAYS" envDefault:"7"`
	Interval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"24h"`
}

type NotificationConfig struct {
	Workers   int `env:"NOTIFY_WORKERS" envDefault:"2"`
	QueueSize int `env:"NOTIFY_QUEUE_SIZE" envDefault:"1000"`
}

// SMTPConfig holds outgoing mail settings. An empty Host disables email.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM" envDefault:"noreply@localhost"`
	FromName string `env:"SMTP_FROM_NAME" envDefault:"HRIS Attendance"`
}

// TelegramConfig enables the Telegram sink when Token is set.
type TelegramConfig struct {
	Token     string `env:"TELEGRAM_BOT_TOKEN"`
	OpsChatID int64  `env:"TELEGRAM_OPS_CHAT_ID"`
}

type TelemetryConfig struct {
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"hris-attendance-engine"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads .env when present and parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	} else if err != nil {
		slog.Debug("No .env file found, using process environment")
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("DB_SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	switch c.Reconciliation.Mode {
	case "month_to_date":
	case "rolling":
		if c.Reconciliation.Days <= 0 {
			return fmt.Errorf("RECONCILE_DAYS must be positive")
		}
	default:
		return fmt.Errorf("RECONCILE_RANGE_MODE must be month_to_date or rolling, got %q", c.Reconciliation.Mode)
	}
	if c.Reconciliation.Enabled && c.Reconciliation.Interval <= 0 {
		return fmt.Errorf("RECONCILE_INTERVAL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
