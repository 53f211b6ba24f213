package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test,https://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "attendance.db", cfg.Database.SQLitePath)
	assert.Equal(t, time.Hour, cfg.JWT.AccessExpiration)
	assert.Equal(t, 30*time.Second, cfg.JWT.AcceptableSkew)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "month_to_date", cfg.Reconciliation.Mode)
	assert.Equal(t, 24*time.Hour, cfg.Reconciliation.Interval)
	assert.Equal(t, 1000, cfg.Notification.QueueSize)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown driver", map[string]string{"DB_DRIVER": "mysql", "JWT_SECRET_KEY": "s"}, "DB_DRIVER"},
		{"postgres without password", map[string]string{"DB_DRIVER": "postgres", "JWT_SECRET_KEY": "s"}, "DB_PASSWORD"},
		{"missing secret", map[string]string{"DB_DRIVER": "sqlite"}, "JWT_SECRET_KEY"},
		{"bad mode", map[string]string{"DB_DRIVER": "sqlite", "JWT_SECRET_KEY": "s", "RECONCILE_RANGE_MODE": "weekly"}, "RECONCILE_RANGE_MODE"},
		{"rolling without days", map[string]string{"DB_DRIVER": "sqlite", "JWT_SECRET_KEY": "s", "RECONCILE_RANGE_MODE": "rolling", "RECONCILE_DAYS": "0"}, "RECONCILE_DAYS"},
		{"bad duration", map[string]string{"DB_DRIVER": "sqlite", "JWT_SECRET_KEY": "s", "RECONCILE_INTERVAL": "soon"}, "failed to parse environment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET_KEY", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{User: "u", Password: "p", Host: "db", Port: 5433, Name: "att", SSLMode: "require"}}
	assert.Equal(t, "postgres://u:p@db:5433/att?sslmode=require", cfg.DatabaseURL())
}
