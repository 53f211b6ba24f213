package logger

import (
	"io"
	"log/slog"

	"github.com/go-chi/httplog/v3"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/config"
)

const version = "v1.0.0"

// New returns a JSON logger using the ECS attribute schema shared with the
// HTTP request logger.
func New(w io.Writer, cfg *config.Config) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.Telemetry.ServiceName),
		slog.String("version", version),
		slog.String("env", cfg.App.Env),
	)
}
