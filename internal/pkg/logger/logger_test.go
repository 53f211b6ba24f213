package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/config"
)

func TestNew_WritesJSONWithAppAttrs(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{
		App:       config.AppConfig{Env: "test", LogLevel: "warn"},
		Telemetry: config.TelemetryConfig{ServiceName: "attendance"},
	}
	log := New(&buf, cfg)

	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("stale record skipped", "record_id", "r-1")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "attendance", line["app"])
	assert.Equal(t, "test", line["env"])
	assert.Equal(t, "r-1", line["record_id"])
}
