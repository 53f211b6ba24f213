package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/config"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/sse"
)

func TestOpenStorage_SQLite(t *testing.T) {
	cfg := &config.Config{
		Database:     config.DatabaseConfig{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "att.db")},
		Notification: config.NotificationConfig{Workers: 1, QueueSize: 8},
	}
	ctx := context.Background()

	st, err := OpenStorage(ctx, cfg)
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Ping(ctx))

	dispatcher, err := NewDispatcher(cfg, st.Directory, sse.NewHub())
	require.NoError(t, err)

	now := func() time.Time { return time.Date(2025, 6, 12, 8, 0, 0, 0, time.UTC) }
	svcs := NewServices(st, dispatcher, now)

	// a fresh database has no shift config, so the run aborts
	_, err = svcs.Reconciliation.Run(ctx, reconciliation.Range{
		From: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, schedule.ErrConfigMissing)
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	_, err := OpenStorage(context.Background(), &config.Config{Database: config.DatabaseConfig{Driver: "mysql"}})
	assert.Error(t, err)
}
