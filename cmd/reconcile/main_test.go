package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/config"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/schedule"
)

func TestResolveRange(t *testing.T) {
	today := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)
	cfg := config.ReconciliationConfig{Mode: "rolling", Days: 7}

	rng, err := resolveRange(options{from: "2025-06-01", to: "2025-06-05"}, cfg, today)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), rng.To)

	rng, err = resolveRange(options{}, cfg, today)
	require.NoError(t, err)
	assert.Equal(t, reconciliation.Rolling(today, 7), rng)

	rng, err = resolveRange(options{mode: "month_to_date"}, cfg, today)
	require.NoError(t, err)
	assert.Equal(t, reconciliation.MonthToDate(today), rng)

	_, err = resolveRange(options{from: "2025-06-05", to: "2025-06-01"}, cfg, today)
	assert.ErrorIs(t, err, reconciliation.ErrInvalidRange)
}

func TestTodayIn_UsesShiftTimezone(t *testing.T) {
	// 23:30 UTC on the 11th is already the 12th in Jakarta.
	now := time.Date(2025, 6, 11, 23, 30, 0, 0, time.UTC)

	today, err := todayIn(schedule.ShiftConfig{Timezone: "Asia/Jakarta"}, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC), today)

	today, err = todayIn(schedule.ShiftConfig{}, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC), today)

	_, err = todayIn(schedule.ShiftConfig{Timezone: "Mars/Olympus"}, now)
	assert.ErrorIs(t, err, schedule.ErrInvalidTimezone)
}
