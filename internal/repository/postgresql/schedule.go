package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type shiftConfigRepository struct {
	db *database.DB
}

func NewShiftConfigRepository(db *database.DB) schedule.Repository {
	return &shiftConfigRepository{db: db}
}

func toWeekdays(days []int32) []time.Weekday {
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		out = append(out, time.Weekday(d))
	}
	return out
}

// Get implements schedule.Repository. The most recently updated row wins.
func (r *shiftConfigRepository) Get(ctx context.Context) (schedule.ShiftConfig, error) {
	q := GetQuerier(ctx, r.db)

	var cfg schedule.ShiftConfig
	var checkIn, checkOut string
	var workingDays []int32

	err := q.QueryRow(ctx, `
		SELECT id, timezone, check_in_time, check_out_time, working_days,
		       full_day_hours, half_day_hours, grace_period_minutes, updated_at
		FROM shift_configs
		ORDER BY updated_at DESC
		LIMIT 1
	`).Scan(
		&cfg.ID, &cfg.Timezone, &checkIn, &checkOut, &workingDays,
		&cfg.FullDayHours, &cfg.HalfDayHours, &cfg.GracePeriodMinutes, &cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.ShiftConfig{}, schedule.ErrConfigMissing
		}
		return schedule.ShiftConfig{}, fmt.Errorf("failed to get shift config: %w", err)
	}

	if cfg.CheckIn, err = schedule.ParseClockTime(checkIn); err != nil {
		return schedule.ShiftConfig{}, err
	}
	if cfg.CheckOut, err = schedule.ParseClockTime(checkOut); err != nil {
		return schedule.ShiftConfig{}, err
	}
	cfg.WorkingDays = toWeekdays(workingDays)

	rows, err := q.Query(ctx, `
		SELECT id, name, start_time, end_time, is_active, weekdays
		FROM break_windows
		WHERE shift_config_id = $1
		ORDER BY sort_order ASC, start_time ASC
	`, cfg.ID)
	if err != nil {
		return schedule.ShiftConfig{}, fmt.Errorf("failed to list break windows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b schedule.BreakWindow
		var start, end string
		var weekdays []int32
		if err := rows.Scan(&b.ID, &b.Name, &start, &end, &b.IsActive, &weekdays); err != nil {
			return schedule.ShiftConfig{}, fmt.Errorf("failed to scan break window: %w", err)
		}
		if b.Start, err = schedule.ParseClockTime(start); err != nil {
			return schedule.ShiftConfig{}, err
		}
		if b.End, err = schedule.ParseClockTime(end); err != nil {
			return schedule.ShiftConfig{}, err
		}
		b.Weekdays = toWeekdays(weekdays)
		cfg.Breaks = append(cfg.Breaks, b)
	}
	if err := rows.Err(); err != nil {
		return schedule.ShiftConfig{}, fmt.Errorf("failed to iterate break windows: %w", err)
	}

	return cfg, nil
}
