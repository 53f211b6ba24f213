package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/schedule"
)

type shiftConfigRepository struct {
	db *sql.DB
}

func NewShiftConfigRepository(db *sql.DB) schedule.Repository {
	return &shiftConfigRepository{db: db}
}

func decodeWeekdays(raw string) ([]time.Weekday, error) {
	var days []int
	if err := json.Unmarshal([]byte(raw), &days); err != nil {
		return nil, fmt.Errorf("invalid weekday list %q: %w", raw, err)
	}
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		out = append(out, time.Weekday(d))
	}
	return out, nil
}

// Get implements schedule.Repository. The most recently updated row wins.
func (r *shiftConfigRepository) Get(ctx context.Context) (schedule.ShiftConfig, error) {
	q := getQuerier(ctx, r.db)

	var cfg schedule.ShiftConfig
	var checkIn, checkOut, workingDays string
	var updatedAt int64

	err := q.QueryRowContext(ctx, `
		SELECT id, timezone, check_in_time, check_out_time, working_days,
		       full_day_hours, half_day_hours, grace_period_minutes, updated_at
		FROM shift_configs
		ORDER BY updated_at DESC
		LIMIT 1`,
	).Scan(
		&cfg.ID, &cfg.Timezone, &checkIn, &checkOut, &workingDays,
		&cfg.FullDayHours, &cfg.HalfDayHours, &cfg.GracePeriodMinutes, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return schedule.ShiftConfig{}, schedule.ErrConfigMissing
		}
		return schedule.ShiftConfig{}, fmt.Errorf("failed to get shift config: %w", err)
	}
	cfg.UpdatedAt = fromMillis(updatedAt)

	if cfg.CheckIn, err = schedule.ParseClockTime(checkIn); err != nil {
		return schedule.ShiftConfig{}, err
	}
	if cfg.CheckOut, err = schedule.ParseClockTime(checkOut); err != nil {
		return schedule.ShiftConfig{}, err
	}
	if cfg.WorkingDays, err = decodeWeekdays(workingDays); err != nil {
		return schedule.ShiftConfig{}, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, name, start_time, end_time, is_active, weekdays
		FROM break_windows
		WHERE shift_config_id = ?
		ORDER BY sort_order ASC, start_time ASC`, cfg.ID)
	if err != nil {
		return schedule.ShiftConfig{}, fmt.Errorf("failed to list break windows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b schedule.BreakWindow
		var start, end, weekdays string
		if err := rows.Scan(&b.ID, &b.Name, &start, &end, &b.IsActive, &weekdays); err != nil {
			return schedule.ShiftConfig{}, fmt.Errorf("failed to scan break window: %w", err)
		}
		if b.Start, err = schedule.ParseClockTime(start); err != nil {
			return schedule.ShiftConfig{}, err
		}
		if b.End, err = schedule.ParseClockTime(end); err != nil {
			return schedule.ShiftConfig{}, err
		}
		if b.Weekdays, err = decodeWeekdays(weekdays); err != nil {
			return schedule.ShiftConfig{}, err
		}
		cfg.Breaks = append(cfg.Breaks, b)
	}
	if err := rows.Err(); err != nil {
		return schedule.ShiftConfig{}, fmt.Errorf("failed to iterate break windows: %w", err)
	}

	return cfg, nil
}
