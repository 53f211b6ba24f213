package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
)

type holidayCalendar struct {
	db *database.DB
}

func NewHolidayCalendar(db *database.DB) holiday.Calendar {
	return &holidayCalendar{db: db}
}

// ListActive implements holiday.Calendar.
func (r *holidayCalendar) ListActive(ctx context.Context, from, to time.Time) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, name, start_date, end_date, is_active, recurring_yearly
		FROM holidays
		WHERE is_active = TRUE
		  AND (recurring_yearly OR (start_date <= $2 AND end_date >= $1))
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var out []holiday.Holiday
	for rows.Next() {
		var h holiday.Holiday
		if err := rows.Scan(&h.ID, &h.Name, &h.StartDate, &h.EndDate, &h.IsActive, &h.RecurringYearly); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
