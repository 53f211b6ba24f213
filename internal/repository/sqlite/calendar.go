package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/leave"
)

type leaveCalendar struct {
	db *sql.DB
}

func NewLeaveCalendar(db *sql.DB) leave.Calendar {
	return &leaveCalendar{db: db}
}

// ListApproved implements leave.Calendar.
func (r *leaveCalendar) ListApproved(ctx context.Context, from, to time.Time) ([]leave.Interval, error) {
	rows, err := getQuerier(ctx, r.db).QueryContext(ctx, `
		SELECT id, employee_id, start_date, end_date, status
		FROM leave_requests
		WHERE status = 'approved' AND start_date <= ? AND end_date >= ?
		ORDER BY start_date ASC`,
		formatDate(to), formatDate(from),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved leave: %w", err)
	}
	defer rows.Close()

	var out []leave.Interval
	for rows.Next() {
		var in leave.Interval
		var start, end, status string
		if err := rows.Scan(&in.ID, &in.EmployeeID, &start, &end, &status); err != nil {
			return nil, fmt.Errorf("failed to scan leave interval: %w", err)
		}
		if in.StartDate, err = parseDate(start); err != nil {
			return nil, err
		}
		if in.EndDate, err = parseDate(end); err != nil {
			return nil, err
		}
		in.Status = leave.RequestStatus(status)
		out = append(out, in)
	}
	return out, rows.Err()
}

type holidayCalendar struct {
	db *sql.DB
}

func NewHolidayCalendar(db *sql.DB) holiday.Calendar {
	return &holidayCalendar{db: db}
}

// ListActive implements holiday.Calendar. Recurring holidays are always
// returned since their stored year is only an anchor.
func (r *holidayCalendar) ListActive(ctx context.Context, from, to time.Time) ([]holiday.Holiday, error) {
	rows, err := getQuerier(ctx, r.db).QueryContext(ctx, `
		SELECT id, name, start_date, end_date, is_active, recurring_yearly
		FROM holidays
		WHERE is_active = 1 AND (recurring_yearly = 1 OR (start_date <= ? AND end_date >= ?))
		ORDER BY start_date ASC`,
		formatDate(to), formatDate(from),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var out []holiday.Holiday
	for rows.Next() {
		var h holiday.Holiday
		var start, end string
		if err := rows.Scan(&h.ID, &h.Name, &start, &end, &h.IsActive, &h.RecurringYearly); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		if h.StartDate, err = parseDate(start); err != nil {
			return nil, err
		}
		if h.EndDate, err = parseDate(end); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
