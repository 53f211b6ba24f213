package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
)

type leaveCalendar struct {
	db *database.DB
}

func NewLeaveCalendar(db *database.DB) leave.Calendar {
	return &leaveCalendar{db: db}
}

// ListApproved implements leave.Calendar.
func (r *leaveCalendar) ListApproved(ctx context.Context, from, to time.Time) ([]leave.Interval, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, employee_id, start_date, end_date, status
		FROM leave_requests
		WHERE status = 'approved' AND start_date <= $2 AND end_date >= $1
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved leave: %w", err)
	}
	defer rows.Close()

	var out []leave.Interval
	for rows.Next() {
		var i leave.Interval
		var status string
		if err := rows.Scan(&i.ID, &i.EmployeeID, &i.StartDate, &i.EndDate, &status); err != nil {
			return nil, fmt.Errorf("failed to scan leave interval: %w", err)
		}
		i.Status = leave.RequestStatus(status)
		out = append(out, i)
	}
	return out, rows.Err()
}
