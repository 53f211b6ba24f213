package leave

import "time"

type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusCancelled RequestStatus = "cancelled"
)

// Interval is an approved leave spanning StartDate through EndDate inclusive.
type Interval struct {
	ID         string
	EmployeeID string
	StartDate  time.Time
	EndDate    time.Time
	Status     RequestStatus
}

// Covers reports whether the interval includes the calendar date of day.
func (i Interval) Covers(day time.Time) bool {
	d := dateKey(day)
	return dateKey(i.StartDate) <= d && d <= dateKey(i.EndDate)
}

func dateKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
