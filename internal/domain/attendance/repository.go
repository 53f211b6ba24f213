package attendance

import (
	"context"
	"time"
)

// Repository defines data access methods for attendance records. Every write
// is scoped to a single (employee, date) key or a single record id.
type Repository interface {
	// Create inserts a new record, ErrDuplicateDay if one exists for the day.
	Create(ctx context.Context, record Record) (Record, error)

	// CreateIfAbsent inserts the record unless one already exists for
	// (employee, date). It never overwrites and reports whether it inserted.
	CreateIfAbsent(ctx context.Context, record Record) (bool, error)

	// GetByID returns ErrAttendanceNotFound when missing.
	GetByID(ctx context.Context, id string) (Record, error)

	// GetByEmployeeAndDate returns nil when no record exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Record, error)

	// GetOpenByEmployee returns the employee's record that has a check-in and
	// no checkout, or nil.
	GetOpenByEmployee(ctx context.Context, employeeID string) (*Record, error)

	// UpdateIfVersion persists every mutable field when the stored version
	// still equals record.Version, and returns the record with its new
	// version. ErrRecordConflict otherwise.
	UpdateIfVersion(ctx context.Context, record Record) (Record, error)

	// List returns records in [filter.From, filter.To] ordered by date.
	List(ctx context.Context, filter Filter) ([]Record, error)

	// ListInProgressBefore returns in-progress records dated before date.
	ListInProgressBefore(ctx context.Context, date time.Time) ([]Record, error)
}

// Filter narrows List. Zero values mean unbounded.
type Filter struct {
	EmployeeID *string
	From       time.Time
	To         time.Time
	Status     *Status
}
