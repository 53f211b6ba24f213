package attendance

import (
	"context"
	"time"
)

// Service is the attendance record store.
type Service interface {
	// OpenDay records a check-in and creates the day's record.
	OpenDay(ctx context.Context, req OpenDayRequest) (Record, error)

	// CloseDay records a checkout on the employee's open record and derives
	// work hours and status.
	CloseDay(ctx context.Context, req CloseDayRequest) (Record, error)

	// UpsertAbsent creates an absent record unless one exists for the day.
	UpsertAbsent(ctx context.Context, employeeID string, date time.Time) (bool, error)

	// Get returns one record visible to the caller.
	Get(ctx context.Context, id string) (Record, error)

	// List returns records for one employee visible to the caller.
	List(ctx context.Context, req ListRequest) ([]Record, error)
}
