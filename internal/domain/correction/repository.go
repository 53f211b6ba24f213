package correction

import "context"

type Repository interface {
	// Create returns ErrDuplicatePending when the record already has a
	// pending request.
	Create(ctx context.Context, req Request) (Request, error)

	// GetByID returns ErrCorrectionNotFound when missing.
	GetByID(ctx context.Context, id string) (Request, error)

	HasPending(ctx context.Context, attendanceID string) (bool, error)

	// Decide moves a pending request to req.Status and stores the reviewer,
	// comments and applied snapshot. The write is conditional on the stored
	// status still being pending, ErrAlreadyProcessed otherwise.
	Decide(ctx context.Context, req Request) error

	List(ctx context.Context, filter Filter) ([]Request, error)
}

type Filter struct {
	EmployeeID *string
	Status     *Status
}
