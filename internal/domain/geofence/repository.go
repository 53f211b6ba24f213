package geofence

import (
	"context"
	"time"
)

type ZoneRepository interface {
	ListActive(ctx context.Context) ([]Zone, error)
}

type ObservationRepository interface {
	Create(ctx context.Context, obs Observation) (Observation, error)

	// GetByID returns ErrObservationNotFound when missing.
	GetByID(ctx context.Context, id string) (Observation, error)

	// AttachRequest stores a pending request on an observation that has
	// none, ErrRequestExists otherwise.
	AttachRequest(ctx context.Context, id string, req OutOfPremisesRequest) error

	// DecideRequest stores the decision when the embedded request is still
	// pending, ErrAlreadyProcessed otherwise.
	DecideRequest(ctx context.Context, id string, req OutOfPremisesRequest) error

	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]Observation, error)
}
