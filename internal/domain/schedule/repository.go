package schedule

import "context"

// Repository reads the shift configuration. Get returns ErrConfigMissing
// when nothing is configured.
type Repository interface {
	Get(ctx context.Context) (ShiftConfig, error)
}
