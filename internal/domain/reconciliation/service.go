package reconciliation

import "context"

// Service runs the reconciliation sweep.
type Service interface {
	Run(ctx context.Context, r Range) (Summary, error)
}
