package correction

import "context"

// Service is the correction workflow.
type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (Request, error)
	Review(ctx context.Context, req ReviewRequest) (Request, error)
	Get(ctx context.Context, id string) (Request, error)
	ListMine(ctx context.Context) ([]Request, error)
	ListPendingForReviewer(ctx context.Context) ([]Request, error)
}
