package geofence

import "context"

type Service interface {
	// Evaluate runs the evaluator for the caller without logging anything.
	Evaluate(ctx context.Context, req EvaluateRequest) (Evaluation, error)
	RecordObservation(ctx context.Context, req ObservationRequest) (Observation, error)
	AttachReason(ctx context.Context, req AttachReasonRequest) (Observation, error)
	Review(ctx context.Context, req ReviewRequest) (Observation, error)
	ListMine(ctx context.Context, req ListRequest) ([]Observation, error)
}
