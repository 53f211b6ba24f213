package leave

import (
	"context"
	"time"
)

// Calendar is the leave collaborator.
type Calendar interface {
	// ListApproved returns approved leave overlapping [from, to].
	ListApproved(ctx context.Context, from, to time.Time) ([]Interval, error)
}
