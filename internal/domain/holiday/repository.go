package holiday

import (
	"context"
	"time"
)

// Calendar is the holiday collaborator.
type Calendar interface {
	// ListActive returns active holidays that may cover any day in
	// [from, to], recurring ones included.
	ListActive(ctx context.Context, from, to time.Time) ([]Holiday, error)
}
