package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/reconciliation"
)

type ReconciliationJobs struct {
	reconciliationSvc reconciliation.Service
	mode              reconciliation.Mode
	rollingDays       int
	now               func() time.Time
}

func NewReconciliationJobs(
	reconciliationSvc reconciliation.Service,
	mode reconciliation.Mode,
	rollingDays int,
	now func() time.Time,
) *ReconciliationJobs {
	if now == nil {
		now = time.Now
	}
	return &ReconciliationJobs{
		reconciliationSvc: reconciliationSvc,
		mode:              mode,
		rollingDays:       rollingDays,
		now:               now,
	}
}

func (j *ReconciliationJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("reconcile_attendance", interval, j.Reconcile)
}

// Reconcile runs one pass over the configured range. A run already in
// progress is not an error.
func (j *ReconciliationJobs) Reconcile(ctx context.Context) error {
	rng, err := reconciliation.ForMode(j.mode, j.now().UTC(), j.rollingDays)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Cron: Starting reconciliation",
		"mode", j.mode,
		"from", rng.From.Format("2006-01-02"),
		"to", rng.To.Format("2006-01-02"),
	)

	if _, err := j.reconciliationSvc.Run(ctx, rng); err != nil {
		if errors.Is(err, reconciliation.ErrAlreadyRunning) {
			slog.WarnContext(ctx, "Cron: Reconciliation skipped, previous run still active")
			return nil
		}
		return fmt.Errorf("failed to run reconciliation: %w", err)
	}
	return nil
}
