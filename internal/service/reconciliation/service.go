package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/service/workhours"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const dateLayout = "2006-01-02"

var tracer = otel.Tracer("github.com/cmlabs-hris/hris-attendance-engine/internal/service/reconciliation")

type ReconciliationServiceImpl struct {
	records    attendance.Repository
	attendance attendance.Service
	shifts     schedule.Repository
	directory  employee.Directory
	leaves     leave.Calendar
	holidays   holiday.Calendar
	notifier   notification.Notifier
	now        func() time.Time

	running sync.Mutex
}

// inputs is everything a run loads before touching any record.
type inputs struct {
	calc     *workhours.Calculator
	roster   []employee.Employee
	holidays []holiday.Holiday
	leaves   []leave.Interval
	now      time.Time
	today    time.Time
	backfill reconciliation.Range
	empty    bool
}

// Run implements reconciliation.Service. It closes stale in-progress records
// and backfills absences over r, clamped to yesterday in the reference time
// zone. Failures on single items are logged and counted.
func (s *ReconciliationServiceImpl) Run(ctx context.Context, r reconciliation.Range) (summary reconciliation.Summary, err error) {
	if r.To.Before(r.From) {
		return reconciliation.Summary{}, reconciliation.ErrInvalidRange
	}
	if !s.running.TryLock() {
		return reconciliation.Summary{}, reconciliation.ErrAlreadyRunning
	}
	defer s.running.Unlock()

	ctx, span := tracer.Start(ctx, "reconciliation.Run", trace.WithAttributes(
		attribute.String("reconciliation.from", r.From.Format(dateLayout)),
		attribute.String("reconciliation.to", r.To.Format(dateLayout)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	summary.StartedAt = s.now().UTC()

	in, err := s.load(ctx, r)
	if err != nil {
		slog.ErrorContext(ctx, "reconciliation aborted", "error", err)
		return reconciliation.Summary{}, err
	}
	summary.From, summary.To = in.backfill.From, in.backfill.To

	s.closeStale(ctx, in, &summary)
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	if !in.empty {
		if err := s.backfill(ctx, in, &summary); err != nil {
			return summary, err
		}
	}

	summary.FinishedAt = s.now().UTC()
	span.SetAttributes(
		attribute.Int("reconciliation.stale_closed", summary.StaleClosed),
		attribute.Int("reconciliation.absent_created", summary.AbsentCreated),
		attribute.Int("reconciliation.failed", summary.Failed+summary.StaleFailed),
	)
	slog.InfoContext(ctx, "reconciliation completed",
		"from", summary.From.Format(dateLayout),
		"to", summary.To.Format(dateLayout),
		"stale_closed", summary.StaleClosed,
		"stale_skipped", summary.StaleSkipped,
		"stale_failed", summary.StaleFailed,
		"absent_created", summary.AbsentCreated,
		"absent_existing", summary.AbsentExisting,
		"skipped_days", summary.SkippedDays,
		"skipped_leave", summary.SkippedLeave,
		"failed", summary.Failed,
	)
	s.notifyCompleted(ctx, summary)
	return summary, nil
}

func (s *ReconciliationServiceImpl) load(ctx context.Context, r reconciliation.Range) (inputs, error) {
	cfg, err := s.shifts.Get(ctx)
	if err != nil {
		if errors.Is(err, schedule.ErrConfigMissing) {
			return inputs{}, err
		}
		return inputs{}, fmt.Errorf("failed to load shift config: %w", err)
	}
	calc, err := workhours.NewCalculator(cfg)
	if err != nil {
		return inputs{}, err
	}

	roster, err := s.directory.ListActive(ctx)
	if err != nil {
		return inputs{}, fmt.Errorf("failed to load employee roster: %w", err)
	}

	now := s.now()
	today := calc.DayOf(now)
	backfill := reconciliation.Range{From: r.From, To: r.To}
	if yesterday := today.AddDate(0, 0, -1); backfill.To.After(yesterday) {
		backfill.To = yesterday
	}
	in := inputs{
		calc:     calc,
		roster:   roster,
		now:      now,
		today:    today,
		backfill: backfill,
		empty:    backfill.To.Before(backfill.From),
	}
	if in.empty {
		return in, nil
	}

	if in.holidays, err = s.holidays.ListActive(ctx, backfill.From, backfill.To); err != nil {
		return inputs{}, fmt.Errorf("failed to load holidays: %w", err)
	}
	if in.leaves, err = s.leaves.ListApproved(ctx, backfill.From, backfill.To); err != nil {
		return inputs{}, fmt.Errorf("failed to load approved leave: %w", err)
	}
	return in, nil
}

// closeStale closes every in-progress record dated before today at the
// scheduled checkout of its date, or at its check-in when that is later.
func (s *ReconciliationServiceImpl) closeStale(ctx context.Context, in inputs, summary *reconciliation.Summary) {
	stale, err := s.records.ListInProgressBefore(ctx, in.today)
	if err != nil {
		summary.StaleFailed++
		slog.ErrorContext(ctx, "failed to list stale attendance", "error", err)
		return
	}

	for _, rec := range stale {
		if ctx.Err() != nil {
			return
		}
		// An overnight shift that started yesterday is still live.
		if in.calc.ScheduledCheckOut(rec.Date).After(in.now) {
			summary.StaleSkipped++
			slog.InfoContext(ctx, "attendance shift has not ended yet, skipped",
				"attendance_id", rec.ID, "employee_id", rec.EmployeeID)
			continue
		}
		err := s.closeOne(ctx, in.calc, rec)
		switch {
		case err == nil:
			summary.StaleClosed++
		case errors.Is(err, attendance.ErrRecordConflict):
			summary.StaleSkipped++
			slog.InfoContext(ctx, "stale attendance changed concurrently, skipped",
				"attendance_id", rec.ID, "employee_id", rec.EmployeeID)
		default:
			summary.StaleFailed++
			slog.ErrorContext(ctx, "failed to close stale attendance",
				"attendance_id", rec.ID, "employee_id", rec.EmployeeID, "error", err)
		}
	}
}

func (s *ReconciliationServiceImpl) closeOne(ctx context.Context, calc *workhours.Calculator, rec attendance.Record) error {
	if rec.CheckIn == nil {
		return fmt.Errorf("in-progress record %s has no check-in", rec.ID)
	}

	checkIn := *rec.CheckIn
	checkOut := calc.ScheduledCheckOut(rec.Date).UTC()
	if checkOut.Before(checkIn) {
		checkOut = checkIn
	}

	var outcome workhours.Outcome
	if checkOut.After(checkIn) {
		derived, err := calc.Derive(checkIn, checkOut)
		if err != nil {
			return err
		}
		outcome = derived
	} else {
		// Checked in after the scheduled end, so nothing was worked.
		status, reason := workhours.Classify(0, workhours.ThresholdsFrom(calc.Config()))
		outcome = workhours.Outcome{Status: status, Reason: reason}
	}

	autoCorrected := attendance.CheckOutStatusAutoCorrected
	rec.CheckOut = &checkOut
	rec.CheckOutStatus = &autoCorrected
	outcome.Apply(&rec)
	rec.AppendRemark(fmt.Sprintf("Checkout auto-corrected to %s by reconciliation", checkOut.Format(time.RFC3339)))

	_, err := s.records.UpdateIfVersion(ctx, rec)
	return err
}

type dayKey struct {
	employeeID string
	date       string
}

// backfill creates absent records for working days nobody accounted for.
func (s *ReconciliationServiceImpl) backfill(ctx context.Context, in inputs, summary *reconciliation.Summary) error {
	existing, err := s.records.List(ctx, attendance.Filter{From: in.backfill.From, To: in.backfill.To})
	if err != nil {
		summary.Failed++
		slog.ErrorContext(ctx, "failed to list existing attendance", "error", err)
		return nil
	}
	seen := make(map[dayKey]bool, len(existing))
	for _, rec := range existing {
		seen[dayKey{rec.EmployeeID, rec.Date.Format(dateLayout)}] = true
	}

	cfg := in.calc.Config()
	for _, day := range in.backfill.Days() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !cfg.IsWorkingDay(day) || isHoliday(in.holidays, day) {
			summary.SkippedDays++
			continue
		}

		for i := range in.roster {
			emp := in.roster[i]
			if !emp.IsEmployedOn(day) {
				continue
			}
			if seen[dayKey{emp.ID, day.Format(dateLayout)}] {
				summary.AbsentExisting++
				continue
			}
			if onLeave(in.leaves, emp.ID, day) {
				summary.SkippedLeave++
				continue
			}

			created, err := s.attendance.UpsertAbsent(ctx, emp.ID, day)
			if err != nil {
				summary.Failed++
				slog.ErrorContext(ctx, "failed to backfill absence",
					"employee_id", emp.ID, "date", day.Format(dateLayout), "error", err)
				continue
			}
			if created {
				summary.AbsentCreated++
			} else {
				summary.AbsentExisting++
			}
		}
	}
	return nil
}

func isHoliday(holidays []holiday.Holiday, day time.Time) bool {
	for _, h := range holidays {
		if h.Covers(day) {
			return true
		}
	}
	return false
}

func onLeave(leaves []leave.Interval, employeeID string, day time.Time) bool {
	for _, l := range leaves {
		if l.EmployeeID == employeeID && l.Covers(day) {
			return true
		}
	}
	return false
}

func (s *ReconciliationServiceImpl) notifyCompleted(ctx context.Context, summary reconciliation.Summary) {
	s.notifier.Notify(ctx, notification.Notification{
		Type:  notification.TypeReconciliationCompleted,
		Title: "Attendance reconciliation completed",
		Message: fmt.Sprintf("%s to %s: %d stale closed, %d absences created, %d failures",
			summary.From.Format(dateLayout), summary.To.Format(dateLayout),
			summary.StaleClosed, summary.AbsentCreated, summary.Failed+summary.StaleFailed),
		Data: map[string]any{
			"stale_closed":    summary.StaleClosed,
			"stale_skipped":   summary.StaleSkipped,
			"stale_failed":    summary.StaleFailed,
			"absent_created":  summary.AbsentCreated,
			"absent_existing": summary.AbsentExisting,
			"skipped_days":    summary.SkippedDays,
			"skipped_leave":   summary.SkippedLeave,
			"failed":          summary.Failed,
		},
		CreatedAt: summary.FinishedAt,
	})
}

func NewReconciliationService(
	records attendance.Repository,
	attendanceService attendance.Service,
	shifts schedule.Repository,
	directory employee.Directory,
	leaves leave.Calendar,
	holidays holiday.Calendar,
	notifier notification.Notifier,
	now func() time.Time,
) reconciliation.Service {
	if now == nil {
		now = time.Now
	}
	return &ReconciliationServiceImpl{
		records:    records,
		attendance: attendanceService,
		shifts:     shifts,
		directory:  directory,
		leaves:     leaves,
		holidays:   holidays,
		notifier:   notifier,
		now:        now,
	}
}
