package correction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/authority"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/correction"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	authoritysvc "github.com/cmlabs-hris/hris-attendance-engine/internal/service/authority"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/service/workhours"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/cmlabs-hris/hris-attendance-engine/internal/service/correction")

type CorrectionServiceImpl struct {
	tx          database.Transactor
	corrections correction.Repository
	records     attendance.Repository
	attendance  attendance.Service
	shifts      schedule.Repository
	directory   employee.Directory
	authority   authority.Checker
	notifier    notification.Notifier
}

// Submit implements correction.Service.
func (c *CorrectionServiceImpl) Submit(ctx context.Context, req correction.SubmitRequest) (correction.Request, error) {
	actor, err := user.IdentityFromContext(ctx)
	if err != nil {
		return correction.Request{}, err
	}
	if err := req.Validate(); err != nil {
		return correction.Request{}, err
	}

	employeeID := req.EmployeeID
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	if employeeID != actor.EmployeeID {
		if err := c.authority.Authorize(ctx, actor, employeeID); err != nil {
			return correction.Request{}, err
		}
	}

	var created correction.Request
	err = c.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := c.resolveRecord(ctx, employeeID, req)
		if err != nil {
			return err
		}

		pending, err := c.corrections.HasPending(ctx, record.ID)
		if err != nil {
			return fmt.Errorf("failed to check pending corrections: %w", err)
		}
		if pending {
			return correction.ErrDuplicatePending
		}

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate correction id: %w", err)
		}
		created, err = c.corrections.Create(ctx, correction.Request{
			ID:           id.String(),
			AttendanceID: record.ID,
			EmployeeID:   employeeID,
			SubmittedBy:  actor.EmployeeID,
			Type:         correction.Type(req.Type),
			Reason:       strings.TrimSpace(req.Reason),
			Before:       correction.SnapshotOf(record),
			Requested:    req.Patch,
			Status:       correction.StatusPending,
		})
		if err != nil {
			if errors.Is(err, correction.ErrDuplicatePending) {
				return err
			}
			return fmt.Errorf("failed to create correction request: %w", err)
		}
		return nil
	})
	if err != nil {
		return correction.Request{}, err
	}

	slog.InfoContext(ctx, "correction submitted",
		"correction_id", created.ID,
		"attendance_id", created.AttendanceID,
		"employee_id", created.EmployeeID,
		"submitted_by", created.SubmittedBy,
		"type", created.Type,
	)
	c.notifySubmitted(ctx, created)
	return created, nil
}

// resolveRecord finds the record a submission refers to. A missing_entry
// submission for a day without any record gets an absent placeholder first.
func (c *CorrectionServiceImpl) resolveRecord(ctx context.Context, employeeID string, req correction.SubmitRequest) (attendance.Record, error) {
	if req.AttendanceID != nil {
		record, err := c.records.GetByID(ctx, *req.AttendanceID)
		if err != nil {
			return attendance.Record{}, err
		}
		if record.EmployeeID != employeeID {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return record, nil
	}

	date := *req.ParsedDate
	existing, err := c.records.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to get attendance by date: %w", err)
	}
	if existing != nil {
		return *existing, nil
	}
	if correction.Type(req.Type) != correction.TypeMissingEntry {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}

	if _, err := c.attendance.UpsertAbsent(ctx, employeeID, date); err != nil {
		return attendance.Record{}, err
	}
	existing, err = c.records.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to reload placeholder attendance: %w", err)
	}
	if existing == nil {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	return *existing, nil
}

// Review implements correction.Service.
func (c *CorrectionServiceImpl) Review(ctx context.Context, req correction.ReviewRequest) (result correction.Request, err error) {
	ctx, span := tracer.Start(ctx, "correction.Review")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(
		attribute.String("correction.id", req.ID),
		attribute.String("correction.decision", string(req.Decision)),
	)

	actor, err := user.IdentityFromContext(ctx)
	if err != nil {
		return correction.Request{}, err
	}
	if err := req.Validate(); err != nil {
		return correction.Request{}, err
	}

	existing, err := c.corrections.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, correction.ErrCorrectionNotFound) && !actor.HasOrgWideAuthority() {
			return correction.Request{}, authority.ErrUnauthorized
		}
		return correction.Request{}, err
	}
	if err := c.authority.Authorize(ctx, actor, existing.EmployeeID); err != nil {
		return correction.Request{}, err
	}
	if !existing.IsPending() {
		return correction.Request{}, correction.ErrAlreadyProcessed
	}

	var calc *workhours.Calculator
	if req.Decision == correction.DecisionApprove {
		cfg, err := c.shifts.Get(ctx)
		if err != nil {
			if errors.Is(err, schedule.ErrConfigMissing) {
				return correction.Request{}, err
			}
			return correction.Request{}, fmt.Errorf("failed to load shift config: %w", err)
		}
		if calc, err = workhours.NewCalculator(cfg); err != nil {
			return correction.Request{}, err
		}
	}

	reviewedAt := time.Now().UTC()
	reviewer := actor.EmployeeID

	err = c.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := c.corrections.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if !current.IsPending() {
			return correction.ErrAlreadyProcessed
		}

		current.ReviewedBy = &reviewer
		current.ReviewedAt = &reviewedAt
		current.ReviewerComments = req.Comments

		// The pending claim is written before the attendance record.
		if req.Decision == correction.DecisionReject {
			current.Status = correction.StatusRejected
			if err := c.corrections.Decide(ctx, current); err != nil {
				return err
			}
		} else {
			record, err := c.merge(ctx, calc, current, actor)
			if err != nil {
				return err
			}
			applied := correction.SnapshotOf(record)
			current.Status = correction.StatusApproved
			current.Applied = &applied
			if err := c.corrections.Decide(ctx, current); err != nil {
				return err
			}
			if _, err := c.records.UpdateIfVersion(ctx, record); err != nil {
				if errors.Is(err, attendance.ErrRecordConflict) {
					return err
				}
				return fmt.Errorf("failed to apply correction: %w", err)
			}
		}

		result = current
		return nil
	})
	if err != nil {
		return correction.Request{}, err
	}

	slog.InfoContext(ctx, "correction reviewed",
		"correction_id", result.ID,
		"attendance_id", result.AttendanceID,
		"employee_id", result.EmployeeID,
		"reviewed_by", reviewer,
		"status", result.Status,
	)
	c.notifyReviewed(ctx, result)
	return result, nil
}

// merge applies the requested fields to the attendance record and recomputes
// work hours when both times are known. The result is not persisted.
func (c *CorrectionServiceImpl) merge(ctx context.Context, calc *workhours.Calculator, req correction.Request, actor user.Identity) (attendance.Record, error) {
	record, err := c.records.GetByID(ctx, req.AttendanceID)
	if err != nil {
		return attendance.Record{}, err
	}

	patch := req.Requested
	if patch.CheckIn != nil {
		checkIn := patch.CheckIn.UTC()
		record.CheckIn = &checkIn
		record.LateMinutes = calc.LateMinutes(checkIn)
	}
	if patch.CheckOut != nil {
		checkOut := patch.CheckOut.UTC()
		corrected := attendance.CheckOutStatusCorrected
		record.CheckOut = &checkOut
		record.CheckOutStatus = &corrected
	}

	switch {
	case record.CheckIn != nil && record.CheckOut != nil:
		outcome, err := calc.Derive(*record.CheckIn, *record.CheckOut)
		if err != nil {
			return attendance.Record{}, err
		}
		outcome.Apply(&record)
	case record.IsOpen():
		record.Status = attendance.StatusInProgress
		record.StatusReason = ""
	}

	if patch.Status != nil {
		record.Status = *patch.Status
		record.StatusReason = fmt.Sprintf("Status set to %s by correction", *patch.Status)
	}

	record.IsManualEntry = true
	record.AppendRemark(fmt.Sprintf("Corrected via request %s by %s at %s: %s",
		req.ID, actor.EmployeeID, time.Now().UTC().Format(time.RFC3339), req.Reason))

	return record, nil
}

// Get implements correction.Service.
func (c *CorrectionServiceImpl) Get(ctx context.Context, id string) (correction.Request, error) {
	actor, err := user.IdentityFromContext(ctx)
	if err != nil {
		return correction.Request{}, err
	}
	req, err := c.corrections.GetByID(ctx, id)
	if err != nil {
		return correction.Request{}, err
	}
	if req.SubmittedBy == actor.EmployeeID {
		return req, nil
	}
	if err := authoritysvc.CanView(ctx, c.authority, actor, req.EmployeeID); err != nil {
		return correction.Request{}, err
	}
	return req, nil
}

// ListMine implements correction.Service.
func (c *CorrectionServiceImpl) ListMine(ctx context.Context) ([]correction.Request, error) {
	actor, err := user.IdentityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	requests, err := c.corrections.List(ctx, correction.Filter{EmployeeID: &actor.EmployeeID})
	if err != nil {
		return nil, fmt.Errorf("failed to list corrections: %w", err)
	}
	return requests, nil
}

// ListPendingForReviewer implements correction.Service. Only requests the
// caller may decide are returned.
func (c *CorrectionServiceImpl) ListPendingForReviewer(ctx context.Context) ([]correction.Request, error) {
	actor, err := user.IdentityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	pending := correction.StatusPending
	requests, err := c.corrections.List(ctx, correction.Filter{Status: &pending})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending corrections: %w", err)
	}

	visible := make([]correction.Request, 0, len(requests))
	decided := make(map[string]bool)
	for _, r := range requests {
		if r.EmployeeID == actor.EmployeeID && !actor.HasOrgWideAuthority() {
			continue
		}
		allowed, ok := decided[r.EmployeeID]
		if !ok {
			err := c.authority.Authorize(ctx, actor, r.EmployeeID)
			switch {
			case err == nil:
				allowed = true
			case errors.Is(err, authority.ErrUnauthorized):
				allowed = false
			default:
				return nil, err
			}
			decided[r.EmployeeID] = allowed
		}
		if allowed {
			visible = append(visible, r)
		}
	}
	return visible, nil
}

func (c *CorrectionServiceImpl) notifySubmitted(ctx context.Context, req correction.Request) {
	recipient := ""
	if emp, err := c.directory.GetByID(ctx, req.EmployeeID); err == nil && emp.ManagerID != nil {
		recipient = *emp.ManagerID
	}
	c.notifier.Notify(ctx, notification.Notification{
		Type:        notification.TypeCorrectionSubmitted,
		RecipientID: recipient,
		Title:       "Attendance correction submitted",
		Message:     fmt.Sprintf("A %s correction is waiting for review: %s", req.Type, req.Reason),
		Data: map[string]any{
			"correction_id": req.ID,
			"attendance_id": req.AttendanceID,
			"employee_id":   req.EmployeeID,
		},
		CreatedAt: time.Now().UTC(),
	})
}

func (c *CorrectionServiceImpl) notifyReviewed(ctx context.Context, req correction.Request) {
	n := notification.Notification{
		RecipientID: req.EmployeeID,
		Data: map[string]any{
			"correction_id": req.ID,
			"attendance_id": req.AttendanceID,
		},
		CreatedAt: time.Now().UTC(),
	}
	if req.Status == correction.StatusApproved {
		n.Type = notification.TypeCorrectionApproved
		n.Title = "Attendance correction approved"
		n.Message = "Your attendance correction has been approved and applied."
	} else {
		n.Type = notification.TypeCorrectionRejected
		n.Title = "Attendance correction rejected"
		n.Message = "Your attendance correction has been rejected."
		if req.ReviewerComments != nil {
			n.Message += " Comments: " + *req.ReviewerComments
		}
	}
	c.notifier.Notify(ctx, n)
}

func NewCorrectionService(
	tx database.Transactor,
	corrections correction.Repository,
	records attendance.Repository,
	attendanceService attendance.Service,
	shifts schedule.Repository,
	directory employee.Directory,
	checker authority.Checker,
	notifier notification.Notifier,
) correction.Service {
	return &CorrectionServiceImpl{
		tx:          tx,
		corrections: corrections,
		records:     records,
		attendance:  attendanceService,
		shifts:      shifts,
		directory:   directory,
		authority:   checker,
		notifier:    notifier,
	}
}
