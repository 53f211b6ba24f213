package geofence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/authority"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/geofence"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/user"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/cmlabs-hris/hris-attendance-engine/internal/service/geofence")

type GeofenceServiceImpl struct {
	zones        geofence.ZoneRepository
	observations geofence.ObservationRepository
	shifts       schedule.Repository
	directory    employee.Directory
	authority    authority.Checker
	notifier     notification.Notifier
	now          func() time.Time
}

func (g *GeofenceServiceImpl) evaluateFor(ctx context.Context, employeeID string, coord geofence.Coordinate) (geofence.Evaluation, error) {
	emp, err := g.directory.GetByID(ctx, employeeID)
	if err != nil {
		return geofence.Evaluation{}, fmt.Errorf("failed to resolve employee: %w", err)
	}
	zones, err := g.zones.ListActive(ctx)
	if err != nil {
		return geofence.Evaluation{}, fmt.Errorf("failed to list geofence zones: %w", err)
	}
	return Evaluate(coord, emp.ID, emp.DepartmentID, zones)
}

// Evaluate implements geofence.Service.
func (g *GeofenceServiceImpl) Evaluate(ctx context.Context, req geofence.EvaluateRequest) (geofence.Evaluation, error) {
	actor, err := user.IdentityFromContext(ctx)
	if err != nil {
		return geofence.Evaluation{}, err
	}
	if err := req.Validate(); err != nil {
		return geofence.Evaluation{}, err
	}
	return g.evaluateFor(ctx, actor.EmployeeID, geofence.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude})
}

// RecordObservation implements geofence.Service.
func (g *GeofenceServiceImpl) RecordObservation(ctx context.Context, req geofence.ObservationRequest) (result geofence.Observation, err error) {
	ctx, span := tracer.Start(ctx, "geofence.RecordObservation")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	actor, err := user.IdentityFromContext(ctx)
	if err != nil {
		return geofence.Observation{}, err
	}
	if err := req.Validate(); err != nil {
		return geofence.Observation{}, err
	}
	observedAt := req.ObservedAt
	if observedAt.IsZero() {
		observedAt = g.now()
	}
	observedAt = observedAt.UTC()

	cfg, err := g.shifts.Get(ctx)
	if err != nil {
		if errors.Is(err, schedule.ErrConfigMissing) {
			return geofence.Observation{}, err
		}
		return geofence.Observation{}, fmt.Errorf("failed to load shift config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return geofence.Observation{}, err
	}

	coord := geofence.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude}
	eval, err := g.evaluateFor(ctx, actor.EmployeeID, coord)
	if err != nil {
		return geofence.Observation{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return geofence.Observation{}, fmt.Errorf("failed to generate observation id: %w", err)
	}
	_, duringBreak := cfg.ActiveBreakAt(observedAt, loc)
	obs := geofence.Observation{
		ID:                 id.String(),
		EmployeeID:         actor.EmployeeID,
		Coordinate:         coord,
		ObservedAt:         observedAt,
		Distance:           eval.Distance,
		IsWithin:           eval.IsWithin,
		DuringWorkingHours: cfg.WithinWorkingHours(observedAt, loc),
		DuringBreak:        duringBreak,
	}
	if eval.NearestZone != nil {
		obs.NearestZoneID = &eval.NearestZone.ID
	}

	reason := ""
	if req.Reason != nil {
		reason = strings.TrimSpace(*req.Reason)
	}
	if obs.IsException() && reason != "" {
		obs.Request = &geofence.OutOfPremisesRequest{
			Reason:    reason,
			Status:    geofence.RequestStatusPending,
			CreatedAt: observedAt,
		}
	}

	span.SetAttributes(
		attribute.Bool("geofence.within", obs.IsWithin),
		attribute.Float64("geofence.distance_meters", obs.Distance),
		attribute.Bool("geofence.exception", obs.IsException()),
	)

	created, err := g.observations.Create(ctx, obs)
	if err != nil {
		return geofence.Observation{}, fmt.Errorf("failed to record observation: %w", err)
	}

	slog.InfoContext(ctx, "geofence observation recorded",
		"observation_id", created.ID,
		"employee_id", created.EmployeeID,
		"is_within", created.IsWithin,
		"distance_meters", created.Distance,
		"exception", created.IsException(),
		"request_created", created.Request != nil,
	)
	if created.Request != nil {
		g.notifySubmitted(ctx, created)
	}
	return created, nil
}

// AttachReason implements geofence.Service.
func (g *GeofenceServiceImpl) AttachReason(ctx context.Context, req geofence.AttachReasonRequest) (geofence.Observation, error) {
	actor, err := user.IdentityFromContext(ctx)
	if err != nil {
		return geofence.Observation{}, err
	}
	if err := req.Validate(); err != nil {
		return geofence.Observation{}, err
	}

	obs, err := g.observations.GetByID(ctx, req.ObservationID)
	if err != nil {
		return geofence.Observation{}, err
	}
	if obs.EmployeeID != actor.EmployeeID {
		return geofence.Observation{}, geofence.ErrNotObservationOwner
	}
	if !obs.IsException() {
		return geofence.Observation{}, geofence.ErrNotAnException
	}
	if obs.Request != nil {
		return geofence.Observation{}, geofence.ErrRequestExists
	}

	request := geofence.OutOfPremisesRequest{
		Reason:    strings.TrimSpace(req.Reason),
		Status:    geofence.RequestStatusPending,
		CreatedAt: g.now().UTC(),
	}
	if err := g.observations.AttachRequest(ctx, obs.ID, request); err != nil {
		return geofence.Observation{}, err
	}
	obs.Request = &request

	g.notifySubmitted(ctx, obs)
	return obs, nil
}

// Review implements geofence.Service.
func (g *GeofenceServiceImpl) Review(ctx context.Context, req geofence.ReviewRequest) (result geofence.Observation, err error) {
	ctx, span := tracer.Start(ctx, "geofence.Review")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(
		attribute.String("observation.id", req.ObservationID),
		attribute.String("observation.decision", string(req.Decision)),
	)

	actor, err := user.IdentityFromContext(ctx)
	if err != nil {
		return geofence.Observation{}, err
	}
	if err := req.Validate(); err != nil {
		return geofence.Observation{}, err
	}

	obs, err := g.observations.GetByID(ctx, req.ObservationID)
	if err != nil {
		if errors.Is(err, geofence.ErrObservationNotFound) && !actor.HasOrgWideAuthority() {
			return geofence.Observation{}, authority.ErrUnauthorized
		}
		return geofence.Observation{}, err
	}
	if err := g.authority.Authorize(ctx, actor, obs.EmployeeID); err != nil {
		return geofence.Observation{}, err
	}
	if obs.Request == nil {
		return geofence.Observation{}, geofence.ErrRequestNotFound
	}
	if obs.Request.Status != geofence.RequestStatusPending {
		return geofence.Observation{}, geofence.ErrAlreadyProcessed
	}

	reviewer := actor.EmployeeID
	reviewedAt := g.now().UTC()
	decided := *obs.Request
	decided.Status = req.Decision
	decided.ReviewedBy = &reviewer
	decided.ReviewedAt = &reviewedAt
	decided.Comments = req.Comments

	if err := g.observations.DecideRequest(ctx, obs.ID, decided); err != nil {
		return geofence.Observation{}, err
	}
	obs.Request = &decided

	slog.InfoContext(ctx, "out-of-premises request reviewed",
		"observation_id", obs.ID,
		"employee_id", obs.EmployeeID,
		"reviewed_by", reviewer,
		"status", decided.Status,
	)
	g.notifyReviewed(ctx, obs)
	return obs, nil
}

// ListMine implements geofence.Service.
func (g *GeofenceServiceImpl) ListMine(ctx context.Context, req geofence.ListRequest) ([]geofence.Observation, error) {
	actor, err := user.IdentityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	observations, err := g.observations.ListByEmployee(ctx, actor.EmployeeID, req.From, req.To)
	if err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}
	return observations, nil
}

func (g *GeofenceServiceImpl) notifySubmitted(ctx context.Context, obs geofence.Observation) {
	recipient := ""
	if emp, err := g.directory.GetByID(ctx, obs.EmployeeID); err == nil && emp.ManagerID != nil {
		recipient = *emp.ManagerID
	}
	g.notifier.Notify(ctx, notification.Notification{
		Type:        notification.TypeOutOfPremisesSubmitted,
		RecipientID: recipient,
		Title:       "Out-of-premises request submitted",
		Message:     fmt.Sprintf("An employee was %.0f m outside the premises: %s", obs.Distance, obs.Request.Reason),
		Data: map[string]any{
			"observation_id": obs.ID,
			"employee_id":    obs.EmployeeID,
		},
		CreatedAt: g.now().UTC(),
	})
}

func (g *GeofenceServiceImpl) notifyReviewed(ctx context.Context, obs geofence.Observation) {
	n := notification.Notification{
		RecipientID: obs.EmployeeID,
		Data:        map[string]any{"observation_id": obs.ID},
		CreatedAt:   g.now().UTC(),
	}
	if obs.Request.Status == geofence.RequestStatusApproved {
		n.Type = notification.TypeOutOfPremisesApproved
		n.Title = "Out-of-premises request approved"
		n.Message = "Your out-of-premises request has been approved."
	} else {
		n.Type = notification.TypeOutOfPremisesRejected
		n.Title = "Out-of-premises request rejected"
		n.Message = "Your out-of-premises request has been rejected."
	}
	g.notifier.Notify(ctx, n)
}

func NewGeofenceService(
	zones geofence.ZoneRepository,
	observations geofence.ObservationRepository,
	shifts schedule.Repository,
	directory employee.Directory,
	checker authority.Checker,
	notifier notification.Notifier,
	now func() time.Time,
) geofence.Service {
	if now == nil {
		now = time.Now
	}
	return &GeofenceServiceImpl{
		zones:        zones,
		observations: observations,
		shifts:       shifts,
		directory:    directory,
		authority:    checker,
		notifier:     notifier,
		now:          now,
	}
}
