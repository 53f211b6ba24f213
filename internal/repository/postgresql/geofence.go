package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/geofence"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type geofenceZoneRepository struct {
	db *database.DB
}

func NewGeofenceZoneRepository(db *database.DB) geofence.ZoneRepository {
	return &geofenceZoneRepository{db: db}
}

// ListActive implements geofence.ZoneRepository.
func (r *geofenceZoneRepository) ListActive(ctx context.Context) ([]geofence.Zone, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, name, latitude, longitude, radius_meters, is_active,
		       allowed_department_ids, allowed_employee_ids
		FROM geofence_zones
		WHERE is_active = TRUE
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list geofence zones: %w", err)
	}
	defer rows.Close()

	var zones []geofence.Zone
	for rows.Next() {
		var z geofence.Zone
		if err := rows.Scan(
			&z.ID, &z.Name, &z.Center.Latitude, &z.Center.Longitude, &z.RadiusMeters, &z.IsActive,
			&z.AllowedDepartmentIDs, &z.AllowedEmployeeIDs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan geofence zone: %w", err)
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

const observationColumns = `
	id, employee_id, latitude, longitude, observed_at, distance_meters, nearest_zone_id,
	is_within, during_working_hours, during_break,
	request_reason, request_status, request_reviewed_by, request_reviewed_at, request_comments, request_created_at,
	created_at`

type geofenceObservationRepository struct {
	db *database.DB
}

func NewGeofenceObservationRepository(db *database.DB) geofence.ObservationRepository {
	return &geofenceObservationRepository{db: db}
}

func scanObservation(row pgx.Row) (geofence.Observation, error) {
	var o geofence.Observation
	var reason, status, reviewedBy, comments *string
	var reviewedAt, requestCreatedAt *time.Time

	err := row.Scan(
		&o.ID, &o.EmployeeID, &o.Coordinate.Latitude, &o.Coordinate.Longitude, &o.ObservedAt,
		&o.Distance, &o.NearestZoneID, &o.IsWithin, &o.DuringWorkingHours, &o.DuringBreak,
		&reason, &status, &reviewedBy, &reviewedAt, &comments, &requestCreatedAt,
		&o.CreatedAt,
	)
	if err != nil {
		return geofence.Observation{}, err
	}

	if reason != nil && status != nil {
		o.Request = &geofence.OutOfPremisesRequest{
			Reason:     *reason,
			Status:     geofence.RequestStatus(*status),
			ReviewedBy: reviewedBy,
			ReviewedAt: reviewedAt,
			Comments:   comments,
		}
		if requestCreatedAt != nil {
			o.Request.CreatedAt = *requestCreatedAt
		}
	}
	return o, nil
}

// Create implements geofence.ObservationRepository.
func (r *geofenceObservationRepository) Create(ctx context.Context, obs geofence.Observation) (geofence.Observation, error) {
	q := GetQuerier(ctx, r.db)

	var reason, status *string
	var requestCreatedAt *time.Time
	if obs.Request != nil {
		reason = &obs.Request.Reason
		s := string(obs.Request.Status)
		status = &s
		requestCreatedAt = &obs.Request.CreatedAt
	}

	query := `
		INSERT INTO geofence_observations (
			id, employee_id, latitude, longitude, observed_at, distance_meters, nearest_zone_id,
			is_within, during_working_hours, during_break,
			request_reason, request_status, request_created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + observationColumns

	created, err := scanObservation(q.QueryRow(ctx, query,
		obs.ID, obs.EmployeeID, obs.Coordinate.Latitude, obs.Coordinate.Longitude, obs.ObservedAt,
		obs.Distance, obs.NearestZoneID, obs.IsWithin, obs.DuringWorkingHours, obs.DuringBreak,
		reason, status, requestCreatedAt,
	))
	if err != nil {
		return geofence.Observation{}, fmt.Errorf("failed to create geofence observation: %w", err)
	}
	return created, nil
}

// GetByID implements geofence.ObservationRepository.
func (r *geofenceObservationRepository) GetByID(ctx context.Context, id string) (geofence.Observation, error) {
	q := GetQuerier(ctx, r.db)

	obs, err := scanObservation(q.QueryRow(ctx,
		`SELECT `+observationColumns+` FROM geofence_observations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return geofence.Observation{}, geofence.ErrObservationNotFound
		}
		return geofence.Observation{}, fmt.Errorf("failed to get geofence observation: %w", err)
	}
	return obs, nil
}

// AttachRequest implements geofence.ObservationRepository.
func (r *geofenceObservationRepository) AttachRequest(ctx context.Context, id string, req geofence.OutOfPremisesRequest) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE geofence_observations SET
			request_reason = $2,
			request_status = $3,
			request_created_at = $4
		WHERE id = $1 AND request_status IS NULL
	`, id, req.Reason, string(req.Status), req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to attach out-of-premises request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return geofence.ErrRequestExists
	}
	return nil
}

// DecideRequest implements geofence.ObservationRepository.
func (r *geofenceObservationRepository) DecideRequest(ctx context.Context, id string, req geofence.OutOfPremisesRequest) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE geofence_observations SET
			request_status = $2,
			request_reviewed_by = $3,
			request_reviewed_at = $4,
			request_comments = $5
		WHERE id = $1 AND request_status = 'pending'
	`, id, string(req.Status), req.ReviewedBy, req.ReviewedAt, req.Comments)
	if err != nil {
		return fmt.Errorf("failed to decide out-of-premises request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return geofence.ErrAlreadyProcessed
	}
	return nil
}

// ListByEmployee implements geofence.ObservationRepository.
func (r *geofenceObservationRepository) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]geofence.Observation, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+observationColumns+`
		FROM geofence_observations
		WHERE employee_id = $1 AND observed_at >= $2 AND observed_at < $3
		ORDER BY observed_at DESC
	`, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list geofence observations: %w", err)
	}
	defer rows.Close()

	var out []geofence.Observation
	for rows.Next() {
		obs, err := scanObservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan geofence observation: %w", err)
		}
		out = append(out, obs)
	}
	return out, rows.Err()
}
