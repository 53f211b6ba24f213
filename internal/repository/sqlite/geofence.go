package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/geofence"
)

type geofenceZoneRepository struct {
	db *sql.DB
}

func NewGeofenceZoneRepository(db *sql.DB) geofence.ZoneRepository {
	return &geofenceZoneRepository{db: db}
}

// ListActive implements geofence.ZoneRepository.
func (r *geofenceZoneRepository) ListActive(ctx context.Context) ([]geofence.Zone, error) {
	rows, err := getQuerier(ctx, r.db).QueryContext(ctx, `
		SELECT id, name, latitude, longitude, radius_meters, is_active,
		       allowed_department_ids, allowed_employee_ids
		FROM geofence_zones
		WHERE is_active = 1
		ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list geofence zones: %w", err)
	}
	defer rows.Close()

	var zones []geofence.Zone
	for rows.Next() {
		var z geofence.Zone
		var departments, employees string
		if err := rows.Scan(
			&z.ID, &z.Name, &z.Center.Latitude, &z.Center.Longitude, &z.RadiusMeters, &z.IsActive,
			&departments, &employees,
		); err != nil {
			return nil, fmt.Errorf("failed to scan geofence zone: %w", err)
		}
		if err := json.Unmarshal([]byte(departments), &z.AllowedDepartmentIDs); err != nil {
			return nil, fmt.Errorf("failed to decode zone %s department allow-list: %w", z.ID, err)
		}
		if err := json.Unmarshal([]byte(employees), &z.AllowedEmployeeIDs); err != nil {
			return nil, fmt.Errorf("failed to decode zone %s employee allow-list: %w", z.ID, err)
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
	db *sql.DB
}

func NewGeofenceObservationRepository(db *sql.DB) geofence.ObservationRepository {
	return &geofenceObservationRepository{db: db}
}

func scanObservation(row rowScanner) (geofence.Observation, error) {
	var o geofence.Observation
	var observedAt, createdAt int64
	var nearest, reason, status, reviewedBy, comments sql.NullString
	var reviewedAt, requestCreatedAt sql.NullInt64

	err := row.Scan(
		&o.ID, &o.EmployeeID, &o.Coordinate.Latitude, &o.Coordinate.Longitude, &observedAt,
		&o.Distance, &nearest, &o.IsWithin, &o.DuringWorkingHours, &o.DuringBreak,
		&reason, &status, &reviewedBy, &reviewedAt, &comments, &requestCreatedAt,
		&createdAt,
	)
	if err != nil {
		return geofence.Observation{}, err
	}

	o.ObservedAt = fromMillis(observedAt)
	o.CreatedAt = fromMillis(createdAt)
	o.NearestZoneID = stringFromNull(nearest)
	if reason.Valid && status.Valid {
		o.Request = &geofence.OutOfPremisesRequest{
			Reason:     reason.String,
			Status:     geofence.RequestStatus(status.String),
			ReviewedBy: stringFromNull(reviewedBy),
			ReviewedAt: timeFromNull(reviewedAt),
			Comments:   stringFromNull(comments),
		}
		if requestCreatedAt.Valid {
			o.Request.CreatedAt = fromMillis(requestCreatedAt.Int64)
		}
	}
	return o, nil
}

// Create implements geofence.ObservationRepository.
func (r *geofenceObservationRepository) Create(ctx context.Context, obs geofence.Observation) (geofence.Observation, error) {
	var reason, status, requestCreatedAt any
	if obs.Request != nil {
		reason = obs.Request.Reason
		status = string(obs.Request.Status)
		requestCreatedAt = toMillis(obs.Request.CreatedAt)
	}

	_, err := getQuerier(ctx, r.db).ExecContext(ctx, `
		INSERT INTO geofence_observations (
			id, employee_id, latitude, longitude, observed_at, distance_meters, nearest_zone_id,
			is_within, during_working_hours, during_break,
			request_reason, request_status, request_created_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		obs.ID, obs.EmployeeID, obs.Coordinate.Latitude, obs.Coordinate.Longitude, toMillis(obs.ObservedAt),
		obs.Distance, obs.NearestZoneID, boolToInt(obs.IsWithin), boolToInt(obs.DuringWorkingHours),
		boolToInt(obs.DuringBreak), reason, status, requestCreatedAt, toMillis(time.Now()),
	)
	if err != nil {
		return geofence.Observation{}, fmt.Errorf("failed to create geofence observation: %w", err)
	}
	return r.GetByID(ctx, obs.ID)
}

// GetByID implements geofence.ObservationRepository.
func (r *geofenceObservationRepository) GetByID(ctx context.Context, id string) (geofence.Observation, error) {
	obs, err := scanObservation(getQuerier(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+observationColumns+` FROM geofence_observations WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return geofence.Observation{}, geofence.ErrObservationNotFound
		}
		return geofence.Observation{}, fmt.Errorf("failed to get geofence observation: %w", err)
	}
	return obs, nil
}

// AttachRequest implements geofence.ObservationRepository.
func (r *geofenceObservationRepository) AttachRequest(ctx context.Context, id string, req geofence.OutOfPremisesRequest) error {
	res, err := getQuerier(ctx, r.db).ExecContext(ctx, `
		UPDATE geofence_observations SET
			request_reason = ?,
			request_status = ?,
			request_created_at = ?
		WHERE id = ? AND request_status IS NULL`,
		req.Reason, string(req.Status), toMillis(req.CreatedAt), id,
	)
	if err != nil {
		return fmt.Errorf("failed to attach out-of-premises request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return geofence.ErrRequestExists
	}
	return nil
}

// DecideRequest implements geofence.ObservationRepository.
func (r *geofenceObservationRepository) DecideRequest(ctx context.Context, id string, req geofence.OutOfPremisesRequest) error {
	res, err := getQuerier(ctx, r.db).ExecContext(ctx, `
		UPDATE geofence_observations SET
			request_status = ?,
			request_reviewed_by = ?,
			request_reviewed_at = ?,
			request_comments = ?
		WHERE id = ? AND request_status = 'pending'`,
		string(req.Status), req.ReviewedBy, nullMillis(req.ReviewedAt), req.Comments, id,
	)
	if err != nil {
		return fmt.Errorf("failed to decide out-of-premises request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return geofence.ErrAlreadyProcessed
	}
	return nil
}

// ListByEmployee implements geofence.ObservationRepository.
func (r *geofenceObservationRepository) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]geofence.Observation, error) {
	rows, err := getQuerier(ctx, r.db).QueryContext(ctx, `
		SELECT `+observationColumns+`
		FROM geofence_observations
		WHERE employee_id = ? AND observed_at >= ? AND observed_at < ?
		ORDER BY observed_at DESC`,
		employeeID, toMillis(from), toMillis(to),
	)
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
