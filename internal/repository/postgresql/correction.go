package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/correction"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const correctionColumns = `
	id, attendance_id, employee_id, submitted_by, type, reason,
	before_check_in, before_check_out, before_status, before_work_hours,
	requested_check_in, requested_check_out, requested_status,
	applied_check_in, applied_check_out, applied_status, applied_work_hours,
	status, reviewed_by, reviewed_at, reviewer_comments, created_at, updated_at`

type correctionRepository struct {
	db *database.DB
}

func NewCorrectionRepository(db *database.DB) correction.Repository {
	return &correctionRepository{db: db}
}

func scanCorrection(row pgx.Row) (correction.Request, error) {
	var c correction.Request
	var typ, beforeStatus, status string
	var requestedStatus, appliedStatus *string
	var applied correction.Snapshot
	var appliedWorkHours *float64

	err := row.Scan(
		&c.ID, &c.AttendanceID, &c.EmployeeID, &c.SubmittedBy, &typ, &c.Reason,
		&c.Before.CheckIn, &c.Before.CheckOut, &beforeStatus, &c.Before.WorkHours,
		&c.Requested.CheckIn, &c.Requested.CheckOut, &requestedStatus,
		&applied.CheckIn, &applied.CheckOut, &appliedStatus, &appliedWorkHours,
		&status, &c.ReviewedBy, &c.ReviewedAt, &c.ReviewerComments, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return correction.Request{}, err
	}

	c.Type = correction.Type(typ)
	c.Status = correction.Status(status)
	c.Before.Status = attendance.Status(beforeStatus)
	if requestedStatus != nil {
		s := attendance.Status(*requestedStatus)
		c.Requested.Status = &s
	}
	if appliedStatus != nil {
		applied.Status = attendance.Status(*appliedStatus)
		if appliedWorkHours != nil {
			applied.WorkHours = *appliedWorkHours
		}
		c.Applied = &applied
	}
	return c, nil
}

func statusArg(s *attendance.Status) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

// Create implements correction.Repository.
func (r *correctionRepository) Create(ctx context.Context, req correction.Request) (correction.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_corrections (
			id, attendance_id, employee_id, submitted_by, type, reason,
			before_check_in, before_check_out, before_status, before_work_hours,
			requested_check_in, requested_check_out, requested_status, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 'pending')
		RETURNING ` + correctionColumns

	created, err := scanCorrection(q.QueryRow(ctx, query,
		req.ID, req.AttendanceID, req.EmployeeID, req.SubmittedBy, string(req.Type), req.Reason,
		req.Before.CheckIn, req.Before.CheckOut, string(req.Before.Status), req.Before.WorkHours,
		req.Requested.CheckIn, req.Requested.CheckOut, statusArg(req.Requested.Status),
	))
	if err != nil {
		if isUniqueViolation(err) {
			return correction.Request{}, correction.ErrDuplicatePending
		}
		return correction.Request{}, fmt.Errorf("failed to create correction request: %w", err)
	}
	return created, nil
}

// GetByID implements correction.Repository.
func (r *correctionRepository) GetByID(ctx context.Context, id string) (correction.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + correctionColumns + ` FROM attendance_corrections WHERE id = $1`

	c, err := scanCorrection(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return correction.Request{}, correction.ErrCorrectionNotFound
		}
		return correction.Request{}, fmt.Errorf("failed to get correction request: %w", err)
	}
	return c, nil
}

// HasPending implements correction.Repository.
func (r *correctionRepository) HasPending(ctx context.Context, attendanceID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM attendance_corrections WHERE attendance_id = $1 AND status = 'pending'
		)`, attendanceID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending corrections: %w", err)
	}
	return exists, nil
}

// Decide implements correction.Repository.
func (r *correctionRepository) Decide(ctx context.Context, req correction.Request) error {
	q := GetQuerier(ctx, r.db)

	var appliedCheckIn, appliedCheckOut interface{}
	var appliedStatus *string
	var appliedWorkHours *float64
	if req.Applied != nil {
		appliedCheckIn = req.Applied.CheckIn
		appliedCheckOut = req.Applied.CheckOut
		s := string(req.Applied.Status)
		appliedStatus = &s
		appliedWorkHours = &req.Applied.WorkHours
	}

	query := `
		UPDATE attendance_corrections SET
			status = $2,
			reviewed_by = $3,
			reviewed_at = $4,
			reviewer_comments = $5,
			applied_check_in = $6,
			applied_check_out = $7,
			applied_status = $8,
			applied_work_hours = $9,
			updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	tag, err := q.Exec(ctx, query,
		req.ID, string(req.Status), req.ReviewedBy, req.ReviewedAt, req.ReviewerComments,
		appliedCheckIn, appliedCheckOut, appliedStatus, appliedWorkHours,
	)
	if err != nil {
		return fmt.Errorf("failed to decide correction request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return correction.ErrAlreadyProcessed
	}
	return nil
}

// List implements correction.Repository.
func (r *correctionRepository) List(ctx context.Context, filter correction.Filter) ([]correction.Request, error) {
	q := GetQuerier(ctx, r.db)

	var where []string
	var args []interface{}
	argIdx := 1

	if filter.EmployeeID != nil {
		where = append(where, fmt.Sprintf("employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, string(*filter.Status))
	}

	query := `SELECT ` + correctionColumns + ` FROM attendance_corrections`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list correction requests: %w", err)
	}
	defer rows.Close()

	var out []correction.Request
	for rows.Next() {
		c, err := scanCorrection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan correction request: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
