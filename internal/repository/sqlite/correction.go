package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/correction"
)

const correctionColumns = `
	id, attendance_id, employee_id, submitted_by, type, reason,
	before_check_in, before_check_out, before_status, before_work_hours,
	requested_check_in, requested_check_out, requested_status,
	applied_check_in, applied_check_out, applied_status, applied_work_hours,
	status, reviewed_by, reviewed_at, reviewer_comments, created_at, updated_at`

type correctionRepository struct {
	db *sql.DB
}

func NewCorrectionRepository(db *sql.DB) correction.Repository {
	return &correctionRepository{db: db}
}

func scanCorrection(row rowScanner) (correction.Request, error) {
	var c correction.Request
	var typ, beforeStatus, status string
	var beforeIn, beforeOut, reqIn, reqOut, appliedIn, appliedOut, reviewedAt sql.NullInt64
	var reqStatus, appliedStatus, reviewedBy, comments sql.NullString
	var appliedWorkHours sql.NullFloat64
	var createdAt, updatedAt int64

	err := row.Scan(
		&c.ID, &c.AttendanceID, &c.EmployeeID, &c.SubmittedBy, &typ, &c.Reason,
		&beforeIn, &beforeOut, &beforeStatus, &c.Before.WorkHours,
		&reqIn, &reqOut, &reqStatus,
		&appliedIn, &appliedOut, &appliedStatus, &appliedWorkHours,
		&status, &reviewedBy, &reviewedAt, &comments, &createdAt, &updatedAt,
	)
	if err != nil {
		return correction.Request{}, err
	}

	c.Type = correction.Type(typ)
	c.Status = correction.Status(status)
	c.Before.CheckIn = timeFromNull(beforeIn)
	c.Before.CheckOut = timeFromNull(beforeOut)
	c.Before.Status = attendance.Status(beforeStatus)
	c.Requested.CheckIn = timeFromNull(reqIn)
	c.Requested.CheckOut = timeFromNull(reqOut)
	if reqStatus.Valid {
		s := attendance.Status(reqStatus.String)
		c.Requested.Status = &s
	}
	if appliedStatus.Valid {
		c.Applied = &correction.Snapshot{
			CheckIn:   timeFromNull(appliedIn),
			CheckOut:  timeFromNull(appliedOut),
			Status:    attendance.Status(appliedStatus.String),
			WorkHours: appliedWorkHours.Float64,
		}
	}
	c.ReviewedBy = stringFromNull(reviewedBy)
	c.ReviewedAt = timeFromNull(reviewedAt)
	c.ReviewerComments = stringFromNull(comments)
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return c, nil
}

func statusArg(s *attendance.Status) any {
	if s == nil {
		return nil
	}
	return string(*s)
}

// Create implements correction.Repository.
func (r *correctionRepository) Create(ctx context.Context, req correction.Request) (correction.Request, error) {
	q := getQuerier(ctx, r.db)
	now := toMillis(time.Now())

	_, err := q.ExecContext(ctx, `
		INSERT INTO attendance_corrections (
			id, attendance_id, employee_id, submitted_by, type, reason,
			before_check_in, before_check_out, before_status, before_work_hours,
			requested_check_in, requested_check_out, requested_status,
			status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending', ?, ?)`,
		req.ID, req.AttendanceID, req.EmployeeID, req.SubmittedBy, string(req.Type), req.Reason,
		nullMillis(req.Before.CheckIn), nullMillis(req.Before.CheckOut), string(req.Before.Status), req.Before.WorkHours,
		nullMillis(req.Requested.CheckIn), nullMillis(req.Requested.CheckOut), statusArg(req.Requested.Status),
		now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return correction.Request{}, correction.ErrDuplicatePending
		}
		return correction.Request{}, fmt.Errorf("failed to create correction request: %w", err)
	}
	return r.GetByID(ctx, req.ID)
}

// GetByID implements correction.Repository.
func (r *correctionRepository) GetByID(ctx context.Context, id string) (correction.Request, error) {
	c, err := scanCorrection(getQuerier(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+correctionColumns+` FROM attendance_corrections WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return correction.Request{}, correction.ErrCorrectionNotFound
		}
		return correction.Request{}, fmt.Errorf("failed to get correction request: %w", err)
	}
	return c, nil
}

// HasPending implements correction.Repository.
func (r *correctionRepository) HasPending(ctx context.Context, attendanceID string) (bool, error) {
	var exists int
	err := getQuerier(ctx, r.db).QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM attendance_corrections WHERE attendance_id = ? AND status = 'pending'
		)`, attendanceID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending corrections: %w", err)
	}
	return exists == 1, nil
}

// Decide implements correction.Repository.
func (r *correctionRepository) Decide(ctx context.Context, req correction.Request) error {
	var appliedIn, appliedOut, appliedStatus, appliedWorkHours any
	if req.Applied != nil {
		appliedIn = nullMillis(req.Applied.CheckIn)
		appliedOut = nullMillis(req.Applied.CheckOut)
		appliedStatus = string(req.Applied.Status)
		appliedWorkHours = req.Applied.WorkHours
	}

	res, err := getQuerier(ctx, r.db).ExecContext(ctx, `
		UPDATE attendance_corrections SET
			status = ?,
			reviewed_by = ?,
			reviewed_at = ?,
			reviewer_comments = ?,
			applied_check_in = ?,
			applied_check_out = ?,
			applied_status = ?,
			applied_work_hours = ?,
			updated_at = ?
		WHERE id = ? AND status = 'pending'`,
		string(req.Status), req.ReviewedBy, nullMillis(req.ReviewedAt), req.ReviewerComments,
		appliedIn, appliedOut, appliedStatus, appliedWorkHours,
		toMillis(time.Now()), req.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to decide correction request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return correction.ErrAlreadyProcessed
	}
	return nil
}

// List implements correction.Repository.
func (r *correctionRepository) List(ctx context.Context, filter correction.Filter) ([]correction.Request, error) {
	var where []string
	var args []any

	if filter.EmployeeID != nil {
		where = append(where, "employee_id = ?")
		args = append(args, *filter.EmployeeID)
	}
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*filter.Status))
	}

	query := `SELECT ` + correctionColumns + ` FROM attendance_corrections`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := getQuerier(ctx, r.db).QueryContext(ctx, query, args...)
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
