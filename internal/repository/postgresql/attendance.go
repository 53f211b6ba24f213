package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const attendanceColumns = `
	id, employee_id, date, check_in, check_out, check_out_status, status,
	total_logged_hours, break_minutes, effective_work_hours, shrinkage_percentage,
	status_reason, late_minutes, is_manual_entry, remarks, version, created_at, updated_at`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row pgx.Row) (attendance.Record, error) {
	var r attendance.Record
	var status string
	var checkOutStatus *string
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.Date, &r.CheckIn, &r.CheckOut, &checkOutStatus, &status,
		&r.TotalLoggedHours, &r.BreakMinutes, &r.EffectiveWorkHours, &r.ShrinkagePercentage,
		&r.StatusReason, &r.LateMinutes, &r.IsManualEntry, &r.Remarks, &r.Version, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return attendance.Record{}, err
	}
	r.Status = attendance.Status(status)
	if checkOutStatus != nil {
		s := attendance.CheckOutStatus(*checkOutStatus)
		r.CheckOutStatus = &s
	}
	return r, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func checkOutStatusArg(s *attendance.CheckOutStatus) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

// Create implements attendance.Repository.
func (a *attendanceRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			id, employee_id, date, check_in, check_out, check_out_status, status,
			total_logged_hours, break_minutes, effective_work_hours, shrinkage_percentage,
			status_reason, late_minutes, is_manual_entry, remarks, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, 1)
		RETURNING ` + attendanceColumns

	created, err := scanAttendance(q.QueryRow(ctx, query,
		record.ID, record.EmployeeID, record.Date, record.CheckIn, record.CheckOut,
		checkOutStatusArg(record.CheckOutStatus), string(record.Status),
		record.TotalLoggedHours, record.BreakMinutes, record.EffectiveWorkHours, record.ShrinkagePercentage,
		record.StatusReason, record.LateMinutes, record.IsManualEntry, record.Remarks,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Record{}, attendance.ErrDuplicateDay
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}
	return created, nil
}

// CreateIfAbsent implements attendance.Repository.
func (a *attendanceRepository) CreateIfAbsent(ctx context.Context, record attendance.Record) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			id, employee_id, date, status, status_reason, is_manual_entry, remarks, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, 1)
		ON CONFLICT (employee_id, date) DO NOTHING
	`

	tag, err := q.Exec(ctx, query,
		record.ID, record.EmployeeID, record.Date, string(record.Status),
		record.StatusReason, record.IsManualEntry, record.Remarks,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert attendance record: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetByID implements attendance.Repository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE id = $1`

	record, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	return record, nil
}

// GetByEmployeeAndDate implements attendance.Repository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE employee_id = $1 AND date = $2`

	record, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance record by date: %w", err)
	}
	return &record, nil
}

// GetOpenByEmployee implements attendance.Repository.
func (a *attendanceRepository) GetOpenByEmployee(ctx context.Context, employeeID string) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE employee_id = $1
		  AND check_in IS NOT NULL
		  AND check_out IS NULL
		ORDER BY check_in DESC
		LIMIT 1
	`

	record, err := scanAttendance(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open attendance record: %w", err)
	}
	return &record, nil
}

// UpdateIfVersion implements attendance.Repository.
func (a *attendanceRepository) UpdateIfVersion(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records SET
			check_in = $3,
			check_out = $4,
			check_out_status = $5,
			status = $6,
			total_logged_hours = $7,
			break_minutes = $8,
			effective_work_hours = $9,
			shrinkage_percentage = $10,
			status_reason = $11,
			late_minutes = $12,
			is_manual_entry = $13,
			remarks = $14,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING ` + attendanceColumns

	updated, err := scanAttendance(q.QueryRow(ctx, query,
		record.ID, record.Version,
		record.CheckIn, record.CheckOut, checkOutStatusArg(record.CheckOutStatus), string(record.Status),
		record.TotalLoggedHours, record.BreakMinutes, record.EffectiveWorkHours, record.ShrinkagePercentage,
		record.StatusReason, record.LateMinutes, record.IsManualEntry, record.Remarks,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordConflict
		}
		return attendance.Record{}, fmt.Errorf("failed to update attendance record: %w", err)
	}
	return updated, nil
}

// List implements attendance.Repository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.Filter) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	var where []string
	var args []interface{}
	argIdx := 1

	if filter.EmployeeID != nil {
		where = append(where, fmt.Sprintf("employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if !filter.From.IsZero() {
		where = append(where, fmt.Sprintf("date >= $%d", argIdx))
		args = append(args, filter.From)
		argIdx++
	}
	if !filter.To.IsZero() {
		where = append(where, fmt.Sprintf("date <= $%d", argIdx))
		args = append(args, filter.To)
		argIdx++
	}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, string(*filter.Status))
	}

	query := `SELECT ` + attendanceColumns + ` FROM attendance_records`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date ASC, employee_id ASC"

	return a.queryRecords(ctx, q, query, args...)
}

// ListInProgressBefore implements attendance.Repository.
func (a *attendanceRepository) ListInProgressBefore(ctx context.Context, date time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE status = 'in_progress' AND date < $1
		ORDER BY date ASC, employee_id ASC
	`
	return a.queryRecords(ctx, q, query, date)
}

func (a *attendanceRepository) queryRecords(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]attendance.Record, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		record, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance records: %w", err)
	}
	return records, nil
}
