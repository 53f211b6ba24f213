package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
)

const attendanceColumns = `
	id, employee_id, date, check_in, check_out, check_out_status, status,
	total_logged_hours, break_minutes, effective_work_hours, shrinkage_percentage,
	status_reason, late_minutes, is_manual_entry, remarks, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

type attendanceRepository struct {
	db *sql.DB
}

func NewAttendanceRepository(db *sql.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row rowScanner) (attendance.Record, error) {
	var r attendance.Record
	var date, status string
	var checkIn, checkOut sql.NullInt64
	var checkOutStatus sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(
		&r.ID, &r.EmployeeID, &date, &checkIn, &checkOut, &checkOutStatus, &status,
		&r.TotalLoggedHours, &r.BreakMinutes, &r.EffectiveWorkHours, &r.ShrinkagePercentage,
		&r.StatusReason, &r.LateMinutes, &r.IsManualEntry, &r.Remarks, &r.Version, &createdAt, &updatedAt,
	)
	if err != nil {
		return attendance.Record{}, err
	}

	if r.Date, err = parseDate(date); err != nil {
		return attendance.Record{}, err
	}
	r.CheckIn = timeFromNull(checkIn)
	r.CheckOut = timeFromNull(checkOut)
	r.Status = attendance.Status(status)
	if checkOutStatus.Valid {
		s := attendance.CheckOutStatus(checkOutStatus.String)
		r.CheckOutStatus = &s
	}
	r.CreatedAt = fromMillis(createdAt)
	r.UpdatedAt = fromMillis(updatedAt)
	return r, nil
}

func checkOutStatusArg(s *attendance.CheckOutStatus) any {
	if s == nil {
		return nil
	}
	return string(*s)
}

// Create implements attendance.Repository.
func (a *attendanceRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := getQuerier(ctx, a.db)
	now := toMillis(time.Now())

	_, err := q.ExecContext(ctx, `
		INSERT INTO attendance_records (
			id, employee_id, date, check_in, check_out, check_out_status, status,
			total_logged_hours, break_minutes, effective_work_hours, shrinkage_percentage,
			status_reason, late_minutes, is_manual_entry, remarks, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		record.ID, record.EmployeeID, formatDate(record.Date), nullMillis(record.CheckIn), nullMillis(record.CheckOut),
		checkOutStatusArg(record.CheckOutStatus), string(record.Status),
		record.TotalLoggedHours, record.BreakMinutes, record.EffectiveWorkHours, record.ShrinkagePercentage,
		record.StatusReason, record.LateMinutes, boolToInt(record.IsManualEntry), record.Remarks, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Record{}, attendance.ErrDuplicateDay
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}
	return a.GetByID(ctx, record.ID)
}

// CreateIfAbsent implements attendance.Repository.
func (a *attendanceRepository) CreateIfAbsent(ctx context.Context, record attendance.Record) (bool, error) {
	q := getQuerier(ctx, a.db)
	now := toMillis(time.Now())

	res, err := q.ExecContext(ctx, `
		INSERT INTO attendance_records (
			id, employee_id, date, status, status_reason, is_manual_entry, remarks, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT (employee_id, date) DO NOTHING`,
		record.ID, record.EmployeeID, formatDate(record.Date), string(record.Status),
		record.StatusReason, boolToInt(record.IsManualEntry), record.Remarks, now, now,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert attendance record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}

// GetByID implements attendance.Repository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := getQuerier(ctx, a.db)

	record, err := scanAttendance(q.QueryRowContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance_records WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	return record, nil
}

// GetByEmployeeAndDate implements attendance.Repository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	q := getQuerier(ctx, a.db)

	record, err := scanAttendance(q.QueryRowContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance_records WHERE employee_id = ? AND date = ?`,
		employeeID, formatDate(date)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance record by date: %w", err)
	}
	return &record, nil
}

// GetOpenByEmployee implements attendance.Repository.
func (a *attendanceRepository) GetOpenByEmployee(ctx context.Context, employeeID string) (*attendance.Record, error) {
	q := getQuerier(ctx, a.db)

	record, err := scanAttendance(q.QueryRowContext(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance_records
		WHERE employee_id = ? AND check_in IS NOT NULL AND check_out IS NULL
		ORDER BY check_in DESC
		LIMIT 1`, employeeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open attendance record: %w", err)
	}
	return &record, nil
}

// UpdateIfVersion implements attendance.Repository.
func (a *attendanceRepository) UpdateIfVersion(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := getQuerier(ctx, a.db)

	res, err := q.ExecContext(ctx, `
		UPDATE attendance_records SET
			check_in = ?,
			check_out = ?,
			check_out_status = ?,
			status = ?,
			total_logged_hours = ?,
			break_minutes = ?,
			effective_work_hours = ?,
			shrinkage_percentage = ?,
			status_reason = ?,
			late_minutes = ?,
			is_manual_entry = ?,
			remarks = ?,
			version = version + 1,
			updated_at = ?
		WHERE id = ? AND version = ?`,
		nullMillis(record.CheckIn), nullMillis(record.CheckOut), checkOutStatusArg(record.CheckOutStatus),
		string(record.Status), record.TotalLoggedHours, record.BreakMinutes, record.EffectiveWorkHours,
		record.ShrinkagePercentage, record.StatusReason, record.LateMinutes, boolToInt(record.IsManualEntry),
		record.Remarks, toMillis(time.Now()), record.ID, record.Version,
	)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to update attendance record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return attendance.Record{}, attendance.ErrRecordConflict
	}
	return a.GetByID(ctx, record.ID)
}

// List implements attendance.Repository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.Filter) ([]attendance.Record, error) {
	var where []string
	var args []any

	if filter.EmployeeID != nil {
		where = append(where, "employee_id = ?")
		args = append(args, *filter.EmployeeID)
	}
	if !filter.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, formatDate(filter.From))
	}
	if !filter.To.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, formatDate(filter.To))
	}
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*filter.Status))
	}

	query := `SELECT ` + attendanceColumns + ` FROM attendance_records`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date ASC, employee_id ASC"

	return a.queryRecords(ctx, query, args...)
}

// ListInProgressBefore implements attendance.Repository.
func (a *attendanceRepository) ListInProgressBefore(ctx context.Context, date time.Time) ([]attendance.Record, error) {
	return a.queryRecords(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance_records
		WHERE status = 'in_progress' AND date < ?
		ORDER BY date ASC, employee_id ASC`, formatDate(date))
}

func (a *attendanceRepository) queryRecords(ctx context.Context, query string, args ...any) ([]attendance.Record, error) {
	rows, err := getQuerier(ctx, a.db).QueryContext(ctx, query, args...)
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
