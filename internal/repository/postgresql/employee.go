package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const employeeColumns = `
	id, full_name, email, department_id, manager_id, hire_date, resignation_date,
	employment_status, telegram_chat_id`

type employeeDirectory struct {
	db *database.DB
}

func NewEmployeeDirectory(db *database.DB) employee.Directory {
	return &employeeDirectory{db: db}
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	var status string
	err := row.Scan(
		&e.ID, &e.FullName, &e.Email, &e.DepartmentID, &e.ManagerID, &e.HireDate, &e.ResignationDate,
		&status, &e.TelegramChatID,
	)
	e.EmploymentStatus = employee.EmploymentStatus(status)
	return e, err
}

// GetByID implements employee.Directory.
func (r *employeeDirectory) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

// GetDepartment implements employee.Directory.
func (r *employeeDirectory) GetDepartment(ctx context.Context, id string) (employee.Department, error) {
	q := GetQuerier(ctx, r.db)

	var d employee.Department
	err := q.QueryRow(ctx, `SELECT id, name, head_id FROM departments WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.HeadID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Department{}, employee.ErrDepartmentNotFound
		}
		return employee.Department{}, fmt.Errorf("failed to get department: %w", err)
	}
	return d, nil
}

// ListActive implements employee.Directory.
func (r *employeeDirectory) ListActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE employment_status = 'active'
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var out []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
