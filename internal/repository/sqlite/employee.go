package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
)

const employeeColumns = `id, full_name, email, department_id, manager_id, hire_date, resignation_date, employment_status, telegram_chat_id`

type employeeDirectory struct {
	db *sql.DB
}

func NewEmployeeDirectory(db *sql.DB) employee.Directory {
	return &employeeDirectory{db: db}
}

func scanEmployee(row rowScanner) (employee.Employee, error) {
	var e employee.Employee
	var email, departmentID, managerID, resignation sql.NullString
	var hireDate, status string
	var chatID sql.NullInt64

	if err := row.Scan(&e.ID, &e.FullName, &email, &departmentID, &managerID, &hireDate, &resignation, &status, &chatID); err != nil {
		return employee.Employee{}, err
	}

	var err error
	if e.HireDate, err = parseDate(hireDate); err != nil {
		return employee.Employee{}, err
	}
	if resignation.Valid {
		d, err := parseDate(resignation.String)
		if err != nil {
			return employee.Employee{}, err
		}
		e.ResignationDate = &d
	}
	e.Email = stringFromNull(email)
	e.DepartmentID = stringFromNull(departmentID)
	e.ManagerID = stringFromNull(managerID)
	e.EmploymentStatus = employee.EmploymentStatus(status)
	if chatID.Valid {
		id := chatID.Int64
		e.TelegramChatID = &id
	}
	return e, nil
}

// GetByID implements employee.Directory.
func (r *employeeDirectory) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	e, err := scanEmployee(getQuerier(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

// GetDepartment implements employee.Directory.
func (r *employeeDirectory) GetDepartment(ctx context.Context, id string) (employee.Department, error) {
	var d employee.Department
	var headID sql.NullString
	err := getQuerier(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, name, head_id FROM departments WHERE id = ?`, id,
	).Scan(&d.ID, &d.Name, &headID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return employee.Department{}, employee.ErrDepartmentNotFound
		}
		return employee.Department{}, fmt.Errorf("failed to get department: %w", err)
	}
	d.HeadID = stringFromNull(headID)
	return d, nil
}

// ListActive implements employee.Directory.
func (r *employeeDirectory) ListActive(ctx context.Context) ([]employee.Employee, error) {
	rows, err := getQuerier(ctx, r.db).QueryContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE employment_status = 'active' ORDER BY full_name ASC`)
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
