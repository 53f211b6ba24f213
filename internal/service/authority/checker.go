package authority

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/authority"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/user"
)

// OrgChecker grants authority over an employee to org-wide roles, to the
// employee's direct manager and to the head of the employee's department.
type OrgChecker struct {
	directory employee.Directory
}

func NewChecker(directory employee.Directory) authority.Checker {
	return &OrgChecker{directory: directory}
}

// Authorize implements authority.Checker. Every denial is reported as
// authority.ErrUnauthorized and the concrete reason is only logged. Acting
// on one's own data needs the same authority as anyone else's.
func (c *OrgChecker) Authorize(ctx context.Context, actor user.Identity, employeeID string) error {
	if actor.HasOrgWideAuthority() {
		return nil
	}

	target, err := c.directory.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return c.deny(ctx, actor, employeeID, "unknown employee")
		}
		return fmt.Errorf("failed to resolve employee: %w", err)
	}

	if target.ManagerID != nil && *target.ManagerID == actor.EmployeeID {
		return nil
	}

	if target.DepartmentID != nil {
		dept, err := c.directory.GetDepartment(ctx, *target.DepartmentID)
		switch {
		case err == nil:
			if dept.HeadID != nil && *dept.HeadID == actor.EmployeeID {
				return nil
			}
		case errors.Is(err, employee.ErrDepartmentNotFound):
			return c.deny(ctx, actor, employeeID, "unknown department")
		default:
			return fmt.Errorf("failed to resolve department: %w", err)
		}
	}

	if employeeID == actor.EmployeeID {
		return c.deny(ctx, actor, employeeID, "self review")
	}
	return c.deny(ctx, actor, employeeID, "no reporting line")
}

func (c *OrgChecker) deny(ctx context.Context, actor user.Identity, employeeID, reason string) error {
	slog.WarnContext(ctx, "authority check denied",
		"actor_id", actor.EmployeeID,
		"actor_role", actor.Role,
		"employee_id", employeeID,
		"reason", reason,
	)
	return authority.ErrUnauthorized
}

// CanView reports whether actor may read data belonging to employeeID. The
// employee themself always can, anyone else needs authority.
func CanView(ctx context.Context, checker authority.Checker, actor user.Identity, employeeID string) error {
	if actor.EmployeeID == employeeID {
		return nil
	}
	return checker.Authorize(ctx, actor, employeeID)
}
