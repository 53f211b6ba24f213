package authority

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/authority"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/testkit"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestOrgChecker_Authorize(t *testing.T) {
	store := testkit.NewStore()
	store.AddDepartment(employee.Department{ID: "dept-ops", Name: "Operations", HeadID: strPtr("head-1")})
	store.AddEmployee(employee.Employee{
		ID:               "emp-1",
		DepartmentID:     strPtr("dept-ops"),
		ManagerID:        strPtr("mgr-1"),
		EmploymentStatus: employee.EmploymentStatusActive,
	})
	store.AddEmployee(employee.Employee{
		ID:               "emp-orphan",
		DepartmentID:     strPtr("dept-gone"),
		EmploymentStatus: employee.EmploymentStatusActive,
	})
	checker := NewChecker(store.Directory())

	tests := []struct {
		name     string
		actor    user.Identity
		employee string
		wantErr  error
	}{
		{"hr is org-wide", user.Identity{EmployeeID: "hr-1", Role: user.RoleHR}, "emp-1", nil},
		{"admin is org-wide even for unknown employees", user.Identity{EmployeeID: "adm", Role: user.RoleAdmin}, "ghost", nil},
		{"direct manager", user.Identity{EmployeeID: "mgr-1", Role: user.RoleManager}, "emp-1", nil},
		{"department head", user.Identity{EmployeeID: "head-1", Role: user.RoleManager}, "emp-1", nil},
		{"unrelated manager", user.Identity{EmployeeID: "mgr-2", Role: user.RoleManager}, "emp-1", authority.ErrUnauthorized},
		{"employee on own record", user.Identity{EmployeeID: "emp-1", Role: user.RoleEmployee}, "emp-1", authority.ErrUnauthorized},
		{"peer employee", user.Identity{EmployeeID: "emp-2", Role: user.RoleEmployee}, "emp-1", authority.ErrUnauthorized},
		{"unknown employee", user.Identity{EmployeeID: "mgr-1", Role: user.RoleManager}, "ghost", authority.ErrUnauthorized},
		{"unknown department", user.Identity{EmployeeID: "mgr-1", Role: user.RoleManager}, "emp-orphan", authority.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checker.Authorize(context.Background(), tt.actor, tt.employee)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCanView(t *testing.T) {
	checker := NewChecker(testkit.NewStore().Directory())
	self := user.Identity{EmployeeID: "emp-1", Role: user.RoleEmployee}

	assert.NoError(t, CanView(context.Background(), checker, self, "emp-1"))
	assert.ErrorIs(t, CanView(context.Background(), checker, self, "emp-2"), authority.ErrUnauthorized)
}
