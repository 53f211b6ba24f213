package employee

import (
	"time"
)

// Employee is the slice of the roster this engine reads.
type Employee struct {
	ID               string
	FullName         string
	Email            *string
	DepartmentID     *string
	ManagerID        *string
	HireDate         time.Time
	ResignationDate  *time.Time
	EmploymentStatus EmploymentStatus
	TelegramChatID   *int64
}

type EmploymentStatus string

const (
	EmploymentStatusActive   EmploymentStatus = "active"
	EmploymentStatusInactive EmploymentStatus = "inactive"
)

// Department groups employees under a head.
type Department struct {
	ID     string
	Name   string
	HeadID *string
}

// IsEmployedOn reports whether the employee was on the roster on day.
func (e *Employee) IsEmployedOn(day time.Time) bool {
	if e.EmploymentStatus != EmploymentStatusActive {
		return false
	}
	if dateAfter(e.HireDate, day) {
		return false
	}
	if e.ResignationDate != nil && dateAfter(day, *e.ResignationDate) {
		return false
	}
	return true
}

func dateAfter(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay > by
	}
	if am != bm {
		return am > bm
	}
	return ad > bd
}
