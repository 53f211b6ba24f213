package testkit

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/schedule"
)

func (s *Store) Shift() schedule.Repository {
	return shiftRepo{s: s}
}

type shiftRepo struct {
	s *Store
}

func (r shiftRepo) Get(_ context.Context) (schedule.ShiftConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.shift == nil {
		return schedule.ShiftConfig{}, schedule.ErrConfigMissing
	}
	return *r.s.shift, nil
}

func (s *Store) Directory() employee.Directory {
	return directory{s: s}
}

type directory struct {
	s *Store
}

func (d directory) GetByID(_ context.Context, id string) (employee.Employee, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	e, ok := d.s.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (d directory) GetDepartment(_ context.Context, id string) (employee.Department, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	dept, ok := d.s.departments[id]
	if !ok {
		return employee.Department{}, employee.ErrDepartmentNotFound
	}
	return dept, nil
}

func (d directory) ListActive(_ context.Context) ([]employee.Employee, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	var out []employee.Employee
	for _, e := range d.s.employees {
		if e.EmploymentStatus == employee.EmploymentStatusActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) Leave() leave.Calendar {
	return leaveCalendar{s: s}
}

type leaveCalendar struct {
	s *Store
}

func (c leaveCalendar) ListApproved(_ context.Context, from, to time.Time) ([]leave.Interval, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	var out []leave.Interval
	for _, in := range c.s.leaves {
		if in.Status != leave.StatusApproved {
			continue
		}
		if in.EndDate.Before(from) || in.StartDate.After(to) {
			continue
		}
		out = append(out, in)
	}
	return out, nil
}

func (s *Store) Holidays() holiday.Calendar {
	return holidayCalendar{s: s}
}

type holidayCalendar struct {
	s *Store
}

func (c holidayCalendar) ListActive(_ context.Context, from, to time.Time) ([]holiday.Holiday, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	var out []holiday.Holiday
	for _, h := range c.s.holidays {
		if !h.IsActive {
			continue
		}
		if !h.RecurringYearly && (h.EndDate.Before(from) || h.StartDate.After(to)) {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

// Notifier records every notification it is handed.
type Notifier struct {
	mu   sync.Mutex
	sent []notification.Notification
}

func (n *Notifier) Notify(_ context.Context, msg notification.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

// Sent returns a copy of the recorded notifications.
func (n *Notifier) Sent() []notification.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification.Notification(nil), n.sent...)
}

// OfType returns the recorded notifications of type t.
func (n *Notifier) OfType(t notification.Type) []notification.Notification {
	var out []notification.Notification
	for _, msg := range n.Sent() {
		if msg.Type == t {
			out = append(out, msg)
		}
	}
	return out
}

// FixedClock returns a clock function that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
