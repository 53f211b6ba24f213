package testkit

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/correction"
)

func (s *Store) Corrections() correction.Repository {
	return correctionRepo{s: s}
}

type correctionRepo struct {
	s *Store
}

func (r correctionRepo) hasPending(attendanceID string) bool {
	for _, c := range r.s.corrections {
		if c.AttendanceID == attendanceID && c.IsPending() {
			return true
		}
	}
	return false
}

func (r correctionRepo) Create(_ context.Context, req correction.Request) (correction.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.hasPending(req.AttendanceID) {
		return correction.Request{}, correction.ErrDuplicatePending
	}
	now := time.Now().UTC()
	req.Status = correction.StatusPending
	req.CreatedAt, req.UpdatedAt = now, now
	r.s.corrections[req.ID] = req
	return req, nil
}

func (r correctionRepo) GetByID(_ context.Context, id string) (correction.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.corrections[id]
	if !ok {
		return correction.Request{}, correction.ErrCorrectionNotFound
	}
	return c, nil
}

func (r correctionRepo) HasPending(_ context.Context, attendanceID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.hasPending(attendanceID), nil
}

func (r correctionRepo) Decide(_ context.Context, req correction.Request) error {
	if hook := r.s.BeforeDecide; hook != nil {
		if err := hook(req); err != nil {
			return err
		}
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.corrections[req.ID]
	if !ok || !stored.IsPending() {
		return correction.ErrAlreadyProcessed
	}
	stored.Status = req.Status
	stored.ReviewedBy = req.ReviewedBy
	stored.ReviewedAt = req.ReviewedAt
	stored.ReviewerComments = req.ReviewerComments
	stored.Applied = req.Applied
	stored.UpdatedAt = time.Now().UTC()
	r.s.corrections[req.ID] = stored
	return nil
}

func (r correctionRepo) List(_ context.Context, filter correction.Filter) ([]correction.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []correction.Request
	for _, c := range r.s.corrections {
		if filter.EmployeeID != nil && c.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
