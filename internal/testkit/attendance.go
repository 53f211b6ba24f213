package testkit

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
)

func (s *Store) Attendance() attendance.Repository {
	return attendanceRepo{s: s}
}

type attendanceRepo struct {
	s *Store
}

func (r attendanceRepo) findByDay(employeeID string, date time.Time) (attendance.Record, bool) {
	for _, rec := range r.s.records {
		if rec.EmployeeID == employeeID && sameDate(rec.Date, date) {
			return rec, true
		}
	}
	return attendance.Record{}, false
}

func (r attendanceRepo) Create(_ context.Context, record attendance.Record) (attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.findByDay(record.EmployeeID, record.Date); ok {
		return attendance.Record{}, attendance.ErrDuplicateDay
	}
	now := time.Now().UTC()
	record.Version = 1
	record.CreatedAt, record.UpdatedAt = now, now
	r.s.records[record.ID] = record
	return record, nil
}

func (r attendanceRepo) CreateIfAbsent(ctx context.Context, record attendance.Record) (bool, error) {
	_, err := r.Create(ctx, record)
	if err == attendance.ErrDuplicateDay {
		return false, nil
	}
	return err == nil, err
}

func (r attendanceRepo) GetByID(_ context.Context, id string) (attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.records[id]
	if !ok {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	return rec, nil
}

func (r attendanceRepo) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if rec, ok := r.findByDay(employeeID, date); ok {
		return &rec, nil
	}
	return nil, nil
}

func (r attendanceRepo) GetOpenByEmployee(_ context.Context, employeeID string) (*attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var open *attendance.Record
	for _, rec := range r.s.records {
		if rec.EmployeeID != employeeID || !rec.IsOpen() {
			continue
		}
		if open == nil || rec.CheckIn.After(*open.CheckIn) {
			rec := rec
			open = &rec
		}
	}
	return open, nil
}

func (r attendanceRepo) UpdateIfVersion(_ context.Context, record attendance.Record) (attendance.Record, error) {
	if hook := r.s.BeforeRecordUpdate; hook != nil {
		if err := hook(record); err != nil {
			return attendance.Record{}, err
		}
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.records[record.ID]
	if !ok || stored.Version != record.Version {
		return attendance.Record{}, attendance.ErrRecordConflict
	}
	record.EmployeeID = stored.EmployeeID
	record.Date = stored.Date
	record.CreatedAt = stored.CreatedAt
	record.Version = stored.Version + 1
	record.UpdatedAt = time.Now().UTC()
	r.s.records[record.ID] = record
	return record, nil
}

func (r attendanceRepo) List(_ context.Context, filter attendance.Filter) ([]attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []attendance.Record
	for _, rec := range r.s.records {
		if filter.EmployeeID != nil && rec.EmployeeID != *filter.EmployeeID {
			continue
		}
		if !filter.From.IsZero() && rec.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && rec.Date.After(filter.To) {
			continue
		}
		if filter.Status != nil && rec.Status != *filter.Status {
			continue
		}
		out = append(out, rec)
	}
	sortRecords(out)
	return out, nil
}

func (r attendanceRepo) ListInProgressBefore(_ context.Context, date time.Time) ([]attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []attendance.Record
	for _, rec := range r.s.records {
		if rec.Status == attendance.StatusInProgress && rec.Date.Before(date) {
			out = append(out, rec)
		}
	}
	sortRecords(out)
	return out, nil
}

func sortRecords(records []attendance.Record) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].EmployeeID < records[j].EmployeeID
	})
}
