// Package testkit provides in-memory implementations of the repositories
// and collaborators for service tests.
package testkit

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/correction"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/geofence"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
)

// Store holds every table in memory. The zero value is not usable, call
// NewStore.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	records      map[string]attendance.Record
	corrections  map[string]correction.Request
	observations map[string]geofence.Observation
	zones        []geofence.Zone
	shift        *schedule.ShiftConfig
	employees    map[string]employee.Employee
	departments  map[string]employee.Department
	leaves       []leave.Interval
	holidays     []holiday.Holiday

	// BeforeRecordUpdate, when set, runs before every versioned record
	// update and may return an error to simulate a failure or conflict.
	BeforeRecordUpdate func(record attendance.Record) error
	// BeforeDecide, when set, runs before a correction decision is stored.
	BeforeDecide func(req correction.Request) error
}

func NewStore() *Store {
	return &Store{
		records:      make(map[string]attendance.Record),
		corrections:  make(map[string]correction.Request),
		observations: make(map[string]geofence.Observation),
		employees:    make(map[string]employee.Employee),
		departments:  make(map[string]employee.Department),
	}
}

// SetShift replaces the shift configuration. A nil cfg makes it missing.
func (s *Store) SetShift(cfg *schedule.ShiftConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shift = cfg
}

func (s *Store) AddZone(z geofence.Zone) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zones = append(s.zones, z)
}

func (s *Store) AddEmployee(e employee.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = e
}

func (s *Store) AddDepartment(d employee.Department) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.departments[d.ID] = d
}

func (s *Store) AddLeave(in leave.Interval) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaves = append(s.leaves, in)
}

func (s *Store) AddHoliday(h holiday.Holiday) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holidays = append(s.holidays, h)
}

// PutRecord stores a record as-is, bypassing every invariant check.
func (s *Store) PutRecord(r attendance.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Version == 0 {
		r.Version = 1
	}
	s.records[r.ID] = r
}

// Records returns a copy of every stored record.
func (s *Store) Records() []attendance.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]attendance.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	return out
}

// RecordFor returns the record of employeeID on date, if any.
func (s *Store) RecordFor(employeeID string, date time.Time) (attendance.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.EmployeeID == employeeID && sameDate(r.Date, date) {
			return r, true
		}
	}
	return attendance.Record{}, false
}

type snapshot struct {
	records      map[string]attendance.Record
	corrections  map[string]correction.Request
	observations map[string]geofence.Observation
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		records:      maps.Clone(s.records),
		corrections:  maps.Clone(s.corrections),
		observations: maps.Clone(s.observations),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = snap.records
	s.corrections = snap.corrections
	s.observations = snap.observations
}

type txKey struct{}

// Transactor serializes transactions and restores the mutable tables when fn
// fails.
func (s *Store) Transactor() database.Transactor {
	return transactor{s: s}
}

type transactor struct {
	s *Store
}

func (t transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	snap := t.s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
