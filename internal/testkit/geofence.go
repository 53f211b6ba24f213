package testkit

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/geofence"
)

func (s *Store) Zones() geofence.ZoneRepository {
	return zoneRepo{s: s}
}

type zoneRepo struct {
	s *Store
}

func (r zoneRepo) ListActive(_ context.Context) ([]geofence.Zone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []geofence.Zone
	for _, z := range r.s.zones {
		if z.IsActive {
			out = append(out, z)
		}
	}
	return out, nil
}

func (s *Store) Observations() geofence.ObservationRepository {
	return observationRepo{s: s}
}

type observationRepo struct {
	s *Store
}

func (r observationRepo) Create(_ context.Context, obs geofence.Observation) (geofence.Observation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	obs.CreatedAt = time.Now().UTC()
	r.s.observations[obs.ID] = obs
	return obs, nil
}

func (r observationRepo) GetByID(_ context.Context, id string) (geofence.Observation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	obs, ok := r.s.observations[id]
	if !ok {
		return geofence.Observation{}, geofence.ErrObservationNotFound
	}
	return obs, nil
}

func (r observationRepo) AttachRequest(_ context.Context, id string, req geofence.OutOfPremisesRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	obs, ok := r.s.observations[id]
	if !ok {
		return geofence.ErrObservationNotFound
	}
	if obs.Request != nil {
		return geofence.ErrRequestExists
	}
	obs.Request = &req
	r.s.observations[id] = obs
	return nil
}

func (r observationRepo) DecideRequest(_ context.Context, id string, req geofence.OutOfPremisesRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	obs, ok := r.s.observations[id]
	if !ok || obs.Request == nil || obs.Request.Status != geofence.RequestStatusPending {
		return geofence.ErrAlreadyProcessed
	}
	decided := *obs.Request
	decided.Status = req.Status
	decided.ReviewedBy = req.ReviewedBy
	decided.ReviewedAt = req.ReviewedAt
	decided.Comments = req.Comments
	obs.Request = &decided
	r.s.observations[id] = obs
	return nil
}

func (r observationRepo) ListByEmployee(_ context.Context, employeeID string, from, to time.Time) ([]geofence.Observation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []geofence.Observation
	for _, obs := range r.s.observations {
		if obs.EmployeeID == employeeID && !obs.ObservedAt.Before(from) && obs.ObservedAt.Before(to) {
			out = append(out, obs)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ObservedAt.After(out[j].ObservedAt) })
	return out, nil
}
