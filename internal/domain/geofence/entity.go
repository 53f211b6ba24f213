package geofence

import (
	"time"
)

type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Zone is a circular premises area.
type Zone struct {
	ID                   string
	Name                 string
	Center               Coordinate
	RadiusMeters         float64
	IsActive             bool
	AllowedDepartmentIDs []string
	AllowedEmployeeIDs   []string
}

// IsEligible reports whether the employee may be evaluated against the
// zone. A zone without allow-lists is open to everyone.
func (z Zone) IsEligible(employeeID string, departmentID *string) bool {
	if !z.IsActive {
		return false
	}
	if len(z.AllowedDepartmentIDs) == 0 && len(z.AllowedEmployeeIDs) == 0 {
		return true
	}
	for _, id := range z.AllowedEmployeeIDs {
		if id == employeeID {
			return true
		}
	}
	if departmentID != nil {
		for _, id := range z.AllowedDepartmentIDs {
			if id == *departmentID {
				return true
			}
		}
	}
	return false
}

type ZoneDistance struct {
	ZoneID   string
	ZoneName string
	Distance float64
	Contains bool
}

// Evaluation is the result of evaluating one coordinate against the
// eligible zones.
type Evaluation struct {
	IsWithin    bool
	NearestZone *Zone
	Distance    float64
	Breakdown   []ZoneDistance
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// OutOfPremisesRequest is an employee's justification for an observation
// outside every eligible zone.
type OutOfPremisesRequest struct {
	Reason     string
	Status     RequestStatus
	ReviewedBy *string
	ReviewedAt *time.Time
	Comments   *string
	CreatedAt  time.Time
}

// Observation is one logged coordinate sample.
type Observation struct {
	ID                 string
	EmployeeID         string
	Coordinate         Coordinate
	ObservedAt         time.Time
	Distance           float64
	NearestZoneID      *string
	IsWithin           bool
	DuringWorkingHours bool
	DuringBreak        bool
	Request            *OutOfPremisesRequest
	CreatedAt          time.Time
}

// IsException reports whether the observation is outside every eligible
// zone during working hours and outside any active break.
func (o *Observation) IsException() bool {
	return !o.IsWithin && o.DuringWorkingHours && !o.DuringBreak
}
