package geofence

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

type EvaluateRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (r *EvaluateRequest) Validate() error {
	return validateCoordinate(r.Latitude, r.Longitude)
}

type ObservationRequest struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Reason     *string   `json:"reason,omitempty"`
	ObservedAt time.Time `json:"-"`
}

func (r *ObservationRequest) Validate() error {
	return validateCoordinate(r.Latitude, r.Longitude)
}

type AttachReasonRequest struct {
	ObservationID string `json:"-"`
	Reason        string `json:"reason"`
}

func (r *AttachReasonRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ReviewRequest struct {
	ObservationID string        `json:"-"`
	Decision      RequestStatus `json:"-"`
	Comments      *string       `json:"comments,omitempty"`
}

func (r *ReviewRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Decision != RequestStatusApproved && r.Decision != RequestStatusRejected {
		errs = append(errs, validator.ValidationError{
			Field:   "decision",
			Message: "decision must be approve or reject",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	From time.Time `json:"-"`
	To   time.Time `json:"-"`
}

func (r *ListRequest) Validate() error {
	var errs validator.ValidationErrors
	from, ok := validator.IsValidDate(r.StartDate)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	to, ok := validator.IsValidDate(r.EndDate)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	r.From, r.To = from, to.AddDate(0, 0, 1)
	return nil
}

func validateCoordinate(lat, lng float64) error {
	var errs validator.ValidationErrors

	if lat < -90 || lat > 90 {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}
	if lng < -180 || lng > 180 {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ZoneDistanceResponse struct {
	ZoneID   string  `json:"zone_id"`
	ZoneName string  `json:"zone_name"`
	Distance float64 `json:"distance_meters"`
	Contains bool    `json:"contains"`
}

type EvaluationResponse struct {
	IsWithin    bool                   `json:"is_within"`
	NearestZone *string                `json:"nearest_zone_id,omitempty"`
	Distance    float64                `json:"distance_meters"`
	Breakdown   []ZoneDistanceResponse `json:"breakdown"`
}

func (e Evaluation) ToResponse() EvaluationResponse {
	resp := EvaluationResponse{
		IsWithin:  e.IsWithin,
		Distance:  e.Distance,
		Breakdown: make([]ZoneDistanceResponse, 0, len(e.Breakdown)),
	}
	if e.NearestZone != nil {
		resp.NearestZone = &e.NearestZone.ID
	}
	for _, d := range e.Breakdown {
		resp.Breakdown = append(resp.Breakdown, ZoneDistanceResponse(d))
	}
	return resp
}

type RequestResponse struct {
	Reason     string  `json:"reason"`
	Status     string  `json:"status"`
	ReviewedBy *string `json:"reviewed_by,omitempty"`
	ReviewedAt *string `json:"reviewed_at,omitempty"`
	Comments   *string `json:"comments,omitempty"`
}

type ObservationResponse struct {
	ID                 string           `json:"id"`
	EmployeeID         string           `json:"employee_id"`
	Latitude           float64          `json:"latitude"`
	Longitude          float64          `json:"longitude"`
	ObservedAt         string           `json:"observed_at"`
	Distance           float64          `json:"distance_meters"`
	NearestZoneID      *string          `json:"nearest_zone_id,omitempty"`
	IsWithin           bool             `json:"is_within"`
	DuringWorkingHours bool             `json:"during_working_hours"`
	DuringBreak        bool             `json:"during_break"`
	ReasonRequired     bool             `json:"reason_required"`
	Request            *RequestResponse `json:"out_of_premises_request,omitempty"`
}

func (o Observation) ToResponse() ObservationResponse {
	resp := ObservationResponse{
		ID:                 o.ID,
		EmployeeID:         o.EmployeeID,
		Latitude:           o.Coordinate.Latitude,
		Longitude:          o.Coordinate.Longitude,
		ObservedAt:         o.ObservedAt.Format(time.RFC3339),
		Distance:           o.Distance,
		NearestZoneID:      o.NearestZoneID,
		IsWithin:           o.IsWithin,
		DuringWorkingHours: o.DuringWorkingHours,
		DuringBreak:        o.DuringBreak,
		ReasonRequired:     o.IsException() && o.Request == nil,
	}
	if o.Request != nil {
		resp.Request = &RequestResponse{
			Reason:     o.Request.Reason,
			Status:     string(o.Request.Status),
			ReviewedBy: o.Request.ReviewedBy,
			Comments:   o.Request.Comments,
		}
		if o.Request.ReviewedAt != nil {
			s := o.Request.ReviewedAt.Format(time.RFC3339)
			resp.Request.ReviewedAt = &s
		}
	}
	return resp
}
