package correction

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

type SubmitRequest struct {
	// EmployeeID is the subject of the correction. Empty means the caller.
	EmployeeID        string  `json:"employee_id,omitempty"`
	AttendanceID      *string `json:"attendance_id,omitempty"`
	Date              *string `json:"date,omitempty"` // YYYY-MM-DD
	Type              string  `json:"type"`
	RequestedCheckIn  *string `json:"requested_check_in,omitempty"`  // RFC3339
	RequestedCheckOut *string `json:"requested_check_out,omitempty"` // RFC3339
	RequestedStatus   *string `json:"requested_status,omitempty"`
	Reason            string  `json:"reason"`

	// Parsed by Validate
	ParsedDate *time.Time `json:"-"`
	Patch      Patch      `json:"-"`
}

func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.AttendanceID == nil && r.Date == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_id",
			Message: "either attendance_id or date is required",
		})
	}
	if r.AttendanceID != nil && validator.IsEmpty(*r.AttendanceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_id",
			Message: "attendance_id must not be empty",
		})
	}
	if r.Date != nil {
		d, ok := validator.IsValidDate(*r.Date)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		} else {
			r.ParsedDate = &d
		}
	}

	if !validator.IsInSlice(r.Type, TypeValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: " + strings.Join(TypeValues, ", "),
		})
	}
	if Type(r.Type) == TypeMissingEntry && r.Date == nil && r.AttendanceID == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required for missing_entry corrections",
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	r.Patch = Patch{}
	if r.RequestedCheckIn != nil {
		t, ok := validator.IsValidDateTime(*r.RequestedCheckIn)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "requested_check_in",
				Message: "requested_check_in must be an RFC3339 timestamp",
			})
		} else {
			r.Patch.CheckIn = &t
		}
	}
	if r.RequestedCheckOut != nil {
		t, ok := validator.IsValidDateTime(*r.RequestedCheckOut)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "requested_check_out",
				Message: "requested_check_out must be an RFC3339 timestamp",
			})
		} else {
			r.Patch.CheckOut = &t
		}
	}
	if r.RequestedStatus != nil {
		s := attendance.Status(*r.RequestedStatus)
		if !attendance.IsValidStatus(s) || s == attendance.StatusInProgress {
			errs = append(errs, validator.ValidationError{
				Field:   "requested_status",
				Message: "requested_status must be one of: present, half_day, absent, late, on_leave",
			})
		} else {
			r.Patch.Status = &s
		}
	}

	if r.Patch.CheckIn != nil && r.Patch.CheckOut != nil && !r.Patch.CheckOut.After(*r.Patch.CheckIn) {
		errs = append(errs, validator.ValidationError{
			Field:   "requested_check_out",
			Message: "requested_check_out must be after requested_check_in",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	if r.Patch.IsEmpty() {
		return ErrEmptyPatch
	}
	return nil
}

type ReviewRequest struct {
	ID       string   `json:"-"`
	Decision Decision `json:"-"`
	Comments *string  `json:"comments,omitempty"`
}

func (r *ReviewRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if r.Decision != DecisionApprove && r.Decision != DecisionReject {
		errs = append(errs, validator.ValidationError{
			Field:   "decision",
			Message: "decision must be approve or reject",
		})
	}
	if r.Decision == DecisionReject && (r.Comments == nil || validator.IsEmpty(*r.Comments)) {
		errs = append(errs, validator.ValidationError{
			Field:   "comments",
			Message: "comments are required when rejecting",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SnapshotResponse struct {
	CheckIn   *string `json:"check_in,omitempty"`
	CheckOut  *string `json:"check_out,omitempty"`
	Status    string  `json:"status"`
	WorkHours float64 `json:"work_hours"`
}

type Response struct {
	ID                string            `json:"id"`
	AttendanceID      string            `json:"attendance_id"`
	EmployeeID        string            `json:"employee_id"`
	SubmittedBy       string            `json:"submitted_by"`
	Type              string            `json:"type"`
	Reason            string            `json:"reason"`
	Status            string            `json:"status"`
	Before            SnapshotResponse  `json:"before"`
	RequestedCheckIn  *string           `json:"requested_check_in,omitempty"`
	RequestedCheckOut *string           `json:"requested_check_out,omitempty"`
	RequestedStatus   *string           `json:"requested_status,omitempty"`
	Applied           *SnapshotResponse `json:"applied,omitempty"`
	ReviewedBy        *string           `json:"reviewed_by,omitempty"`
	ReviewedAt        *string           `json:"reviewed_at,omitempty"`
	ReviewerComments  *string           `json:"reviewer_comments,omitempty"`
	CreatedAt         string            `json:"created_at"`
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func (s Snapshot) toResponse() SnapshotResponse {
	return SnapshotResponse{
		CheckIn:   formatTime(s.CheckIn),
		CheckOut:  formatTime(s.CheckOut),
		Status:    string(s.Status),
		WorkHours: s.WorkHours,
	}
}

// ToResponse renders the request for the API.
func (r Request) ToResponse() Response {
	resp := Response{
		ID:                r.ID,
		AttendanceID:      r.AttendanceID,
		EmployeeID:        r.EmployeeID,
		SubmittedBy:       r.SubmittedBy,
		Type:              string(r.Type),
		Reason:            r.Reason,
		Status:            string(r.Status),
		Before:            r.Before.toResponse(),
		RequestedCheckIn:  formatTime(r.Requested.CheckIn),
		RequestedCheckOut: formatTime(r.Requested.CheckOut),
		ReviewedBy:        r.ReviewedBy,
		ReviewedAt:        formatTime(r.ReviewedAt),
		ReviewerComments:  r.ReviewerComments,
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
	}
	if r.Requested.Status != nil {
		s := string(*r.Requested.Status)
		resp.RequestedStatus = &s
	}
	if r.Applied != nil {
		applied := r.Applied.toResponse()
		resp.Applied = &applied
	}
	return resp
}
