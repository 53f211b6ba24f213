package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type OpenDayRequest struct {
	EmployeeID string
	CheckIn    time.Time
}

func (r *OpenDayRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if r.CheckIn.IsZero() {
		errs = append(errs, validator.ValidationError{
			Field:   "check_in",
			Message: "check_in is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CloseDayRequest struct {
	EmployeeID string
	// Date optionally pins the record being closed. When nil the employee's
	// open record is closed whatever its date.
	Date     *time.Time
	CheckOut time.Time
}

func (r *CloseDayRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if r.CheckOut.IsZero() {
		errs = append(errs, validator.ValidationError{
			Field:   "check_out",
			Message: "check_out is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListRequest struct {
	EmployeeID string  `json:"employee_id"`
	StartDate  string  `json:"start_date"` // YYYY-MM-DD
	EndDate    string  `json:"end_date"`   // YYYY-MM-DD
	Status     *string `json:"status,omitempty"`

	From time.Time `json:"-"`
	To   time.Time `json:"-"`
}

func (r *ListRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

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
	if len(errs) == 0 && to.Before(from) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if r.Status != nil && !validator.IsInSlice(*r.Status, StatusValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: in_progress, present, half_day, absent, late, on_leave",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	r.From, r.To = from, to
	return nil
}

type Response struct {
	ID                  string  `json:"id"`
	EmployeeID          string  `json:"employee_id"`
	Date                string  `json:"date"`
	CheckIn             *string `json:"check_in,omitempty"`
	CheckOut            *string `json:"check_out,omitempty"`
	CheckOutStatus      *string `json:"check_out_status,omitempty"`
	Status              string  `json:"status"`
	StatusReason        string  `json:"status_reason,omitempty"`
	TotalLoggedHours    float64 `json:"total_logged_hours"`
	BreakMinutes        float64 `json:"break_minutes"`
	EffectiveWorkHours  float64 `json:"effective_work_hours"`
	ShrinkagePercentage float64 `json:"shrinkage_percentage"`
	LateMinutes         int     `json:"late_minutes"`
	IsManualEntry       bool    `json:"is_manual_entry"`
	Remarks             string  `json:"remarks,omitempty"`
	UpdatedAt           string  `json:"updated_at"`
}

// ToResponse renders the record for the API.
func (r Record) ToResponse() Response {
	resp := Response{
		ID:                  r.ID,
		EmployeeID:          r.EmployeeID,
		Date:                r.Date.Format("2006-01-02"),
		Status:              string(r.Status),
		StatusReason:        r.StatusReason,
		TotalLoggedHours:    r.TotalLoggedHours,
		BreakMinutes:        r.BreakMinutes,
		EffectiveWorkHours:  r.EffectiveWorkHours,
		ShrinkagePercentage: r.ShrinkagePercentage,
		LateMinutes:         r.LateMinutes,
		IsManualEntry:       r.IsManualEntry,
		Remarks:             r.Remarks,
		UpdatedAt:           r.UpdatedAt.Format(time.RFC3339),
	}
	if r.CheckIn != nil {
		s := r.CheckIn.Format(time.RFC3339)
		resp.CheckIn = &s
	}
	if r.CheckOut != nil {
		s := r.CheckOut.Format(time.RFC3339)
		resp.CheckOut = &s
	}
	if r.CheckOutStatus != nil {
		s := string(*r.CheckOutStatus)
		resp.CheckOutStatus = &s
	}
	return resp
}

type ListResponse struct {
	TotalCount int        `json:"total_count"`
	Records    []Response `json:"records"`
}
