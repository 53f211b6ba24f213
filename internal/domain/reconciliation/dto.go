package reconciliation

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

// RunRequest names a run either by explicit dates or by a range mode.
type RunRequest struct {
	StartDate string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Mode      string `json:"mode,omitempty"`
	Days      int    `json:"days,omitempty"`
}

// ToRange validates the request and converts it to a Range. Without dates
// the mode is resolved against today.
func (r *RunRequest) ToRange(today time.Time) (Range, error) {
	if r.StartDate == "" && r.EndDate == "" {
		mode := Mode(r.Mode)
		if mode == "" {
			mode = ModeMonthToDate
		}
		if mode == ModeRolling && r.Days <= 0 {
			return Range{}, validator.ValidationErrors{{
				Field:   "days",
				Message: "days must be positive for rolling mode",
			}}
		}
		return ForMode(mode, today, r.Days)
	}

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
		return Range{}, errs
	}
	if to.Before(from) {
		return Range{}, ErrInvalidRange
	}
	return Range{From: from, To: to}, nil
}
