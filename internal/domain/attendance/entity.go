package attendance

import (
	"time"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusPresent    Status = "present"
	StatusHalfDay    Status = "half_day"
	StatusAbsent     Status = "absent"
	StatusLate       Status = "late"
	StatusOnLeave    Status = "on_leave"
)

var StatusValues = []string{
	string(StatusInProgress),
	string(StatusPresent),
	string(StatusHalfDay),
	string(StatusAbsent),
	string(StatusLate),
	string(StatusOnLeave),
}

type CheckOutStatus string

const (
	CheckOutStatusRegular       CheckOutStatus = "regular"
	CheckOutStatusAutoCorrected CheckOutStatus = "auto_corrected"
	CheckOutStatusCorrected     CheckOutStatus = "corrected"
)

// WorkHours is the output of the shift/break calculator.
type WorkHours struct {
	TotalLoggedHours    float64
	BreakMinutes        float64
	EffectiveWorkHours  float64
	ShrinkagePercentage float64
}

// Record is the canonical attendance entry for one employee on one calendar
// date of the organization's reference time zone.
type Record struct {
	ID             string
	EmployeeID     string
	Date           time.Time
	CheckIn        *time.Time
	CheckOut       *time.Time
	CheckOutStatus *CheckOutStatus
	Status         Status
	WorkHours
	StatusReason  string
	LateMinutes   int
	IsManualEntry bool
	Remarks       string
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsOpen reports whether the record has a check-in but no checkout yet.
func (r *Record) IsOpen() bool {
	return r.CheckIn != nil && r.CheckOut == nil
}

// AppendRemark adds an audit line to the record remarks.
func (r *Record) AppendRemark(line string) {
	if r.Remarks == "" {
		r.Remarks = line
		return
	}
	r.Remarks += "\n" + line
}

// IsValidStatus reports whether s is a known record status.
func IsValidStatus(s Status) bool {
	for _, v := range StatusValues {
		if string(s) == v {
			return true
		}
	}
	return false
}
