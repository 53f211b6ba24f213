package correction

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type Type string

const (
	TypeMissingEntry   Type = "missing_entry"
	TypeTimeAdjustment Type = "time_adjustment"
	TypeStatusChange   Type = "status_change"
)

var TypeValues = []string{
	string(TypeMissingEntry),
	string(TypeTimeAdjustment),
	string(TypeStatusChange),
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Snapshot captures the audited fields of an attendance record.
type Snapshot struct {
	CheckIn   *time.Time
	CheckOut  *time.Time
	Status    attendance.Status
	WorkHours float64
}

// SnapshotOf captures the current values of record.
func SnapshotOf(record attendance.Record) Snapshot {
	return Snapshot{
		CheckIn:   record.CheckIn,
		CheckOut:  record.CheckOut,
		Status:    record.Status,
		WorkHours: record.EffectiveWorkHours,
	}
}

// Patch lists the fields a correction may change. A nil field means no
// change was requested for it.
type Patch struct {
	CheckIn  *time.Time
	CheckOut *time.Time
	Status   *attendance.Status
}

func (p Patch) IsEmpty() bool {
	return p.CheckIn == nil && p.CheckOut == nil && p.Status == nil
}

// Request is a proposed change to one attendance record.
type Request struct {
	ID               string
	AttendanceID     string
	EmployeeID       string
	SubmittedBy      string
	Type             Type
	Reason           string
	Before           Snapshot
	Requested        Patch
	Applied          *Snapshot
	Status           Status
	ReviewedBy       *string
	ReviewedAt       *time.Time
	ReviewerComments *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (r *Request) IsPending() bool {
	return r.Status == StatusPending
}
