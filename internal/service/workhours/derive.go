package workhours

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/schedule"
)

// Outcome is what every checkout path writes onto a record.
type Outcome struct {
	WorkHours attendance.WorkHours
	Status    attendance.Status
	Reason    string
}

// Calculator binds one loaded shift configuration to the calculator and
// classifier. Live checkout, correction approval and reconciliation all
// derive through it.
type Calculator struct {
	cfg schedule.ShiftConfig
	loc *time.Location
}

func NewCalculator(cfg schedule.ShiftConfig) (*Calculator, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &Calculator{cfg: cfg, loc: loc}, nil
}

func (c *Calculator) Config() schedule.ShiftConfig {
	return c.cfg
}

func (c *Calculator) Location() *time.Location {
	return c.loc
}

// Derive computes work hours and classifies them.
func (c *Calculator) Derive(checkIn, checkOut time.Time) (Outcome, error) {
	wh, err := ComputeWorkHours(checkIn, checkOut, c.cfg.Breaks, c.loc)
	if err != nil {
		return Outcome{}, err
	}
	status, reason := Classify(wh.EffectiveWorkHours, ThresholdsFrom(c.cfg))
	return Outcome{WorkHours: wh, Status: status, Reason: reason}, nil
}

// Apply writes the outcome onto record.
func (o Outcome) Apply(record *attendance.Record) {
	record.WorkHours = o.WorkHours
	record.Status = o.Status
	record.StatusReason = o.Reason
}

// LateMinutes returns how many minutes checkIn falls after the scheduled
// check-in of its date. Arrivals within the grace period count as on time.
func (c *Calculator) LateMinutes(checkIn time.Time) int {
	local := checkIn.In(c.loc)
	scheduled := c.cfg.ScheduledCheckIn(local, c.loc)
	deadline := scheduled.Add(time.Duration(c.cfg.GracePeriodMinutes) * time.Minute)
	if !local.After(deadline) {
		return 0
	}
	return int(local.Sub(scheduled) / time.Minute)
}

// DayOf returns the attendance date t belongs to.
func (c *Calculator) DayOf(t time.Time) time.Time {
	return schedule.DayOf(t, c.loc)
}

// ScheduledCheckOut returns the scheduled checkout for a record date.
func (c *Calculator) ScheduledCheckOut(date time.Time) time.Time {
	return c.cfg.ScheduledCheckOut(date, c.loc)
}
