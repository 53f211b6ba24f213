package schedule

import (
	"fmt"
	"time"
)

// ShiftConfig is the organization-wide shift definition used by every
// work-hour calculation. It is loaded once per request or job run.
type ShiftConfig struct {
	ID                 string
	Timezone           string
	CheckIn            ClockTime
	CheckOut           ClockTime
	WorkingDays        []time.Weekday
	FullDayHours       float64
	HalfDayHours       float64
	GracePeriodMinutes int
	Breaks             []BreakWindow
	UpdatedAt          time.Time
}

// BreakWindow is a named daily break. Windows may overlap each other.
type BreakWindow struct {
	ID       string
	Name     string
	Start    ClockTime
	End      ClockTime
	IsActive bool
	Weekdays []time.Weekday
}

// ClockTime is a wall-clock time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns the number of minutes since midnight.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

// On anchors the clock time in loc to the calendar date carried by day.
// day is read in its own location, so callers pass either a date from DayOf
// or an instant already converted to loc.
func (c ClockTime) On(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, loc)
}

// Location resolves the configured reference time zone.
func (s *ShiftConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimezone, s.Timezone)
	}
	return loc, nil
}

// IsWorkingDay reports whether the weekday of day is a configured working day.
func (s *ShiftConfig) IsWorkingDay(day time.Time) bool {
	return containsWeekday(s.WorkingDays, day.Weekday())
}

// IsNextDayCheckout reports whether the scheduled checkout falls on the
// calendar day after the scheduled check-in.
func (s *ShiftConfig) IsNextDayCheckout() bool {
	return s.CheckOut.Minutes() <= s.CheckIn.Minutes()
}

// ScheduledCheckIn returns the scheduled check-in instant for day.
func (s *ShiftConfig) ScheduledCheckIn(day time.Time, loc *time.Location) time.Time {
	return s.CheckIn.On(day, loc)
}

// ScheduledCheckOut returns the scheduled checkout instant for the shift
// starting on day.
func (s *ShiftConfig) ScheduledCheckOut(day time.Time, loc *time.Location) time.Time {
	out := s.CheckOut.On(day, loc)
	if s.IsNextDayCheckout() {
		out = out.AddDate(0, 0, 1)
	}
	return out
}

// WithinWorkingHours reports whether t falls inside the scheduled shift of a
// working day.
func (s *ShiftConfig) WithinWorkingHours(t time.Time, loc *time.Location) bool {
	local := t.In(loc)
	for _, start := range []time.Time{local, local.AddDate(0, 0, -1)} {
		if !s.IsWorkingDay(start) {
			continue
		}
		in := s.ScheduledCheckIn(start, loc)
		out := s.ScheduledCheckOut(start, loc)
		if !local.Before(in) && local.Before(out) {
			return true
		}
	}
	return false
}

// ActiveBreakAt returns the break window in effect at t, if any.
func (s *ShiftConfig) ActiveBreakAt(t time.Time, loc *time.Location) (*BreakWindow, bool) {
	local := t.In(loc)
	for i := range s.Breaks {
		b := s.Breaks[i]
		if !b.AppliesOn(local.Weekday()) {
			continue
		}
		start, end := b.Bounds(local, loc)
		if !local.Before(start) && local.Before(end) {
			return &b, true
		}
	}
	return nil, false
}

// AppliesOn reports whether the break is active on weekday.
func (b BreakWindow) AppliesOn(weekday time.Weekday) bool {
	return b.IsActive && containsWeekday(b.Weekdays, weekday)
}

// Bounds anchors the window to the calendar date of day. A window whose end
// is not after its start runs past midnight.
func (b BreakWindow) Bounds(day time.Time, loc *time.Location) (time.Time, time.Time) {
	start := b.Start.On(day, loc)
	end := b.End.On(day, loc)
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end
}

func containsWeekday(days []time.Weekday, d time.Weekday) bool {
	for _, w := range days {
		if w == d {
			return true
		}
	}
	return false
}

// DayOf truncates t to its calendar date in loc. The result is midnight UTC
// of that date so that dates compare equal regardless of the zone they were
// derived in.
func DayOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
