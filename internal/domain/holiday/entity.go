package holiday

import "time"

// Holiday spans StartDate through EndDate inclusive. A recurring holiday
// repeats on the same month and day every year.
type Holiday struct {
	ID              string
	Name            string
	StartDate       time.Time
	EndDate         time.Time
	IsActive        bool
	RecurringYearly bool
}

// Covers reports whether the holiday applies to the calendar date of day.
func (h Holiday) Covers(day time.Time) bool {
	if !h.IsActive {
		return false
	}
	if !h.RecurringYearly {
		d := dayKey(day)
		return dayKey(h.StartDate) <= d && d <= dayKey(h.EndDate)
	}

	d := monthDayKey(day)
	start, end := monthDayKey(h.StartDate), monthDayKey(h.EndDate)
	if start <= end {
		return start <= d && d <= end
	}
	// Wraps the new year, e.g. Dec 31 - Jan 1.
	return d >= start || d <= end
}

func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

func monthDayKey(t time.Time) int {
	_, m, d := t.Date()
	return int(m)*100 + d
}
