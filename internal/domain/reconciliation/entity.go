package reconciliation

import (
	"time"
)

// Range is an inclusive span of calendar dates.
type Range struct {
	From time.Time
	To   time.Time
}

// Mode selects how a scheduled run derives its range.
type Mode string

const (
	ModeMonthToDate Mode = "month_to_date"
	ModeRolling     Mode = "rolling"
)

// MonthToDate spans the first day of today's month through today.
func MonthToDate(today time.Time) Range {
	y, m, _ := today.Date()
	return Range{
		From: time.Date(y, m, 1, 0, 0, 0, 0, time.UTC),
		To:   dateOnly(today),
	}
}

// Rolling spans the days calendar days ending today.
func Rolling(today time.Time, days int) Range {
	end := dateOnly(today)
	if days < 1 {
		days = 1
	}
	return Range{From: end.AddDate(0, 0, -(days - 1)), To: end}
}

// ForMode resolves a configured mode to a range.
func ForMode(mode Mode, today time.Time, rollingDays int) (Range, error) {
	switch mode {
	case ModeMonthToDate:
		return MonthToDate(today), nil
	case ModeRolling:
		return Rolling(today, rollingDays), nil
	}
	return Range{}, ErrInvalidMode
}

// Days returns every date in the range.
func (r Range) Days() []time.Time {
	var days []time.Time
	for d := dateOnly(r.From); !d.After(dateOnly(r.To)); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Summary counts what one run did.
type Summary struct {
	From           time.Time
	To             time.Time
	StaleClosed    int
	StaleSkipped   int
	StaleFailed    int
	AbsentCreated  int
	AbsentExisting int
	SkippedDays    int
	SkippedLeave   int
	Failed         int
	StartedAt      time.Time
	FinishedAt     time.Time
}

type SummaryResponse struct {
	From           string `json:"from"`
	To             string `json:"to"`
	StaleClosed    int    `json:"stale_closed"`
	StaleSkipped   int    `json:"stale_skipped"`
	StaleFailed    int    `json:"stale_failed"`
	AbsentCreated  int    `json:"absent_created"`
	AbsentExisting int    `json:"absent_existing"`
	SkippedDays    int    `json:"skipped_days"`
	SkippedLeave   int    `json:"skipped_leave"`
	Failed         int    `json:"failed"`
	DurationMillis int64  `json:"duration_ms"`
}

func (s Summary) ToResponse() SummaryResponse {
	return SummaryResponse{
		From:           s.From.Format("2006-01-02"),
		To:             s.To.Format("2006-01-02"),
		StaleClosed:    s.StaleClosed,
		StaleSkipped:   s.StaleSkipped,
		StaleFailed:    s.StaleFailed,
		AbsentCreated:  s.AbsentCreated,
		AbsentExisting: s.AbsentExisting,
		SkippedDays:    s.SkippedDays,
		SkippedLeave:   s.SkippedLeave,
		Failed:         s.Failed,
		DurationMillis: s.FinishedAt.Sub(s.StartedAt).Milliseconds(),
	}
}
