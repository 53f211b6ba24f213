package workhours

import (
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/schedule"
	"github.com/shopspring/decimal"
)

var (
	secondsPerHour   = decimal.NewFromInt(3600)
	secondsPerMinute = decimal.NewFromInt(60)
	minutesPerHour   = decimal.NewFromInt(60)
	hundred          = decimal.NewFromInt(100)
)

// ComputeWorkHours derives logged hours, break minutes, effective hours and
// shrinkage for one check-in/checkout pair. Break windows are anchored to
// checkIn's calendar date in loc and overlapping windows are counted once.
func ComputeWorkHours(checkIn, checkOut time.Time, breaks []schedule.BreakWindow, loc *time.Location) (attendance.WorkHours, error) {
	if !checkOut.After(checkIn) {
		return attendance.WorkHours{}, fmt.Errorf("%w: check-in %s, check-out %s",
			attendance.ErrInvalidRange, checkIn.Format(time.RFC3339), checkOut.Format(time.RFC3339))
	}
	if loc == nil {
		loc = time.UTC
	}

	total := decimal.NewFromFloat(checkOut.Sub(checkIn).Seconds()).Div(secondsPerHour)

	breakSeconds := unionSeconds(breakIntervals(checkIn, checkOut, breaks, loc))
	breakMinutes := decimal.NewFromFloat(breakSeconds).Div(secondsPerMinute)
	breakHours := breakMinutes.Div(minutesPerHour)

	effective := total.Sub(breakHours)
	if effective.IsNegative() {
		effective = decimal.Zero
	}

	totalRounded := total.Round(2)
	shrinkage := decimal.Zero
	if !totalRounded.IsZero() {
		shrinkage = breakHours.Div(total).Mul(hundred)
	}

	return attendance.WorkHours{
		TotalLoggedHours:    totalRounded.InexactFloat64(),
		BreakMinutes:        breakMinutes.Round(2).InexactFloat64(),
		EffectiveWorkHours:  effective.Round(2).InexactFloat64(),
		ShrinkagePercentage: shrinkage.Round(2).InexactFloat64(),
	}, nil
}

type interval struct {
	start time.Time
	end   time.Time
}

// breakIntervals intersects each applicable break with [checkIn, checkOut]
// and drops empty intersections.
func breakIntervals(checkIn, checkOut time.Time, breaks []schedule.BreakWindow, loc *time.Location) []interval {
	localIn := checkIn.In(loc)
	weekday := localIn.Weekday()

	var out []interval
	for _, b := range breaks {
		if !b.AppliesOn(weekday) {
			continue
		}
		start, end := b.Bounds(localIn, loc)
		if start.Before(checkIn) {
			start = checkIn
		}
		if end.After(checkOut) {
			end = checkOut
		}
		if !end.After(start) {
			continue
		}
		out = append(out, interval{start: start, end: end})
	}
	return out
}

// unionSeconds returns the length of the union of the intervals.
func unionSeconds(intervals []interval) float64 {
	if len(intervals) == 0 {
		return 0
	}
	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start.Before(intervals[j].start)
	})

	var total time.Duration
	cur := intervals[0]
	for _, iv := range intervals[1:] {
		if !iv.start.After(cur.end) {
			if iv.end.After(cur.end) {
				cur.end = iv.end
			}
			continue
		}
		total += cur.end.Sub(cur.start)
		cur = iv
	}
	total += cur.end.Sub(cur.start)
	return total.Seconds()
}
