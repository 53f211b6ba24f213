package workhours

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

func clock(t *testing.T, s string) schedule.ClockTime {
	t.Helper()
	c, err := schedule.ParseClockTime(s)
	require.NoError(t, err)
	return c
}

func breakWindow(t *testing.T, name, start, end string) schedule.BreakWindow {
	return schedule.BreakWindow{
		Name:     name,
		Start:    clock(t, start),
		End:      clock(t, end),
		IsActive: true,
		Weekdays: weekdays,
	}
}

// 2025-06-02 is a Monday.
func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 2, hour, minute, 0, 0, time.UTC)
}

func TestComputeWorkHours_LunchBreak(t *testing.T) {
	breaks := []schedule.BreakWindow{breakWindow(t, "lunch", "13:00", "13:30")}

	got, err := ComputeWorkHours(at(9, 0), at(18, 0), breaks, time.UTC)

	require.NoError(t, err)
	assert.Equal(t, 9.0, got.TotalLoggedHours)
	assert.Equal(t, 30.0, got.BreakMinutes)
	assert.Equal(t, 8.5, got.EffectiveWorkHours)
	assert.Equal(t, 5.56, got.ShrinkagePercentage)
}

func TestComputeWorkHours_NoBreaks(t *testing.T) {
	cases := []struct {
		in, out time.Time
	}{
		{at(9, 0), at(17, 0)},
		{at(8, 13), at(12, 47)},
		{at(22, 0), at(22, 1)},
		{at(20, 0), at(20, 0).Add(10 * time.Hour)},
	}

	for _, c := range cases {
		got, err := ComputeWorkHours(c.in, c.out, nil, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, got.TotalLoggedHours, got.EffectiveWorkHours)
		assert.Zero(t, got.BreakMinutes)
		assert.Zero(t, got.ShrinkagePercentage)
	}
}

func TestComputeWorkHours_BreaksOutsideShiftContributeNothing(t *testing.T) {
	breaks := []schedule.BreakWindow{
		breakWindow(t, "early", "06:00", "07:00"),
		breakWindow(t, "late", "19:00", "19:30"),
	}

	got, err := ComputeWorkHours(at(9, 0), at(17, 0), breaks, time.UTC)

	require.NoError(t, err)
	assert.Zero(t, got.BreakMinutes)
	assert.Equal(t, 8.0, got.EffectiveWorkHours)
}

func TestComputeWorkHours_PartialIntersection(t *testing.T) {
	breaks := []schedule.BreakWindow{breakWindow(t, "lunch", "12:00", "13:00")}

	got, err := ComputeWorkHours(at(12, 30), at(17, 0), breaks, time.UTC)

	require.NoError(t, err)
	assert.Equal(t, 30.0, got.BreakMinutes)
	assert.Equal(t, 4.0, got.EffectiveWorkHours)
}

// Overlapping windows are merged. Summing them would report 90 minutes.
func TestComputeWorkHours_OverlappingBreaksCountedOnce(t *testing.T) {
	breaks := []schedule.BreakWindow{
		breakWindow(t, "lunch", "12:00", "13:00"),
		breakWindow(t, "prayer", "12:30", "13:00"),
	}

	got, err := ComputeWorkHours(at(9, 0), at(18, 0), breaks, time.UTC)

	require.NoError(t, err)
	assert.Equal(t, 60.0, got.BreakMinutes)
	assert.Equal(t, 8.0, got.EffectiveWorkHours)
	assert.NotEqual(t, 90.0, got.BreakMinutes)
}

func TestComputeWorkHours_SkipsInactiveAndOtherWeekdays(t *testing.T) {
	inactive := breakWindow(t, "inactive", "10:00", "10:30")
	inactive.IsActive = false
	fridayOnly := breakWindow(t, "friday prayer", "11:30", "13:00")
	fridayOnly.Weekdays = []time.Weekday{time.Friday}

	got, err := ComputeWorkHours(at(9, 0), at(17, 0), []schedule.BreakWindow{inactive, fridayOnly}, time.UTC)

	require.NoError(t, err)
	assert.Zero(t, got.BreakMinutes)
}

func TestComputeWorkHours_AnchorsBreaksInReferenceZone(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	breaks := []schedule.BreakWindow{breakWindow(t, "lunch", "12:00", "13:00")}

	// 09:00-18:00 WIB on Monday is 02:00-11:00 UTC.
	in := time.Date(2025, 6, 2, 2, 0, 0, 0, time.UTC)
	out := time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC)

	got, err := ComputeWorkHours(in, out, breaks, jakarta)

	require.NoError(t, err)
	assert.Equal(t, 60.0, got.BreakMinutes)

	// Read in UTC the same instants miss the break entirely.
	got, err = ComputeWorkHours(in, out, breaks, time.UTC)
	require.NoError(t, err)
	assert.Zero(t, got.BreakMinutes)
}

func TestComputeWorkHours_InvalidRange(t *testing.T) {
	_, err := ComputeWorkHours(at(18, 0), at(18, 0), nil, time.UTC)
	assert.ErrorIs(t, err, attendance.ErrInvalidRange)

	_, err = ComputeWorkHours(at(18, 0), at(9, 0), nil, time.UTC)
	assert.ErrorIs(t, err, attendance.ErrInvalidRange)
}

func TestComputeWorkHours_BreakCoveringWholeShift(t *testing.T) {
	breaks := []schedule.BreakWindow{breakWindow(t, "closed", "12:00", "14:00")}

	got, err := ComputeWorkHours(at(12, 30), at(13, 30), breaks, time.UTC)

	require.NoError(t, err)
	assert.Equal(t, 1.0, got.TotalLoggedHours)
	assert.Equal(t, 60.0, got.BreakMinutes)
	assert.Zero(t, got.EffectiveWorkHours)
	assert.Equal(t, 100.0, got.ShrinkagePercentage)
}
