package workhours

import (
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/schedule"
)

type Thresholds struct {
	FullDayHours float64
	HalfDayHours float64
}

// ThresholdsFrom reads the classification thresholds of a shift.
func ThresholdsFrom(cfg schedule.ShiftConfig) Thresholds {
	return Thresholds{FullDayHours: cfg.FullDayHours, HalfDayHours: cfg.HalfDayHours}
}

// Classify maps effective work hours to a status with a short reason.
func Classify(effectiveWorkHours float64, t Thresholds) (attendance.Status, string) {
	switch {
	case effectiveWorkHours >= t.FullDayHours:
		return attendance.StatusPresent, fmt.Sprintf(
			"worked %.2fh, meets full day of %.2fh", effectiveWorkHours, t.FullDayHours)
	case effectiveWorkHours >= t.HalfDayHours:
		return attendance.StatusHalfDay, fmt.Sprintf(
			"worked %.2fh, below full day of %.2fh but meets half day of %.2fh",
			effectiveWorkHours, t.FullDayHours, t.HalfDayHours)
	default:
		return attendance.StatusAbsent, fmt.Sprintf(
			"worked %.2fh, below half day of %.2fh", effectiveWorkHours, t.HalfDayHours)
	}
}
