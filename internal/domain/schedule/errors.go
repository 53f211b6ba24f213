package schedule

import "errors"

var (
	ErrConfigMissing    = errors.New("shift configuration is not set up, attendance computation is disabled")
	ErrInvalidClockTime = errors.New("invalid clock time, use HH:MM")
	ErrInvalidTimezone  = errors.New("invalid shift timezone")
)
