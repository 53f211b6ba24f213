package reconciliation

import "errors"

var (
	ErrInvalidRange = errors.New("reconciliation range end must not be before its start")
	ErrInvalidMode  = errors.New("reconciliation range mode must be month_to_date or rolling")
)

var ErrAlreadyRunning = errors.New("a reconciliation run is already in progress")
