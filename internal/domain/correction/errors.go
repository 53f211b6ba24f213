package correction

import "errors"

var (
	ErrCorrectionNotFound = errors.New("correction request not found")
	ErrDuplicatePending   = errors.New("a pending correction already exists for this attendance record")
	ErrAlreadyProcessed   = errors.New("correction request has already been approved or rejected")
	ErrEmptyPatch         = errors.New("correction must request at least one change")
)
