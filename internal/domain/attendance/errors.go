package attendance

import "errors"

// Attendance domain errors
var (
	// Open / close
	ErrAlreadyOpen       = errors.New("an attendance record is already open for this employee")
	ErrNoOpenRecord      = errors.New("no open attendance record to close")
	ErrAlreadyCheckedOut = errors.New("attendance for this day is already closed")
	ErrInvalidRange      = errors.New("check-out must be after check-in")

	// Store
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrDuplicateDay       = errors.New("attendance record already exists for this employee and date")
	ErrRecordConflict     = errors.New("attendance record was modified concurrently, refresh and retry")
	ErrInvalidStatus      = errors.New("invalid attendance status")
)
