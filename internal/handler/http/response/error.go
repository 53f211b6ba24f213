package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/authority"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/correction"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/geofence"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

// Error codes returned in ErrorDetail.Code.
const (
	CodeInvalidInput     = "INVALID_INPUT"
	CodeAlreadyHandled   = "ALREADY_HANDLED"
	CodeConflict         = "CONFLICT"
	CodeNotPermitted     = "NOT_PERMITTED"
	CodeNotFound         = "NOT_FOUND"
	CodeConfigMissing    = "CONFIG_MISSING"
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeAlreadyRunning   = "ALREADY_RUNNING"
	CodeDuplicatePending = "DUPLICATE_PENDING"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Authentication
	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidClaim),
		errors.Is(err, user.ErrIdentityMissing):
		Fail(w, http.StatusUnauthorized, CodeUnauthenticated, err.Error())

	// Malformed input
	case errors.Is(err, attendance.ErrInvalidRange),
		errors.Is(err, attendance.ErrInvalidStatus),
		errors.Is(err, correction.ErrEmptyPatch),
		errors.Is(err, reconciliation.ErrInvalidRange),
		errors.Is(err, reconciliation.ErrInvalidMode),
		errors.Is(err, schedule.ErrInvalidClockTime):
		Fail(w, http.StatusBadRequest, CodeInvalidInput, err.Error())

	// Already handled
	case errors.Is(err, correction.ErrAlreadyProcessed),
		errors.Is(err, geofence.ErrAlreadyProcessed),
		errors.Is(err, geofence.ErrRequestExists),
		errors.Is(err, attendance.ErrAlreadyOpen),
		errors.Is(err, attendance.ErrAlreadyCheckedOut),
		errors.Is(err, attendance.ErrDuplicateDay):
		Fail(w, http.StatusConflict, CodeAlreadyHandled, err.Error())
	case errors.Is(err, correction.ErrDuplicatePending):
		Fail(w, http.StatusConflict, CodeDuplicatePending, err.Error())
	case errors.Is(err, reconciliation.ErrAlreadyRunning):
		Fail(w, http.StatusConflict, CodeAlreadyRunning, err.Error())
	case errors.Is(err, attendance.ErrNoOpenRecord),
		errors.Is(err, attendance.ErrRecordConflict),
		errors.Is(err, geofence.ErrNotAnException):
		Fail(w, http.StatusConflict, CodeConflict, err.Error())

	// No permission
	case errors.Is(err, authority.ErrUnauthorized),
		errors.Is(err, geofence.ErrNotObservationOwner),
		errors.Is(err, user.ErrInsufficientPermissions):
		Fail(w, http.StatusForbidden, CodeNotPermitted, err.Error())

	// Not found
	case errors.Is(err, attendance.ErrAttendanceNotFound),
		errors.Is(err, correction.ErrCorrectionNotFound),
		errors.Is(err, geofence.ErrObservationNotFound),
		errors.Is(err, geofence.ErrRequestNotFound),
		errors.Is(err, employee.ErrEmployeeNotFound):
		Fail(w, http.StatusNotFound, CodeNotFound, err.Error())

	// Disabled until configured
	case errors.Is(err, schedule.ErrConfigMissing),
		errors.Is(err, geofence.ErrConfigMissing):
		Fail(w, http.StatusServiceUnavailable, CodeConfigMissing, err.Error())

	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
