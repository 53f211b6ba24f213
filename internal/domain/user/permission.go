package user

type Permission string

const (
	// Attendance
	PermissionAttendanceClock    Permission = "attendance.clock"
	PermissionAttendanceViewOwn  Permission = "attendance.view_own"
	PermissionAttendanceViewTeam Permission = "attendance.view_team"

	// Corrections
	PermissionCorrectionSubmit Permission = "correction.submit"
	PermissionCorrectionReview Permission = "correction.review"

	// Geofence
	PermissionGeofenceObserve Permission = "geofence.observe"
	PermissionGeofenceReview  Permission = "geofence.review"

	// Operations
	PermissionReconciliationRun Permission = "reconciliation.run"
)

var employeePermissions = []Permission{
	PermissionAttendanceClock,
	PermissionAttendanceViewOwn,
	PermissionCorrectionSubmit,
	PermissionGeofenceObserve,
}

var reviewerPermissions = append(append([]Permission{}, employeePermissions...),
	PermissionAttendanceViewTeam,
	PermissionCorrectionReview,
	PermissionGeofenceReview,
)

// RolePermissions maps roles to their permissions. Reviewer permissions only
// open the endpoint; authority over a specific employee is checked against
// the org structure.
var RolePermissions = map[Role][]Permission{
	RoleGodAdmin: append(append([]Permission{}, reviewerPermissions...), PermissionReconciliationRun),
	RoleAdmin:    append(append([]Permission{}, reviewerPermissions...), PermissionReconciliationRun),
	RoleHR:       append(append([]Permission{}, reviewerPermissions...), PermissionReconciliationRun),
	RoleManager:  reviewerPermissions,
	RoleEmployee: employeePermissions,
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
