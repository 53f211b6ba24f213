package geofence

import (
	"errors"
	"fmt"
)

var (
	ErrConfigMissing       = errors.New("no geofence zone is configured, geofencing is disabled")
	ErrNoEligibleZones     = fmt.Errorf("%w for this employee", ErrConfigMissing)
	ErrObservationNotFound = errors.New("geofence observation not found")
	ErrNotAnException      = errors.New("observation does not require an out-of-premises request")
	ErrRequestExists       = errors.New("observation already has an out-of-premises request")
	ErrRequestNotFound     = errors.New("observation has no out-of-premises request")
	ErrAlreadyProcessed    = errors.New("out-of-premises request has already been approved or rejected")
	ErrNotObservationOwner = errors.New("observation belongs to another employee")
)
