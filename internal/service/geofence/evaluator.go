package geofence

import (
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/geofence"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/utils"
)

// Evaluate measures coord against every zone the employee is eligible for.
// The nearest containing zone wins, the first one on ties. When no zone
// contains coord the globally nearest eligible zone is reported.
func Evaluate(coord geofence.Coordinate, employeeID string, departmentID *string, zones []geofence.Zone) (geofence.Evaluation, error) {
	if len(zones) == 0 {
		return geofence.Evaluation{}, geofence.ErrConfigMissing
	}

	var (
		result      geofence.Evaluation
		nearestIdx  = -1
		containIdx  = -1
		nearestDist float64
		containDist float64
	)

	for i := range zones {
		z := zones[i]
		if !z.IsEligible(employeeID, departmentID) {
			continue
		}

		d := utils.CalculateHaversineDistance(coord.Latitude, coord.Longitude, z.Center.Latitude, z.Center.Longitude)
		contains := d <= z.RadiusMeters
		result.Breakdown = append(result.Breakdown, geofence.ZoneDistance{
			ZoneID:   z.ID,
			ZoneName: z.Name,
			Distance: d,
			Contains: contains,
		})

		if nearestIdx < 0 || d < nearestDist {
			nearestIdx, nearestDist = i, d
		}
		if contains && (containIdx < 0 || d < containDist) {
			containIdx, containDist = i, d
		}
	}

	if nearestIdx < 0 {
		return geofence.Evaluation{}, geofence.ErrNoEligibleZones
	}

	if containIdx >= 0 {
		zone := zones[containIdx]
		result.IsWithin = true
		result.NearestZone = &zone
		result.Distance = containDist
		return result, nil
	}

	zone := zones[nearestIdx]
	result.NearestZone = &zone
	result.Distance = nearestDist
	return result, nil
}
