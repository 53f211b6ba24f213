package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateHaversineDistance(t *testing.T) {
	assert.Zero(t, CalculateHaversineDistance(-6.2, 106.8, -6.2, 106.8))

	// One degree of latitude is about 111.19 km on a 6,371 km sphere.
	assert.InDelta(t, 111195, CalculateHaversineDistance(0, 0, 1, 0), 1)

	// Symmetric.
	a := CalculateHaversineDistance(-7.2575, 112.7521, -6.2088, 106.8456)
	b := CalculateHaversineDistance(-6.2088, 106.8456, -7.2575, 112.7521)
	assert.InDelta(t, a, b, 1e-6)
}

func TestMetersToLatitudeDegrees(t *testing.T) {
	deg := MetersToLatitudeDegrees(50)
	assert.InDelta(t, 50, CalculateHaversineDistance(0, 10, deg, 10), 1e-6)
}
