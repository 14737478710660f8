package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine_KnownDistance(t *testing.T) {
	// Lisbon to New York, roughly 5425 km.
	d := Haversine(38.7223, -9.1393, 40.7128, -74.0060)
	assert.InDelta(t, 5425, d, 60)
}

func TestHaversine_ZeroDistance(t *testing.T) {
	d := Haversine(51.5, -0.12, 51.5, -0.12)
	assert.InDelta(t, 0, d, 1e-9)
}

func TestSegmentBearing_Cardinals(t *testing.T) {
	// Due north.
	north := SegmentBearing(40.0, -30.0, 41.0, -30.0)
	assert.InDelta(t, 0, north, 1.0)

	// Due east.
	east := SegmentBearing(40.0, -30.0, 40.0, -29.0)
	assert.InDelta(t, 90, east, 1.0)

	// Due south.
	south := SegmentBearing(41.0, -30.0, 40.0, -30.0)
	assert.InDelta(t, 180, south, 1.0)
}

func TestNormalizeDegrees(t *testing.T) {
	assert.Equal(t, 0.0, NormalizeDegrees(360))
	assert.Equal(t, 350.0, NormalizeDegrees(-10))
	assert.Equal(t, 10.0, NormalizeDegrees(370))
}

func TestInterpolate_Midpoint(t *testing.T) {
	lat, lon := Interpolate(10, 20, 30, 40, 0.5)
	assert.Equal(t, 20.0, lat)
	assert.Equal(t, 30.0, lon)
}

func TestInterpolate_ClampsT(t *testing.T) {
	lat, lon := Interpolate(10, 20, 30, 40, -1)
	assert.Equal(t, 10.0, lat)
	assert.Equal(t, 20.0, lon)

	lat, lon = Interpolate(10, 20, 30, 40, 2)
	assert.Equal(t, 30.0, lat)
	assert.Equal(t, 40.0, lon)
}
