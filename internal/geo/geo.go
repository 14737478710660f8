// Package geo provides the geographic helpers the simulation needs: great
// circle distances for display, and segment bearings computed on a projected
// plane so atan2 behaves linearly near the corridor.
package geo

import (
	"math"

	"github.com/wroge/wgs84"
)

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance in kilometres between two
// lat/lon points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// SegmentBearing returns the bearing in degrees [0,360) from one point to
// another. Both points are projected from EPSG:4326 to EPSG:3857 first so the
// delta is planar.
func SegmentBearing(fromLat, fromLon, toLat, toLon float64) float64 {
	transform := wgs84.EPSG().Transform(4326, 3857)
	x1, y1, _ := transform(fromLon, fromLat, 0)
	x2, y2, _ := transform(toLon, toLat, 0)
	bearing := math.Atan2(x2-x1, y2-y1) * 180 / math.Pi
	return NormalizeDegrees(bearing)
}

// NormalizeDegrees wraps an angle into [0,360).
func NormalizeDegrees(deg float64) float64 {
	wrapped := math.Mod(deg, 360)
	if wrapped < 0 {
		wrapped += 360
	}
	return wrapped
}

// Interpolate returns the point a fraction t along the straight line between
// two lat/lon points. t outside [0,1] is clamped.
func Interpolate(lat1, lon1, lat2, lon2, t float64) (lat, lon float64) {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return lat1 + (lat2-lat1)*t, lon1 + (lon2-lon1)*t
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
