package route

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionAtTwoWaypointRoute(t *testing.T) {
	r := &Route{
		ID:   "dover-strait",
		Name: "Dover Strait",
		Waypoints: []Waypoint{
			{Lat: 50.0, Lon: -4.0},
			{Lat: 52.0, Lon: 0.0},
		},
		Duration: time.Hour,
	}
	require.NoError(t, r.Validate())

	start := r.PositionAt(0)
	assert.InDelta(t, 50.0, start.Lat, 1e-9)
	assert.InDelta(t, -4.0, start.Lon, 1e-9)

	mid := r.PositionAt(0.5)
	assert.InDelta(t, 51.0, mid.Lat, 1e-9)
	assert.InDelta(t, -2.0, mid.Lon, 1e-9)

	end := r.PositionAt(1)
	assert.InDelta(t, 52.0, end.Lat, 1e-9)
	assert.InDelta(t, 0.0, end.Lon, 1e-9)
}

func TestCatalogRoutesValidate(t *testing.T) {
	for _, r := range Catalog() {
		assert.NoError(t, r.Validate(), r.ID)
	}
}
