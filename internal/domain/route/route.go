// Package route defines the static corridor data a mission runs along.
// Routes are configuration: immutable once a mission is underway.
package route

import (
	"fmt"
	"time"

	"cablerun/internal/domain/crew"
	"cablerun/internal/geo"
)

// Waypoint is one vertex of the corridor polyline.
type Waypoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Milestone marks a narrative trigger along the corridor.
type Milestone struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	Description string      `json:"description"`
	Ratio       float64     `json:"ratio"` // route fraction at which it fires
	Roles       []crew.Role `json:"roles"` // stations that react
}

// Route is a fixed geographic corridor with an estimated traversal duration.
type Route struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Cable      string        `json:"cable"` // corridor/cable system label
	Waypoints  []Waypoint    `json:"waypoints"`
	Duration   time.Duration `json:"duration"` // simulated traversal time
	Milestones []Milestone   `json:"milestones"`
}

// Validate reports whether the route is complete enough to start a mission.
func (r *Route) Validate() error {
	if r == nil {
		return fmt.Errorf("no route configured")
	}
	if len(r.Waypoints) < 2 {
		return fmt.Errorf("route %q needs at least 2 waypoints, has %d", r.ID, len(r.Waypoints))
	}
	if r.Duration <= 0 {
		return fmt.Errorf("route %q has non-positive duration", r.ID)
	}
	for _, m := range r.Milestones {
		if m.Ratio < 0 || m.Ratio > 1 {
			return fmt.Errorf("route %q milestone %q ratio %.3f outside [0,1]", r.ID, m.ID, m.Ratio)
		}
	}
	return nil
}

// SegmentCount returns the number of equal-weight polyline segments.
func (r *Route) SegmentCount() int {
	return len(r.Waypoints) - 1
}

// SegmentAt maps a progress fraction to a segment index and the fractional
// position inside that segment. The index is clamped to the last segment so
// progress 1 lands on its far end.
func (r *Route) SegmentAt(progress float64) (index int, frac float64) {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	scaled := progress * float64(r.SegmentCount())
	index = int(scaled)
	if index >= r.SegmentCount() {
		index = r.SegmentCount() - 1
	}
	frac = scaled - float64(index)
	if frac > 1 {
		frac = 1
	}
	return index, frac
}

// PositionAt linearly interpolates the vessel position for a progress
// fraction, treating every segment as equal weight.
func (r *Route) PositionAt(progress float64) Waypoint {
	index, frac := r.SegmentAt(progress)
	from := r.Waypoints[index]
	to := r.Waypoints[index+1]
	lat, lon := geo.Interpolate(from.Lat, from.Lon, to.Lat, to.Lon, frac)
	return Waypoint{Lat: lat, Lon: lon}
}

// BearingAt returns the projected bearing of the segment under the given
// progress fraction, in degrees [0,360).
func (r *Route) BearingAt(progress float64) float64 {
	index, _ := r.SegmentAt(progress)
	from := r.Waypoints[index]
	to := r.Waypoints[index+1]
	return geo.SegmentBearing(from.Lat, from.Lon, to.Lat, to.Lon)
}

// TotalDistanceKm sums great-circle distances over the waypoint pairs.
// Display only; positioning uses equal-weight interpolation instead.
func (r *Route) TotalDistanceKm() float64 {
	var total float64
	for i := 0; i < len(r.Waypoints)-1; i++ {
		a, b := r.Waypoints[i], r.Waypoints[i+1]
		total += geo.Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
	}
	return total
}

// Catalog returns the built-in corridors.
func Catalog() []*Route {
	return []*Route{
		{
			ID:    "biscay-crossing",
			Name:  "Biscay Crossing",
			Cable: "MAREA corridor",
			Waypoints: []Waypoint{
				{Lat: 43.37, Lon: -3.82},
				{Lat: 44.10, Lon: -5.40},
				{Lat: 45.25, Lon: -6.90},
				{Lat: 46.60, Lon: -7.60},
				{Lat: 47.80, Lon: -7.10},
				{Lat: 48.38, Lon: -4.49},
			},
			Duration: 48 * time.Minute,
			Milestones: []Milestone{
				{ID: "shelf-break", Label: "Shelf Break", Ratio: 0.18,
					Description: "Crossing the continental shelf break into deep water.",
					Roles:       []crew.Role{crew.RoleNavigator, crew.RoleEngineer}},
				{ID: "abyssal-leg", Label: "Abyssal Leg", Ratio: 0.5,
					Description: "Midpoint of the abyssal plain transit along the cable lane.",
					Roles:       []crew.Role{crew.RoleIntel, crew.RoleOperations}},
				{ID: "approach-brest", Label: "Approach Brest", Ratio: 0.82,
					Description: "Shoaling water and traffic separation lanes off Brest.",
					Roles:       []crew.Role{crew.RoleNavigator, crew.RoleCaptain}},
			},
		},
		{
			ID:    "celtic-shelf",
			Name:  "Celtic Shelf Run",
			Cable: "Havfrue branch",
			Waypoints: []Waypoint{
				{Lat: 48.38, Lon: -4.49},
				{Lat: 49.30, Lon: -6.20},
				{Lat: 50.40, Lon: -7.80},
				{Lat: 51.55, Lon: -9.40},
			},
			Duration: 36 * time.Minute,
			Milestones: []Milestone{
				{ID: "ushant-tss", Label: "Ushant TSS", Ratio: 0.15,
					Description: "Threading the Ushant traffic separation scheme.",
					Roles:       []crew.Role{crew.RoleIntel, crew.RoleNavigator}},
				{ID: "celtic-deep", Label: "Celtic Deep", Ratio: 0.55,
					Description: "Deepest leg of the shelf run, following the branch cable.",
					Roles:       []crew.Role{crew.RoleEngineer, crew.RoleOperations}},
				{ID: "fastnet-approach", Label: "Fastnet Approach", Ratio: 0.85,
					Description: "Final approach toward the Fastnet grounds.",
					Roles:       []crew.Role{crew.RoleCaptain}},
			},
		},
	}
}

// ByID finds a catalog route, or nil.
func ByID(id string) *Route {
	for _, r := range Catalog() {
		if r.ID == id {
			return r
		}
	}
	return nil
}
