// Package hazard defines the obstacle catalog: hazard types, their narrative
// beat templates, and the live Obstacle entity the engine tracks.
package hazard

import "time"

// Type identifies a hazard from the fixed catalog.
type Type string

const (
	TypeFishingGear    Type = "fishing_gear"
	TypeSurfaceShip    Type = "surface_ship"
	TypeSeamountRidge  Type = "seamount_ridge"
	TypeCableAnomaly   Type = "cable_anomaly"
	TypeThermalCurrent Type = "thermal_current"
)

// Definition is the static catalog entry for one hazard type.
type Definition struct {
	Type        Type
	Label       string
	Description string
	// Surface hazards produce "Collision with surface ship" failures,
	// everything else reads as an obstacle strike.
	Surface bool
	// Beats are the four staggered narrative lines emitted after spawn:
	// detection, command response, operational response, corrective maneuver.
	Beats [4]string
}

// BeatOffsets are the simulated-time delays after spawn at which the four
// beats are emitted.
var BeatOffsets = [4]time.Duration{
	2 * time.Second,
	6 * time.Second,
	11 * time.Second,
	17 * time.Second,
}

var catalog = map[Type]Definition{
	TypeFishingGear: {
		Type: TypeFishingGear, Label: "Drifting fishing gear",
		Description: "Longline trawl gear adrift across the corridor.",
		Beats: [4]string{
			"Sonar picks up tangled longline gear drifting across the plotted lane.",
			"Bridge orders a shallow offset to port while the contact is classified.",
			"Operations pulls the off-watch navigator forward to track the gear.",
			"Helm eases back onto the centerline once the gear clears astern.",
		},
	},
	TypeSurfaceShip: {
		Type: TypeSurfaceShip, Label: "Crossing surface ship",
		Description: "Surface contact crossing ahead with a converging track.",
		Surface:     true,
		Beats: [4]string{
			"Passive sonar flags a surface contact with closing bearing drift.",
			"Captain orders quiet running and a depth adjustment under the layer.",
			"Engineering trims ballast to hold depth through the wake turbulence.",
			"Navigator plots the stern crossing and resumes the corridor track.",
		},
	},
	TypeSeamountRidge: {
		Type: TypeSeamountRidge, Label: "Uncharted seamount ridge",
		Description: "Bathymetry rising faster than the chart shows.",
		Beats: [4]string{
			"Forward-look sonar paints a ridge line shoaling ahead of the track.",
			"Bridge calls for reduced speed and a climb to safe clearance depth.",
			"Intel cross-checks the survey data against the live bathymetry.",
			"Helm threads the saddle and settles back onto the cable lane.",
		},
	},
	TypeCableAnomaly: {
		Type: TypeCableAnomaly, Label: "Cable anomaly",
		Description: "Unexpected return along the cable being shadowed.",
		Beats: [4]string{
			"Survey return shows an anomaly on the cable the corridor follows.",
			"Captain directs a slow pass offset from the anomaly for imaging.",
			"Operations logs the anomaly fix for the shore maintenance desk.",
			"Vessel resumes transit speed past the imaged section.",
		},
	},
	TypeThermalCurrent: {
		Type: TypeThermalCurrent, Label: "Thermal current shear",
		Description: "Strong shear layer pushing the vessel off the centerline.",
		Beats: [4]string{
			"Helm reports sustained set toward starboard from a shear layer.",
			"Bridge authorizes steeper correction angles while the shear holds.",
			"Engineering raises turns slightly to keep steerage through the layer.",
			"Drift decays as the vessel exits the current boundary.",
		},
	},
}

// Lookup returns the catalog definition for a type. Unknown types return the
// fishing gear entry so operator input can never wedge the engine.
func Lookup(t Type) Definition {
	if def, ok := catalog[t]; ok {
		return def
	}
	return catalog[TypeFishingGear]
}

// Known reports whether t is a catalog type.
func Known(t Type) bool {
	_, ok := catalog[t]
	return ok
}

// Types lists the catalog in a stable order.
func Types() []Type {
	return []Type{TypeFishingGear, TypeSurfaceShip, TypeSeamountRidge, TypeCableAnomaly, TypeThermalCurrent}
}

// Obstacle is a live hazard instance on the corridor.
type Obstacle struct {
	ID       string  `json:"id"`
	Type     Type    `json:"type"`
	Position float64 `json:"position"` // route fraction
	Resolved bool    `json:"resolved"`
	// Simulated elapsed time at spawn and at resolution, used for beat
	// scheduling and post-resolution cleanup.
	SpawnedAt  time.Duration `json:"spawned_at"`
	ResolvedAt time.Duration `json:"resolved_at"`
	BeatsFired int           `json:"beats_fired"`
}
