// Package crew defines the roster domain entities for the mission.
// This package is PURE and must NOT import any infrastructure packages (network, events, platform).
package crew

import (
	"fmt"
	"math"
)

// Role identifies a watch station aboard the vessel.
type Role string

const (
	RoleNavigator  Role = "navigator"
	RoleIntel      Role = "intel"
	RoleEngineer   Role = "engineer"
	RoleOperations Role = "operations"
	RoleCaptain    Role = "captain"
)

// SupportSequence is the order in which supporting stations brief before a
// targeted crew member speaks.
var SupportSequence = []Role{RoleNavigator, RoleIntel, RoleEngineer, RoleOperations, RoleCaptain}

// Unit-count bounds for staffing edits.
const (
	MinUnits = 1
	MaxUnits = 12
)

// Metric baselines applied on mission start and restart.
const (
	BaselineStress     = 22.0
	BaselineFatigue    = 18.0
	BaselineEfficiency = 0.94
)

// MinEfficiency is the floor of the derived efficiency metric.
const MinEfficiency = 0.35

// Member represents one watch station: identity plus the operator-editable
// staffing and directive fields.
type Member struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Role      Role     `json:"role"`
	Units     int      `json:"units"`     // people assigned to the station
	TeamSize  int      `json:"team_size"` // people per working shift
	Directive string   `json:"directive"` // operator free text
	Alliances []string `json:"alliances"` // collaboration ties to other member IDs
}

// Metrics holds the fully derived physiological state for one member.
// All fields are recomputed by the engine every tick.
type Metrics struct {
	Stress        float64 `json:"stress"`     // 0..100
	Fatigue       float64 `json:"fatigue"`    // 0..100
	Efficiency    float64 `json:"efficiency"` // 0.35..1
	AwakeUnits    int     `json:"awake_units"`
	RestingUnits  int     `json:"resting_units"`
	TotalTeams    int     `json:"total_teams"`
	RotationHours float64 `json:"rotation_hours"` // clock within the shift cycle
	ShiftIndex    int     `json:"shift_index"`
}

// Reset returns metrics to the mission-start baseline for the given member.
func (m *Metrics) Reset(member *Member) {
	m.Stress = BaselineStress
	m.Fatigue = BaselineFatigue
	m.Efficiency = BaselineEfficiency
	m.RotationHours = 0
	m.ShiftIndex = 0
	m.TotalTeams = TotalTeams(member.Units, member.TeamSize)
	m.AwakeUnits = minInt(member.Units, member.TeamSize)
	m.RestingUnits = member.Units - m.AwakeUnits
}

// TotalTeams is ceil(units / teamSize), never below 1.
func TotalTeams(units, teamSize int) int {
	if teamSize <= 0 {
		return 1
	}
	teams := int(math.Ceil(float64(units) / float64(teamSize)))
	if teams < 1 {
		teams = 1
	}
	return teams
}

// ValidateUnits checks a staffing edit against the configured bounds.
func ValidateUnits(units int) error {
	if units < MinUnits || units > MaxUnits {
		return fmt.Errorf("unit count %d outside allowed range [%d,%d]", units, MinUnits, MaxUnits)
	}
	return nil
}

// DefaultRoster returns the five watch stations of the reference vessel.
func DefaultRoster() []*Member {
	return []*Member{
		{ID: "navigator", Name: "Ensign Vela", Role: RoleNavigator, Units: 2, TeamSize: 1,
			Directive: "Hold the plotted line; call out drift past five points.",
			Alliances: []string{"intel", "captain"}},
		{ID: "intel", Name: "Analyst Okafor", Role: RoleIntel, Units: 3, TeamSize: 2,
			Directive: "Fuse sonar and traffic tracks; flag crossing contacts early.",
			Alliances: []string{"navigator", "operations"}},
		{ID: "engineer", Name: "Chief Aldana", Role: RoleEngineer, Units: 4, TeamSize: 2,
			Directive: "Keep trim stable through corrective maneuvers.",
			Alliances: []string{"operations"}},
		{ID: "operations", Name: "Coordinator Brandt", Role: RoleOperations, Units: 3, TeamSize: 2,
			Directive: "Rotate watches on schedule; keep the bridge briefed.",
			Alliances: []string{"engineer", "intel"}},
		{ID: "captain", Name: "Commander Ishii", Role: RoleCaptain, Units: 1, TeamSize: 1,
			Directive: "Arbitrate maneuvers; mission over speed.",
			Alliances: []string{"navigator"}},
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
