package engine

import (
	"time"

	"cablerun/internal/domain/crew"
	"cablerun/internal/domain/hazard"
	"cablerun/internal/domain/route"
)

// scheduledBeat is a narrative beat queued at hazard spawn time. Beats fire
// on schedule regardless of whether the hazard is resolved or cleared first.
type scheduledBeat struct {
	Due      time.Duration
	HazardID string
	Label    string
	Text     string
	Index    int
}

// MissionState is the single mutable aggregate the engine owns: clock, helm,
// roster metrics, fuel, obstacles and the terminal status.
type MissionState struct {
	Route   *route.Route
	Clock   SimulationClock
	Helm    HelmState
	Roster  []*crew.Member
	Metrics map[string]*crew.Metrics

	Progress   float64
	Fuel       FuelState
	Obstacles  []*hazard.Obstacle
	Status     Status
	Failure    *Failure
	PeakStress float64

	milestonesFired    map[string]bool
	beatQueue          []scheduledBeat
	lastCollisionCheck float64 // sim seconds of the previous periodic check
}

// NewMissionState builds an idle mission around a roster.
func NewMissionState(roster []*crew.Member) *MissionState {
	m := &MissionState{
		Roster:          roster,
		Metrics:         make(map[string]*crew.Metrics, len(roster)),
		Status:          StatusIdle,
		milestonesFired: make(map[string]bool),
	}
	m.Clock.TimeScale = 1
	for _, member := range roster {
		metrics := &crew.Metrics{}
		metrics.Reset(member)
		m.Metrics[member.ID] = metrics
	}
	return m
}

// ResetForRoute zeroes all derived state for a fresh run of the given route.
// The roster and the operator's time-scale choice survive.
func (m *MissionState) ResetForRoute(r *route.Route) {
	m.Route = r
	m.Clock.Reset()
	m.Helm.Reset(r)
	m.Progress = 0
	m.Fuel = FuelState{}
	m.Obstacles = nil
	m.Failure = nil
	m.PeakStress = 0
	m.milestonesFired = make(map[string]bool)
	m.beatQueue = nil
	m.lastCollisionCheck = 0
	for _, member := range m.Roster {
		m.Metrics[member.ID].Reset(member)
	}
}

// MissionHours converts scaled clock time into accelerated mission hours.
func (m *MissionState) MissionHours(cfg Config) float64 {
	return m.Clock.Elapsed.Hours() * cfg.MinutesAcceleration
}

// AggregateStress is the unweighted mean stress across the roster.
func (m *MissionState) AggregateStress() float64 {
	if len(m.Roster) == 0 {
		return 0
	}
	var sum float64
	for _, member := range m.Roster {
		sum += m.Metrics[member.ID].Stress
	}
	return sum / float64(len(m.Roster))
}

// TotalUnits counts every assigned crew unit.
func (m *MissionState) TotalUnits() int {
	var total int
	for _, member := range m.Roster {
		total += member.Units
	}
	return total
}

// Member finds a roster member by ID, or nil.
func (m *MissionState) Member(id string) *crew.Member {
	for _, member := range m.Roster {
		if member.ID == id {
			return member
		}
	}
	return nil
}

// AvgSpeedKmh is the mean transit speed over the whole route in mission time.
func (m *MissionState) AvgSpeedKmh(cfg Config) float64 {
	if m.Route == nil {
		return 0
	}
	totalHours := m.Route.Duration.Hours() * cfg.MinutesAcceleration
	if totalHours <= 0 {
		return 0
	}
	return m.Route.TotalDistanceKm() / totalHours
}

// CrewStatus is the per-member slice of a telemetry snapshot.
type CrewStatus struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Role      crew.Role    `json:"role"`
	Units     int          `json:"units"`
	TeamSize  int          `json:"team_size"`
	Directive string       `json:"directive"`
	Alliances []string     `json:"alliances"`
	Metrics   crew.Metrics `json:"metrics"`
}

// Telemetry is the externally visible snapshot of the whole mission.
type Telemetry struct {
	Status          Status            `json:"status"`
	RouteID         string            `json:"route_id,omitempty"`
	RouteName       string            `json:"route_name,omitempty"`
	Cable           string            `json:"cable,omitempty"`
	TimeScale       float64           `json:"time_scale"`
	ElapsedSeconds  float64           `json:"elapsed_seconds"`
	MissionMinutes  float64           `json:"mission_minutes"`
	Progress        float64           `json:"progress"`
	Position        route.Waypoint    `json:"position"`
	HeadingDeg      float64           `json:"heading_deg"`
	Drift           float64           `json:"drift"`
	MaxDrift        float64           `json:"max_drift"`
	DistanceKm      float64           `json:"distance_km"`
	Fuel            FuelState         `json:"fuel"`
	AggregateStress float64           `json:"aggregate_stress"`
	PeakStress      float64           `json:"peak_stress"`
	Crew            []CrewStatus      `json:"crew"`
	Obstacles       []hazard.Obstacle `json:"obstacles"`
	Failure         *Failure          `json:"failure,omitempty"`
}

// snapshot builds a Telemetry copy of the current state. Caller holds the
// engine lock.
func (m *MissionState) snapshot(cfg Config) Telemetry {
	t := Telemetry{
		Status:          m.Status,
		TimeScale:       m.Clock.TimeScale,
		ElapsedSeconds:  m.Clock.Elapsed.Seconds(),
		MissionMinutes:  m.MissionHours(cfg) * 60,
		Progress:        m.Progress,
		HeadingDeg:      m.Helm.HeadingDeg,
		Drift:           m.Helm.LateralOffset,
		MaxDrift:        cfg.MaxLateralOffset,
		Fuel:            m.Fuel,
		AggregateStress: m.AggregateStress(),
		PeakStress:      m.PeakStress,
		Failure:         m.Failure,
	}
	if m.Route != nil {
		t.RouteID = m.Route.ID
		t.RouteName = m.Route.Name
		t.Cable = m.Route.Cable
		t.DistanceKm = m.Route.TotalDistanceKm()
		t.Position = m.Route.PositionAt(m.Progress)
	}
	for _, member := range m.Roster {
		t.Crew = append(t.Crew, CrewStatus{
			ID:        member.ID,
			Name:      member.Name,
			Role:      member.Role,
			Units:     member.Units,
			TeamSize:  member.TeamSize,
			Directive: member.Directive,
			Alliances: append([]string(nil), member.Alliances...),
			Metrics:   *m.Metrics[member.ID],
		})
	}
	for _, o := range m.Obstacles {
		t.Obstacles = append(t.Obstacles, *o)
	}
	return t
}
