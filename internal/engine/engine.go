package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cablerun/internal/domain/crew"
	"cablerun/internal/domain/hazard"
	"cablerun/internal/domain/route"
	"cablerun/internal/events"
	"cablerun/internal/platform/logger"
	"cablerun/internal/platform/metrics"
)

// Milestone relief applied to the reacting stations when a milestone fires.
const (
	milestoneStressRelief  = -4.0
	milestoneFatigueRelief = -2.0
)

// MilestonePayload is attached to MILESTONE_REACHED events. It carries
// everything the wardroom needs to brief the reacting stations without
// touching engine state.
type MilestonePayload struct {
	Milestone route.Milestone `json:"milestone"`
	Telemetry Telemetry       `json:"telemetry"`
}

// TickPayload is the light TIME_TICK payload broadcast to clients.
type TickPayload struct {
	Progress        float64 `json:"progress"`
	HeadingDeg      float64 `json:"heading_deg"`
	Drift           float64 `json:"drift"`
	FuelPercent     float64 `json:"fuel_percent"`
	AggregateStress float64 `json:"aggregate_stress"`
	SimSeconds      float64 `json:"sim_seconds"`
}

// FailurePayload is attached to MISSION_FAILED events.
type FailurePayload struct {
	Failure Failure `json:"failure"`
}

// Engine owns the MissionState aggregate and is its only writer. The tick
// loop and every operator command serialize on the engine's lock, so each
// per-tick computation sees a consistent aggregate.
type Engine struct {
	cfg      Config
	eventLog *events.EventLog
	logger   *logger.Logger
	rng      Rand

	mu       sync.Mutex
	mission  *MissionState
	lastTick time.Time
}

// NewEngine wires the engine around a roster. A nil rng selects the
// time-seeded production source.
func NewEngine(cfg Config, roster []*crew.Member, eventLog *events.EventLog, log *logger.Logger, rng Rand) *Engine {
	if rng == nil {
		rng = NewTimeSeededRand()
	}
	return &Engine{
		cfg:      cfg,
		eventLog: eventLog,
		logger:   log,
		rng:      rng,
		mission:  NewMissionState(roster),
	}
}

// Run drives the tick loop until the context ends. Call in a goroutine.
func (e *Engine) Run(ctx context.Context) {
	e.logger.Info("Mission engine ticking every %s", e.cfg.TickInterval)
	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	e.mu.Lock()
	e.lastTick = time.Now()
	e.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Mission engine stopped.")
			return
		case now := <-ticker.C:
			e.mu.Lock()
			delta := now.Sub(e.lastTick)
			e.lastTick = now
			e.tickLocked(delta)
			e.mu.Unlock()
			metrics.Get().RecordTick(time.Since(now))
		}
	}
}

// Tick advances the simulation by a real-time delta. Exposed for the loop
// and for deterministic tests.
func (e *Engine) Tick(realDelta time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickLocked(realDelta)
}

// tickLocked performs one simulation step. Order matters: clock first, then
// route progress, then every consumer of that progress.
func (e *Engine) tickLocked(realDelta time.Duration) {
	m := e.mission
	if m.Status != StatusRunning {
		// Paused, failed, completed and idle ticks are timestamp
		// bookkeeping only.
		return
	}

	prevProgress := m.Progress
	scaled := m.Clock.Advance(realDelta, m.Route.Duration)
	m.Progress = m.Clock.ProgressOf(m.Route.Duration)

	if m.Progress >= 1 {
		// Milestones crossed on the final stretch still fire before the
		// mission latches Completed.
		e.checkMilestones(prevProgress)
		e.complete()
		return
	}

	// The clock absorbs an oversized delta from a stalled loop, but the
	// helm physics step is capped so one late tick cannot register as a
	// sustained excursion.
	dtSeconds := scaled.Seconds()
	if limit := e.cfg.TickInterval.Seconds() * e.cfg.TimeScaleMax; limit > 0 && dtSeconds > limit {
		dtSeconds = limit
	}
	if offCourse := helmStep(&m.Helm, m.Route, e.cfg, e.rng, m.Progress, dtSeconds); offCourse {
		e.fail(FailureOffCourse, fmt.Sprintf(
			"Sustained drift of %.0f points past the %.0f%% corridor band pushed the vessel off the plotted line.",
			m.Helm.LateralOffset, e.cfg.OffCourseBand*100))
	}

	if m.Status != StatusRunning {
		return
	}

	dtHours := scaled.Hours() * e.cfg.MinutesAcceleration
	for _, member := range m.Roster {
		updateCrewMetrics(member, m.Metrics[member.ID], dtHours, e.cfg.ShiftLengthHours)
	}
	if agg := m.AggregateStress(); agg > m.PeakStress {
		m.PeakStress = agg
	}

	m.Fuel = ComputeFuel(e.cfg, m.MissionHours(e.cfg), m.TotalUnits(), m.AggregateStress(), m.AvgSpeedKmh(e.cfg))
	if m.Fuel.Exhausted(e.cfg) {
		e.fail(FailureFuelExhausted, fmt.Sprintf(
			"The tank ran dry after %.0f mission hours at %.0f L/h.",
			m.MissionHours(e.cfg), m.Fuel.BurnRatePerHour))
	}

	if m.Status != StatusRunning {
		return
	}

	e.hazardStep()
	if m.Status != StatusRunning {
		return
	}
	e.checkMilestones(prevProgress)

	e.emit(events.MissionEvent{
		Type:    events.EventTypeTimeTick,
		ActorID: "SYSTEM_CLOCK",
		Payload: TickPayload{
			Progress:        m.Progress,
			HeadingDeg:      m.Helm.HeadingDeg,
			Drift:           m.Helm.LateralOffset,
			FuelPercent:     m.Fuel.ConsumedPercent,
			AggregateStress: m.AggregateStress(),
			SimSeconds:      m.Clock.Elapsed.Seconds(),
		},
	})
}

// checkMilestones fires every milestone whose ratio was crossed this tick,
// exactly once per mission: progress is monotonic so a fired milestone can
// never re-trigger.
func (e *Engine) checkMilestones(prevProgress float64) {
	m := e.mission
	for _, ms := range m.Route.Milestones {
		if m.milestonesFired[ms.ID] {
			continue
		}
		if ms.Ratio > prevProgress && ms.Ratio <= m.Progress {
			m.milestonesFired[ms.ID] = true
			for _, member := range m.Roster {
				if roleReacts(ms.Roles, member.Role) {
					applyCrewDelta(m.Metrics[member.ID], milestoneStressRelief, milestoneFatigueRelief)
				}
			}
			e.emit(events.MissionEvent{
				Type:     events.EventTypeMilestoneReached,
				ActorID:  "SYSTEM_ROUTE",
				TargetID: ms.ID,
				Payload:  MilestonePayload{Milestone: ms, Telemetry: m.snapshot(e.cfg)},
			})
			e.logger.Event("MILESTONE", "SYSTEM_ROUTE",
				fmt.Sprintf("%s at %.0f%%", ms.Label, ms.Ratio*100))
		}
	}
}

func roleReacts(roles []crew.Role, role crew.Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// fail latches the first terminal condition. Later calls are no-ops.
func (e *Engine) fail(reason, narrative string) {
	m := e.mission
	if m.Status != StatusRunning {
		return
	}
	m.Status = StatusFailed
	m.Failure = &Failure{Reason: reason, Narrative: narrative, At: time.Now()}
	m.Clock.Running = false

	e.emit(events.MissionEvent{
		Type:    events.EventTypeMissionFailed,
		ActorID: "SYSTEM_MISSION",
		Payload: FailurePayload{Failure: *m.Failure},
	})
	e.logger.Event("MISSION_FAILED", "SYSTEM_MISSION", reason)
}

// complete latches successful corridor traversal.
func (e *Engine) complete() {
	m := e.mission
	if m.Status != StatusRunning {
		return
	}
	m.Status = StatusCompleted
	m.Clock.Running = false

	e.emit(events.MissionEvent{
		Type:    events.EventTypeMissionCompleted,
		ActorID: "SYSTEM_MISSION",
		Payload: m.snapshot(e.cfg),
	})
	e.logger.Event("MISSION_COMPLETED", "SYSTEM_MISSION", m.Route.Name)
}

// emit stamps the event with the current simulated time and appends it.
// Caller holds the lock.
func (e *Engine) emit(event events.MissionEvent) {
	event.SimSeconds = e.mission.Clock.Elapsed.Seconds()
	e.eventLog.Append(event)
}

// --- Operator commands -----------------------------------------------------

// StartMission begins a run of the given catalog route. The engine refuses
// to start with a missing route or an empty roster.
func (e *Engine) StartMission(routeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := e.mission

	if m.Status == StatusRunning || m.Status == StatusPaused {
		return fmt.Errorf("mission already underway")
	}
	r := route.ByID(routeID)
	if r == nil {
		return fmt.Errorf("unknown route %q", routeID)
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("route rejected: %w", err)
	}
	if len(m.Roster) == 0 {
		return fmt.Errorf("cannot start with an empty crew roster")
	}

	m.ResetForRoute(r)
	m.Status = StatusRunning
	m.Clock.Running = true
	e.lastTick = time.Now()

	e.emit(events.MissionEvent{
		Type:     events.EventTypeMissionStarted,
		ActorID:  "OPERATOR",
		TargetID: r.ID,
		Payload:  m.snapshot(e.cfg),
	})
	e.logger.Event("MISSION_STARTED", "OPERATOR", r.Name)
	return nil
}

// Pause suspends the clock. Only a running mission can pause.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := e.mission
	if m.Status != StatusRunning {
		return fmt.Errorf("cannot pause while %s", m.Status)
	}
	m.Status = StatusPaused
	m.Clock.Paused = true
	e.emit(events.MissionEvent{Type: events.EventTypeMissionPaused, ActorID: "OPERATOR"})
	return nil
}

// Resume continues a paused mission.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := e.mission
	if m.Status != StatusPaused {
		return fmt.Errorf("cannot resume while %s", m.Status)
	}
	m.Status = StatusRunning
	m.Clock.Paused = false
	e.lastTick = time.Now()
	e.emit(events.MissionEvent{Type: events.EventTypeMissionResumed, ActorID: "OPERATOR"})
	return nil
}

// Restart abandons the current mission instance and returns to Idle. This is
// the only path out of Failed or Completed.
func (e *Engine) Restart() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := e.mission
	m.ResetForRoute(m.Route)
	m.Status = StatusIdle
	e.emit(events.MissionEvent{Type: events.EventTypeMissionRestarted, ActorID: "OPERATOR"})
	e.logger.Event("MISSION_RESTARTED", "OPERATOR", "")
	return nil
}

// SetTimeScale adjusts the clock multiplier, clamped to the configured
// bounds. Allowed in any state.
func (e *Engine) SetTimeScale(scale float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	scale = clampFloat(scale, e.cfg.TimeScaleMin, e.cfg.TimeScaleMax)
	e.mission.Clock.TimeScale = scale
	e.emit(events.MissionEvent{
		Type:    events.EventTypeTimeScaleSet,
		ActorID: "OPERATOR",
		Payload: map[string]float64{"time_scale": scale},
	})
	return scale
}

// SpawnHazard injects an obstacle of the given type ahead of the vessel.
// Rejected unless the mission is running.
func (e *Engine) SpawnHazard(t hazard.Type) (*hazard.Obstacle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mission.Status != StatusRunning {
		return nil, fmt.Errorf("hazards can only be injected while the mission is running")
	}
	if !hazard.Known(t) {
		return nil, fmt.Errorf("unknown hazard type %q", t)
	}
	o := e.spawnHazard(t)
	copied := *o
	return &copied, nil
}

// EditDirective replaces a member's free-text directive. Allowed at any
// time; the operator UI pauses the clock while the form is open.
func (e *Engine) EditDirective(memberID, directive string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	member := e.mission.Member(memberID)
	if member == nil {
		return fmt.Errorf("unknown crew member %q", memberID)
	}
	member.Directive = directive
	e.emit(events.MissionEvent{
		Type:     events.EventTypeCrewEdited,
		ActorID:  "OPERATOR",
		TargetID: memberID,
		Payload:  map[string]string{"field": "directive", "value": directive},
	})
	return nil
}

// EditAlliances replaces a member's collaboration ties.
func (e *Engine) EditAlliances(memberID string, alliances []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	member := e.mission.Member(memberID)
	if member == nil {
		return fmt.Errorf("unknown crew member %q", memberID)
	}
	member.Alliances = append([]string(nil), alliances...)
	e.emit(events.MissionEvent{
		Type:     events.EventTypeCrewEdited,
		ActorID:  "OPERATOR",
		TargetID: memberID,
		Payload:  map[string]interface{}{"field": "alliances", "value": alliances},
	})
	return nil
}

// SetUnits changes a station's staffing. Rejected while the mission is
// underway; staffing is fixed once the vessel sails.
func (e *Engine) SetUnits(memberID string, units int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := e.mission
	if m.Status == StatusRunning || m.Status == StatusPaused {
		return fmt.Errorf("unit counts cannot change while the mission is underway")
	}
	member := m.Member(memberID)
	if member == nil {
		return fmt.Errorf("unknown crew member %q", memberID)
	}
	if err := crew.ValidateUnits(units); err != nil {
		return err
	}
	member.Units = units
	m.Metrics[memberID].Reset(member)
	e.emit(events.MissionEvent{
		Type:     events.EventTypeCrewEdited,
		ActorID:  "OPERATOR",
		TargetID: memberID,
		Payload:  map[string]int{"units": units},
	})
	return nil
}

// --- Read side -------------------------------------------------------------

// Snapshot returns a consistent telemetry copy for the API and websocket
// clients.
func (e *Engine) Snapshot() Telemetry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mission.snapshot(e.cfg)
}

// Roster returns the crew roster for narrative context building.
func (e *Engine) Roster() []*crew.Member {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*crew.Member(nil), e.mission.Roster...)
}

// Status returns the current state-machine position.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mission.Status
}
