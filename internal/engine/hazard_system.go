package engine

import (
	"fmt"
	"math"
	"time"

	"cablerun/internal/domain/hazard"
	"cablerun/internal/events"
)

// Hazard lifecycle tuning. Positions are route fractions, durations are
// scaled simulated time.
const (
	spawnAheadOffset = 0.08
	spawnPositionCap = 0.92
	clearanceOffset  = 0.04
	clearanceCap     = 0.98
	removalGrace     = 15 * time.Second

	spawnStressPenalty   = 9.0
	spawnFatiguePenalty  = 4.0
	resolveStressRelief  = -6.0
	resolveFatigueRelief = -3.0

	collisionCheckIntervalSeconds = 6.0
	collisionWindow               = 0.015
	collisionDriftBand            = 0.65
	collisionStressFloor          = 75.0
	collisionChanceCap            = 0.55
)

// HazardSpawnPayload is attached to HAZARD_SPAWNED events.
type HazardSpawnPayload struct {
	Obstacle hazard.Obstacle `json:"obstacle"`
	Label    string          `json:"label"`
}

// HazardBeatPayload is attached to HAZARD_BEAT events.
type HazardBeatPayload struct {
	HazardID string `json:"hazard_id"`
	Label    string `json:"label"`
	Index    int    `json:"index"`
	Text     string `json:"text"`
}

// spawnHazard places a new obstacle slightly ahead of current progress and
// strains the whole roster. Caller holds the lock and has verified the
// mission is running.
func (e *Engine) spawnHazard(t hazard.Type) *hazard.Obstacle {
	m := e.mission
	def := hazard.Lookup(t)

	position := m.Progress + spawnAheadOffset
	if position > spawnPositionCap {
		position = spawnPositionCap
	}
	obstacle := &hazard.Obstacle{
		ID:        events.GenerateEventID(),
		Type:      def.Type,
		Position:  position,
		SpawnedAt: m.Clock.Elapsed,
	}
	m.Obstacles = append(m.Obstacles, obstacle)

	for _, member := range m.Roster {
		applyCrewDelta(m.Metrics[member.ID], spawnStressPenalty, spawnFatiguePenalty)
	}

	for i, text := range def.Beats {
		m.beatQueue = append(m.beatQueue, scheduledBeat{
			Due:      m.Clock.Elapsed + hazard.BeatOffsets[i],
			HazardID: obstacle.ID,
			Label:    def.Label,
			Text:     text,
			Index:    i,
		})
	}

	e.emit(events.MissionEvent{
		Type:     events.EventTypeHazardSpawned,
		ActorID:  "OPERATOR",
		TargetID: obstacle.ID,
		Payload:  HazardSpawnPayload{Obstacle: *obstacle, Label: def.Label},
	})
	e.logger.Event("HAZARD_SPAWNED", "OPERATOR",
		fmt.Sprintf("%s at route fraction %.3f", def.Label, position))
	return obstacle
}

// hazardStep runs the per-tick hazard lifecycle: due narrative beats,
// clearance, post-resolution cleanup and the periodic collision check.
func (e *Engine) hazardStep() {
	m := e.mission
	e.fireDueBeats()

	// Clearance: progress passed the threshold beyond the obstacle.
	for _, o := range m.Obstacles {
		if o.Resolved {
			continue
		}
		threshold := o.Position + clearanceOffset
		if threshold > clearanceCap {
			threshold = clearanceCap
		}
		if m.Progress >= threshold {
			o.Resolved = true
			o.ResolvedAt = m.Clock.Elapsed
			for _, member := range m.Roster {
				applyCrewDelta(m.Metrics[member.ID], resolveStressRelief, resolveFatigueRelief)
			}
			e.emit(events.MissionEvent{
				Type:     events.EventTypeHazardResolved,
				ActorID:  "SYSTEM_HAZARD",
				TargetID: o.ID,
				Payload:  HazardSpawnPayload{Obstacle: *o, Label: hazard.Lookup(o.Type).Label},
			})
		}
	}

	// Cleanup after the grace delay.
	kept := m.Obstacles[:0]
	for _, o := range m.Obstacles {
		if o.Resolved && m.Clock.Elapsed >= o.ResolvedAt+removalGrace {
			e.emit(events.MissionEvent{
				Type:     events.EventTypeHazardCleared,
				ActorID:  "SYSTEM_HAZARD",
				TargetID: o.ID,
			})
			continue
		}
		kept = append(kept, o)
	}
	m.Obstacles = kept

	e.collisionCheck()
}

// fireDueBeats emits every scheduled narrative beat whose time has come.
// Beats outlive their hazard: they are output events only.
func (e *Engine) fireDueBeats() {
	m := e.mission
	pending := m.beatQueue[:0]
	for _, beat := range m.beatQueue {
		if m.Clock.Elapsed >= beat.Due {
			e.emit(events.MissionEvent{
				Type:     events.EventTypeHazardBeat,
				ActorID:  "SYSTEM_HAZARD",
				TargetID: beat.HazardID,
				Payload: HazardBeatPayload{
					HazardID: beat.HazardID,
					Label:    beat.Label,
					Index:    beat.Index,
					Text:     beat.Text,
				},
			})
			continue
		}
		pending = append(pending, beat)
	}
	m.beatQueue = pending
}

// collisionCheck rolls the collision dice at most once per interval of
// simulated time. Only unresolved obstacles just ahead matter, and only
// while the vessel is drifting hard under high aggregate stress.
func (e *Engine) collisionCheck() {
	m := e.mission
	now := m.Clock.Elapsed.Seconds()
	if now-m.lastCollisionCheck < collisionCheckIntervalSeconds {
		return
	}
	m.lastCollisionCheck = now

	drift := math.Abs(m.Helm.LateralOffset)
	if drift <= collisionDriftBand*e.cfg.MaxLateralOffset {
		return
	}
	agg := m.AggregateStress()
	if agg < collisionStressFloor {
		return
	}

	for _, o := range m.Obstacles {
		if o.Resolved {
			continue
		}
		ahead := o.Position - m.Progress
		if ahead < 0 || ahead > collisionWindow {
			continue
		}
		chance := (agg / 100) * (drift / e.cfg.MaxLateralOffset)
		if chance > collisionChanceCap {
			chance = collisionChanceCap
		}
		if e.rng.Float64() < chance {
			def := hazard.Lookup(o.Type)
			reason := FailureCollision
			if def.Surface {
				reason = FailureSurfaceShip
			}
			e.fail(reason, fmt.Sprintf(
				"Drifting %.0f points off the centerline under %.0f%% crew stress, the vessel struck %s near route fraction %.2f.",
				drift, agg, def.Label, o.Position))
			return
		}
	}
}
