package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cablerun/internal/domain/crew"
	"cablerun/internal/domain/hazard"
	"cablerun/internal/events"
	"cablerun/internal/platform/logger"
)

// Nudge values for NewSequenceRand. 0.5 maps to zero turbulence, 1.0 to the
// maximum push to starboard.
const (
	noTurbulence  = 0.5
	maxTurbulence = 1.0
)

func newTestEngine(t *testing.T, cfg Config, rng Rand) (*Engine, *events.EventLog) {
	t.Helper()
	log := events.NewEventLog(nil)
	eng := NewEngine(cfg, crew.DefaultRoster(), log, logger.NewLogger(), rng)
	return eng, log
}

func TestStartMissionUnknownRoute(t *testing.T) {
	eng, _ := newTestEngine(t, DefaultConfig(), NewSequenceRand(noTurbulence))

	err := eng.StartMission("mariana-trench")
	require.Error(t, err)
	assert.Equal(t, StatusIdle, eng.Status())
}

func TestStartMissionEmitsEventAndRuns(t *testing.T) {
	eng, log := newTestEngine(t, DefaultConfig(), NewSequenceRand(noTurbulence))

	require.NoError(t, eng.StartMission("biscay-crossing"))
	assert.Equal(t, StatusRunning, eng.Status())

	started := log.GetByType(events.EventTypeMissionStarted)
	require.Len(t, started, 1)
	assert.Equal(t, "biscay-crossing", started[0].TargetID)

	// A second start while underway is rejected.
	assert.Error(t, eng.StartMission("celtic-shelf"))
}

func TestTickAdvancesScaledProgress(t *testing.T) {
	eng, _ := newTestEngine(t, DefaultConfig(), NewSequenceRand(noTurbulence))
	require.NoError(t, eng.StartMission("biscay-crossing"))
	eng.SetTimeScale(8)

	eng.Tick(10 * time.Second)

	snap := eng.Snapshot()
	assert.InDelta(t, 80.0, snap.ElapsedSeconds, 1e-9)
	// 80s of a 48 minute corridor.
	assert.InDelta(t, 80.0/2880.0, snap.Progress, 1e-9)
	assert.InDelta(t, 80.0/3600.0*120.0*60.0, snap.MissionMinutes, 1e-6)
}

func TestPauseAndResume(t *testing.T) {
	eng, _ := newTestEngine(t, DefaultConfig(), NewSequenceRand(noTurbulence))
	require.NoError(t, eng.StartMission("biscay-crossing"))
	eng.Tick(4 * time.Second)

	require.NoError(t, eng.Pause())
	before := eng.Snapshot()
	eng.Tick(30 * time.Second)
	assert.Equal(t, before.ElapsedSeconds, eng.Snapshot().ElapsedSeconds,
		"paused clock must not advance")

	require.NoError(t, eng.Resume())
	eng.Tick(time.Second)
	assert.Greater(t, eng.Snapshot().ElapsedSeconds, before.ElapsedSeconds)

	// Resume without pause and pause while idle are both rejected.
	assert.Error(t, eng.Resume())
	require.NoError(t, eng.Pause())
	assert.Error(t, eng.Pause())
}

func TestSetTimeScaleClamps(t *testing.T) {
	eng, _ := newTestEngine(t, DefaultConfig(), NewSequenceRand(noTurbulence))

	assert.Equal(t, 8.0, eng.SetTimeScale(100))
	assert.Equal(t, 0.25, eng.SetTimeScale(0.01))
	assert.Equal(t, 2.0, eng.SetTimeScale(2))
}

func TestMissionCompletes(t *testing.T) {
	eng, log := newTestEngine(t, DefaultConfig(), NewSequenceRand(noTurbulence))
	require.NoError(t, eng.StartMission("biscay-crossing"))

	eng.Tick(48 * time.Minute)

	snap := eng.Snapshot()
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, 1.0, snap.Progress)
	assert.Nil(t, snap.Failure)
	assert.Len(t, log.GetByType(events.EventTypeMissionCompleted), 1)

	// Terminal state stays terminal and rejects hazard injection.
	eng.Tick(time.Minute)
	assert.Equal(t, StatusCompleted, eng.Status())
	_, err := eng.SpawnHazard(hazard.TypeFishingGear)
	assert.Error(t, err)
}

func TestCompletionTickFiresRemainingMilestones(t *testing.T) {
	eng, log := newTestEngine(t, DefaultConfig(), NewSequenceRand(noTurbulence))
	require.NoError(t, eng.StartMission("biscay-crossing"))

	// One tick carries the mission from the start line to the finish;
	// every milestone crossed on the way still fires, exactly once.
	eng.Tick(48 * time.Minute)
	require.Equal(t, StatusCompleted, eng.Status())

	fired := make(map[string]int)
	for _, ev := range log.GetByType(events.EventTypeMilestoneReached) {
		fired[ev.TargetID]++
	}
	for _, ms := range eng.mission.Route.Milestones {
		assert.Equal(t, 1, fired[ms.ID], "milestone %s", ms.ID)
	}
}

func TestOffCourseFailureFiresOnce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OffCourseBand = 0.1
	cfg.OffCourseLimitSeconds = 1.0
	eng, log := newTestEngine(t, cfg, NewSequenceRand(maxTurbulence))
	require.NoError(t, eng.StartMission("biscay-crossing"))

	for i := 0; i < 10; i++ {
		eng.Tick(500 * time.Millisecond)
	}

	snap := eng.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	require.NotNil(t, snap.Failure)
	assert.Equal(t, FailureOffCourse, snap.Failure.Reason)
	assert.Len(t, log.GetByType(events.EventTypeMissionFailed), 1,
		"failure must latch exactly once")

	// The clock is stopped by the failure latch.
	elapsed := snap.ElapsedSeconds
	eng.Tick(10 * time.Second)
	assert.Equal(t, elapsed, eng.Snapshot().ElapsedSeconds)
}

func TestOversizedTickIsNotSustainedDrift(t *testing.T) {
	eng, log := newTestEngine(t, DefaultConfig(), NewSequenceRand(maxTurbulence))
	require.NoError(t, eng.StartMission("biscay-crossing"))

	// Each delta alone exceeds the 12s excursion allowance. The capped
	// physics step keeps a vessel starting on the centerline inside the
	// corridor, so only genuinely sustained drift can end the mission.
	for i := 0; i < 5; i++ {
		eng.Tick(13 * time.Second)
	}

	snap := eng.Snapshot()
	assert.Equal(t, StatusRunning, snap.Status)
	assert.Nil(t, snap.Failure)
	assert.Empty(t, log.GetByType(events.EventTypeMissionFailed))
	assert.Less(t, snap.Drift, DefaultConfig().MaxLateralOffset)
}

func TestFuelExhaustionFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TankCapacityLiters = 10
	eng, log := newTestEngine(t, cfg, NewSequenceRand(noTurbulence))
	require.NoError(t, eng.StartMission("biscay-crossing"))

	eng.Tick(2 * time.Second)
	eng.Tick(2 * time.Second)

	snap := eng.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	require.NotNil(t, snap.Failure)
	assert.Equal(t, FailureFuelExhausted, snap.Failure.Reason)
	assert.Len(t, log.GetByType(events.EventTypeMissionFailed), 1)
	assert.InDelta(t, cfg.TankCapacityLiters, snap.Fuel.ConsumedLiters, 1e-9)
}

func TestMilestoneFiresExactlyOnce(t *testing.T) {
	eng, log := newTestEngine(t, DefaultConfig(), NewSequenceRand(noTurbulence))
	require.NoError(t, eng.StartMission("biscay-crossing"))
	eng.SetTimeScale(8)

	// 560s scaled pushes progress past the 0.18 shelf-break milestone.
	eng.Tick(70 * time.Second)
	eng.Tick(time.Second)
	eng.Tick(time.Second)

	var shelfBreak int
	for _, ev := range log.GetByType(events.EventTypeMilestoneReached) {
		if ev.TargetID == "shelf-break" {
			shelfBreak++
		}
	}
	assert.Equal(t, 1, shelfBreak)
}

func TestHazardLifecycle(t *testing.T) {
	eng, log := newTestEngine(t, DefaultConfig(), NewSequenceRand(noTurbulence))
	require.NoError(t, eng.StartMission("biscay-crossing"))

	before := eng.Snapshot().AggregateStress
	o, err := eng.SpawnHazard(hazard.TypeFishingGear)
	require.NoError(t, err)
	assert.InDelta(t, 0.08, o.Position, 1e-9)
	assert.Greater(t, eng.Snapshot().AggregateStress, before,
		"spawn strains the roster")

	// All four narrative beats are due within the first 17 seconds.
	eng.Tick(20 * time.Second)
	assert.Len(t, log.GetByType(events.EventTypeHazardBeat), 4)

	// Progress past position+0.04 resolves the obstacle.
	eng.Tick(330 * time.Second)
	resolved := log.GetByType(events.EventTypeHazardResolved)
	require.Len(t, resolved, 1)
	assert.Equal(t, o.ID, resolved[0].TargetID)
	snap := eng.Snapshot()
	require.Len(t, snap.Obstacles, 1)
	assert.True(t, snap.Obstacles[0].Resolved)

	// After the grace delay the wreck leaves the board.
	eng.Tick(20 * time.Second)
	assert.Len(t, log.GetByType(events.EventTypeHazardCleared), 1)
	assert.Empty(t, eng.Snapshot().Obstacles)
}

func TestCollisionFailure(t *testing.T) {
	cases := []struct {
		name   string
		typ    hazard.Type
		reason string
	}{
		{"submerged obstacle", hazard.TypeFishingGear, FailureCollision},
		{"surface ship", hazard.TypeSurfaceShip, FailureSurfaceShip},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Roll of 0 always collides once the gates open.
			eng, log := newTestEngine(t, DefaultConfig(), NewSequenceRand(0))
			require.NoError(t, eng.StartMission("biscay-crossing"))
			_, err := eng.SpawnHazard(tc.typ)
			require.NoError(t, err)

			m := eng.mission
			m.Clock.Elapsed = 30 * time.Second
			m.Progress = m.Obstacles[0].Position - 0.01
			m.Helm.ForceOffset(28, eng.cfg.MaxLateralOffset)
			for _, member := range m.Roster {
				m.Metrics[member.ID].Stress = 90
			}

			eng.collisionCheck()

			require.NotNil(t, m.Failure)
			assert.Equal(t, tc.reason, m.Failure.Reason)
			assert.Len(t, log.GetByType(events.EventTypeMissionFailed), 1)
		})
	}
}

func TestCollisionNeedsDriftAndStress(t *testing.T) {
	eng, _ := newTestEngine(t, DefaultConfig(), NewSequenceRand(0))
	require.NoError(t, eng.StartMission("biscay-crossing"))
	_, err := eng.SpawnHazard(hazard.TypeFishingGear)
	require.NoError(t, err)

	m := eng.mission
	m.Clock.Elapsed = 30 * time.Second
	m.Progress = m.Obstacles[0].Position - 0.01

	// Calm helm: no roll even with a hostile rng.
	m.Helm.ForceOffset(5, eng.cfg.MaxLateralOffset)
	for _, member := range m.Roster {
		m.Metrics[member.ID].Stress = 90
	}
	eng.collisionCheck()
	assert.Nil(t, m.Failure)

	// Hard drift but composed crew: still no roll.
	m.Clock.Elapsed = 60 * time.Second
	m.Helm.ForceOffset(28, eng.cfg.MaxLateralOffset)
	for _, member := range m.Roster {
		m.Metrics[member.ID].Stress = 30
	}
	eng.collisionCheck()
	assert.Nil(t, m.Failure)
}

func TestRestartAfterFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TankCapacityLiters = 10
	eng, _ := newTestEngine(t, cfg, NewSequenceRand(noTurbulence))
	require.NoError(t, eng.StartMission("biscay-crossing"))
	eng.Tick(2 * time.Second)
	require.Equal(t, StatusFailed, eng.Status())

	require.NoError(t, eng.Restart())
	snap := eng.Snapshot()
	assert.Equal(t, StatusIdle, snap.Status)
	assert.Nil(t, snap.Failure)
	assert.Zero(t, snap.ElapsedSeconds)
	assert.Zero(t, snap.Fuel.ConsumedLiters)

	require.NoError(t, eng.StartMission("celtic-shelf"))
	assert.Equal(t, StatusRunning, eng.Status())
}

func TestCrewEditsAndUnitGuard(t *testing.T) {
	eng, log := newTestEngine(t, DefaultConfig(), NewSequenceRand(noTurbulence))

	require.NoError(t, eng.EditDirective("navigator", "Favor the southern edge of the corridor."))
	require.NoError(t, eng.EditAlliances("navigator", []string{"captain"}))
	assert.Error(t, eng.EditDirective("quartermaster", "no such station"))

	require.NoError(t, eng.SetUnits("engineer", 6))
	assert.Error(t, eng.SetUnits("engineer", 0))
	assert.Error(t, eng.SetUnits("engineer", 40))

	require.NoError(t, eng.StartMission("biscay-crossing"))
	assert.Error(t, eng.SetUnits("engineer", 5),
		"staffing is fixed once underway")
	require.NoError(t, eng.Pause())
	assert.Error(t, eng.SetUnits("engineer", 5))

	assert.Len(t, log.GetByType(events.EventTypeCrewEdited), 3)
}

func TestSnapshotIsDetached(t *testing.T) {
	eng, _ := newTestEngine(t, DefaultConfig(), NewSequenceRand(noTurbulence))
	require.NoError(t, eng.StartMission("biscay-crossing"))

	snap := eng.Snapshot()
	snap.Crew[0].Metrics.Stress = 99
	snap.Crew[0].Alliances[0] = "mutiny"

	fresh := eng.Snapshot()
	assert.NotEqual(t, 99.0, fresh.Crew[0].Metrics.Stress)
	assert.NotEqual(t, "mutiny", fresh.Crew[0].Alliances[0])
}
