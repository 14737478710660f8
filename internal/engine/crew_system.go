package engine

import (
	"math"

	"cablerun/internal/domain/crew"
)

// Continuous physiology rates, denominated per simulated mission hour.
const (
	fatigueOnDutyRate   = 1.6
	fatigueIdlePenalty  = 0.9 // sole-team roles with no rest capacity
	fatigueRecoveryRate = 2.2
	extraTeamBonus      = 0.25 // recovery bonus per rotation slot beyond the first

	stressOnDutyRate   = 1.3
	stressRecoveryRate = 1.8
	fatigueCarryFactor = 0.6 // fraction of fatigue bleeding into stress accrual

	efficiencyFatigueWeight = 0.0042
	efficiencyStressWeight  = 0.0031
)

// updateCrewMetrics advances one member's physiological state by dtHours of
// simulated mission time: shift rotation first, then fatigue, stress and the
// derived efficiency.
func updateCrewMetrics(member *crew.Member, m *crew.Metrics, dtHours, shiftLengthHours float64) {
	if member.Units <= 0 || dtHours <= 0 {
		return
	}

	totalTeams := crew.TotalTeams(member.Units, member.TeamSize)
	cycle := shiftLengthHours * float64(totalTeams)
	m.TotalTeams = totalTeams
	m.RotationHours = math.Mod(m.RotationHours+dtHours, cycle)
	m.ShiftIndex = int(m.RotationHours/shiftLengthHours) % totalTeams

	awake := member.Units
	if member.TeamSize > 0 && member.TeamSize < awake {
		awake = member.TeamSize
	}
	m.AwakeUnits = awake
	m.RestingUnits = member.Units - awake

	awakeRatio := float64(m.AwakeUnits) / float64(member.Units)
	restRatio := float64(m.RestingUnits) / float64(member.Units)

	idlePenalty := 0.0
	if totalTeams == 1 {
		idlePenalty = fatigueIdlePenalty
	}

	m.Fatigue += dtHours * (fatigueOnDutyRate*awakeRatio + idlePenalty)
	m.Fatigue -= dtHours * fatigueRecoveryRate * restRatio * (1 + extraTeamBonus*float64(totalTeams-1))
	m.Fatigue = clampFloat(m.Fatigue, 0, 100)

	m.Stress += dtHours * (stressOnDutyRate*awakeRatio + fatigueCarryFactor*m.Fatigue/100)
	m.Stress -= dtHours * stressRecoveryRate * restRatio
	m.Stress = clampFloat(m.Stress, 0, 100)

	m.Efficiency = clampFloat(
		1-m.Fatigue*efficiencyFatigueWeight-m.Stress*efficiencyStressWeight,
		crew.MinEfficiency, 1)
}

// applyCrewDelta applies a discrete stress/fatigue shift to one member,
// keeping every metric inside its bounds. Positive deltas add strain,
// negative deltas grant relief.
func applyCrewDelta(m *crew.Metrics, stressDelta, fatigueDelta float64) {
	m.Stress = clampFloat(m.Stress+stressDelta, 0, 100)
	m.Fatigue = clampFloat(m.Fatigue+fatigueDelta, 0, 100)
	m.Efficiency = clampFloat(
		1-m.Fatigue*efficiencyFatigueWeight-m.Stress*efficiencyStressWeight,
		crew.MinEfficiency, 1)
}
