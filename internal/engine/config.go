package engine

import "time"

// Config holds every tunable of the simulation. Values come from the config
// file at boot; DefaultConfig mirrors the config package defaults so the
// engine stays usable in tests without viper.
type Config struct {
	// Tick loop
	TickInterval time.Duration
	TimeScaleMin float64
	TimeScaleMax float64
	// Simulated mission minutes that pass per scaled clock minute.
	MinutesAcceleration float64

	// Helm physics
	MaxLateralOffset      float64 // corridor half-width, drift points
	CorrectionGain        float64 // proportional pull toward centerline, 1/s
	TurbulenceAmplitude   float64 // max random perturbation, points/s
	MaxHeadingDeviation   float64 // degrees at full offset
	OffCourseBand         float64 // fraction of max offset that counts as off course
	OffCourseLimitSeconds float64 // sustained excursion budget

	// Crew
	ShiftLengthHours float64

	// Fuel
	TankCapacityLiters float64
	BaseBurnPerHour    float64
	BurnPerUnitHour    float64
	StressMultiplier   float64
}

// DefaultConfig returns the reference tuning.
func DefaultConfig() Config {
	return Config{
		TickInterval:        250 * time.Millisecond,
		TimeScaleMin:        0.25,
		TimeScaleMax:        8.0,
		MinutesAcceleration: 120.0,

		MaxLateralOffset:      30.0,
		CorrectionGain:        0.55,
		TurbulenceAmplitude:   9.0,
		MaxHeadingDeviation:   12.0,
		OffCourseBand:         0.8,
		OffCourseLimitSeconds: 12.0,

		ShiftLengthHours: 6.0,

		TankCapacityLiters: 52000.0,
		BaseBurnPerHour:    180.0,
		BurnPerUnitHour:    14.0,
		StressMultiplier:   0.8,
	}
}
