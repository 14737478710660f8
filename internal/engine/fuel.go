package engine

// FuelState is the derived resource picture. It is recomputed from scratch
// every evaluation as a pure function of elapsed mission hours, crew size
// and aggregate stress, so identical inputs yield identical output.
type FuelState struct {
	BurnRatePerHour float64 `json:"burn_rate_per_hour"`
	ConsumedLiters  float64 `json:"consumed_liters"`
	ConsumedPercent float64 `json:"consumed_percent"`
	EnduranceHours  float64 `json:"endurance_hours"`
	RangeKm         float64 `json:"range_km"`
}

// ComputeFuel derives the full fuel state. avgSpeedKmh is the vessel's mean
// transit speed, used only for the projected-range figure.
func ComputeFuel(cfg Config, missionHours float64, totalUnits int, aggregateStress, avgSpeedKmh float64) FuelState {
	if missionHours < 0 {
		missionHours = 0
	}
	stressFactor := 1 + (aggregateStress/100)*cfg.StressMultiplier
	burn := (cfg.BaseBurnPerHour + cfg.BurnPerUnitHour*float64(totalUnits)) * stressFactor

	consumed := burn * missionHours
	if consumed > cfg.TankCapacityLiters {
		consumed = cfg.TankCapacityLiters
	}

	state := FuelState{
		BurnRatePerHour: burn,
		ConsumedLiters:  consumed,
	}
	if cfg.TankCapacityLiters > 0 {
		state.ConsumedPercent = consumed / cfg.TankCapacityLiters * 100
	}
	if burn > 0 {
		state.EnduranceHours = cfg.TankCapacityLiters / burn
		state.RangeKm = (cfg.TankCapacityLiters - consumed) / burn * avgSpeedKmh
	}
	return state
}

// Exhausted reports whether the tank is empty.
func (f FuelState) Exhausted(cfg Config) bool {
	return f.ConsumedLiters >= cfg.TankCapacityLiters
}
