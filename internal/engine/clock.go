package engine

import "time"

// SimulationClock tracks scaled elapsed mission time. It is mutated only by
// the engine tick and by the start/pause/resume/restart commands.
type SimulationClock struct {
	Elapsed   time.Duration `json:"elapsed"` // scaled simulated time
	TimeScale float64       `json:"time_scale"`
	Running   bool          `json:"running"`
	Paused    bool          `json:"paused"`
}

// Advance applies a real-time delta scaled by the current time scale, capped
// at the route's total travel duration. Returns the scaled delta actually
// applied; zero while stopped or paused.
func (c *SimulationClock) Advance(realDelta, total time.Duration) time.Duration {
	if !c.Running || c.Paused || realDelta <= 0 {
		return 0
	}
	scaled := time.Duration(float64(realDelta) * c.TimeScale)
	if remaining := total - c.Elapsed; scaled > remaining {
		scaled = remaining
	}
	if scaled < 0 {
		scaled = 0
	}
	c.Elapsed += scaled
	return scaled
}

// ProgressOf maps elapsed time onto the route fraction [0,1].
func (c *SimulationClock) ProgressOf(total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(c.Elapsed) / float64(total)
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}
	return p
}

// Reset zeroes elapsed time and stops the clock, keeping the operator's time
// scale choice.
func (c *SimulationClock) Reset() {
	c.Elapsed = 0
	c.Running = false
	c.Paused = false
	if c.TimeScale == 0 {
		c.TimeScale = 1
	}
}
