package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockAdvanceScalesAndCaps(t *testing.T) {
	c := SimulationClock{TimeScale: 4, Running: true}
	total := time.Minute

	applied := c.Advance(10*time.Second, total)
	assert.Equal(t, 40*time.Second, applied)
	assert.Equal(t, 40*time.Second, c.Elapsed)

	// The remaining 20s cap the next step.
	applied = c.Advance(10*time.Second, total)
	assert.Equal(t, 20*time.Second, applied)
	assert.Equal(t, total, c.Elapsed)

	// Past the end nothing accrues.
	assert.Zero(t, c.Advance(time.Second, total))
}

func TestClockIgnoresTimeWhileStoppedOrPaused(t *testing.T) {
	c := SimulationClock{TimeScale: 1}
	assert.Zero(t, c.Advance(time.Second, time.Minute))

	c.Running = true
	c.Paused = true
	assert.Zero(t, c.Advance(time.Second, time.Minute))

	c.Paused = false
	assert.Equal(t, time.Second, c.Advance(time.Second, time.Minute))
}

func TestClockProgress(t *testing.T) {
	c := SimulationClock{Elapsed: 30 * time.Second}
	assert.InDelta(t, 0.5, c.ProgressOf(time.Minute), 1e-9)

	c.Elapsed = 2 * time.Minute
	assert.Equal(t, 1.0, c.ProgressOf(time.Minute))
	assert.Zero(t, c.ProgressOf(0))
}

func TestClockResetKeepsTimeScale(t *testing.T) {
	c := SimulationClock{Elapsed: time.Minute, TimeScale: 6, Running: true, Paused: true}
	c.Reset()
	assert.Zero(t, c.Elapsed)
	assert.False(t, c.Running)
	assert.False(t, c.Paused)
	assert.Equal(t, 6.0, c.TimeScale)
}
