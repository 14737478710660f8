package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cablerun/internal/domain/route"
)

func testRoute(t *testing.T) *route.Route {
	t.Helper()
	r := route.ByID("biscay-crossing")
	require.NotNil(t, r)
	return r
}

func TestHelmOffsetStaysBounded(t *testing.T) {
	cfg := DefaultConfig()
	r := testRoute(t)
	h := HelmState{}
	h.Reset(r)

	// A long run of maximum starboard turbulence cannot push the offset
	// past the corridor half-width.
	rng := NewSequenceRand(1.0)
	for i := 0; i < 500; i++ {
		helmStep(&h, r, cfg, rng, 0.1, 0.25)
		assert.LessOrEqual(t, math.Abs(h.LateralOffset), cfg.MaxLateralOffset)
	}
}

func TestHelmCorrectionPullsTowardCenterline(t *testing.T) {
	cfg := DefaultConfig()
	r := testRoute(t)
	h := HelmState{}
	h.Reset(r)
	h.ForceOffset(20, cfg.MaxLateralOffset)

	// Neutral turbulence, so only the proportional correction acts.
	rng := NewSequenceRand(0.5)
	prev := h.LateralOffset
	for i := 0; i < 20; i++ {
		helmStep(&h, r, cfg, rng, 0.1, 0.25)
		assert.Less(t, h.LateralOffset, prev)
		prev = h.LateralOffset
	}
	assert.Less(t, h.LateralOffset, 2.0)
}

func TestHelmHeadingTracksBearingWithDeviation(t *testing.T) {
	cfg := DefaultConfig()
	r := testRoute(t)
	h := HelmState{}
	h.Reset(r)

	rng := NewSequenceRand(0.5)
	helmStep(&h, r, cfg, rng, 0.1, 0.25)
	base := r.BearingAt(0.1)
	dev := h.LateralOffset / cfg.MaxLateralOffset * cfg.MaxHeadingDeviation
	assert.InDelta(t, base+dev, h.HeadingDeg, 1e-9)
	assert.GreaterOrEqual(t, h.HeadingDeg, 0.0)
	assert.Less(t, h.HeadingDeg, 360.0)
}

func TestHelmOffCourseAccumulatorLatch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OffCourseLimitSeconds = 2.0
	r := testRoute(t)
	h := HelmState{}
	h.Reset(r)

	// Hold the offset hard against the band every step; turbulence at full
	// starboard keeps it there despite the correction.
	rng := NewSequenceRand(1.0)
	var fired int
	for i := 0; i < 40; i++ {
		h.ForceOffset(29, cfg.MaxLateralOffset)
		if helmStep(&h, r, cfg, rng, 0.1, 0.25) {
			fired++
		}
	}
	assert.Greater(t, fired, 0)

	// Back inside the band the accumulator decays all the way to zero.
	calm := NewSequenceRand(0.5)
	for i := 0; i < 60; i++ {
		h.ForceOffset(0, cfg.MaxLateralOffset)
		helmStep(&h, r, cfg, calm, 0.1, 0.25)
	}
	assert.Zero(t, h.OffCourseSeconds())
	assert.False(t, helmStep(&h, r, cfg, calm, 0.1, 0.25))
}

func TestHelmSegmentTracking(t *testing.T) {
	cfg := DefaultConfig()
	r := testRoute(t)
	h := HelmState{}
	h.Reset(r)

	rng := NewSequenceRand(0.5)
	helmStep(&h, r, cfg, rng, 0.0, 0.25)
	assert.Equal(t, 0, h.SegmentIndex)

	helmStep(&h, r, cfg, rng, 0.99, 0.25)
	assert.Equal(t, r.SegmentCount()-1, h.SegmentIndex)
}
