package engine

import (
	"math"

	"cablerun/internal/domain/route"
	"cablerun/internal/geo"
)

// HelmState is the navigation physics state derived each tick.
type HelmState struct {
	HeadingDeg      float64 `json:"heading_deg"`    // [0,360)
	LateralOffset   float64 `json:"lateral_offset"` // drift points, bounded
	SegmentIndex    int     `json:"segment_index"`
	SegmentFraction float64 `json:"segment_fraction"`

	// offCourseSeconds accumulates while |offset| exceeds the off-course
	// band and decays at the same rate inside it.
	offCourseSeconds float64
}

// Reset re-derives the helm for the start of a route.
func (h *HelmState) Reset(r *route.Route) {
	h.LateralOffset = 0
	h.SegmentIndex = 0
	h.SegmentFraction = 0
	h.offCourseSeconds = 0
	if r != nil && r.SegmentCount() > 0 {
		h.HeadingDeg = r.BearingAt(0)
	} else {
		h.HeadingDeg = 0
	}
}

// OffCourseSeconds exposes the accumulator for telemetry.
func (h *HelmState) OffCourseSeconds() float64 {
	return h.offCourseSeconds
}

// ForceOffset overrides the lateral offset, clamped to the given maximum.
// Used by scenario tooling and tests; the regular tick never calls it.
func (h *HelmState) ForceOffset(offset, max float64) {
	h.LateralOffset = clampFloat(offset, -max, max)
}

// helmStep advances the lateral-offset correction model for one tick and
// reports whether the off-course accumulator exceeded its budget.
func helmStep(h *HelmState, r *route.Route, cfg Config, rng Rand, progress, dtSeconds float64) (offCourse bool) {
	h.SegmentIndex, h.SegmentFraction = r.SegmentAt(progress)
	bearing := r.BearingAt(progress)

	correction := -h.LateralOffset * cfg.CorrectionGain * dtSeconds
	turbulence := (rng.Float64()*2 - 1) * cfg.TurbulenceAmplitude * dtSeconds
	h.LateralOffset = clampFloat(h.LateralOffset+correction+turbulence,
		-cfg.MaxLateralOffset, cfg.MaxLateralOffset)

	deviation := (h.LateralOffset / cfg.MaxLateralOffset) * cfg.MaxHeadingDeviation
	h.HeadingDeg = geo.NormalizeDegrees(bearing + deviation)

	band := cfg.OffCourseBand * cfg.MaxLateralOffset
	if math.Abs(h.LateralOffset) > band {
		h.offCourseSeconds += dtSeconds
	} else {
		h.offCourseSeconds -= dtSeconds
		if h.offCourseSeconds < 0 {
			h.offCourseSeconds = 0
		}
	}
	return h.offCourseSeconds > cfg.OffCourseLimitSeconds
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
