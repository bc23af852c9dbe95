package engine

import (
	"fmt"
	"math"

	"github.com/terrasolar/rackplan/internal/model"
	"github.com/terrasolar/rackplan/internal/terrain"
)

const (
	// DefaultGCRTolerance is the absolute GCR tolerance the search accepts.
	DefaultGCRTolerance = 0.005

	// DefaultMaxIterations bounds the bisection; GCR is a step function of
	// spacing (rack counts are discrete), so the loop may never land within
	// tolerance and must stop.
	DefaultMaxIterations = 48
)

// SpacingOptimizer searches row spacing for a target ground-coverage ratio.
// Larger spacing means fewer rows and a lower GCR, so GCR is monotonically
// non-increasing in spacing and bisection applies.
type SpacingOptimizer struct {
	Settings      LayoutSettings // RowSpacingMm is ignored; the search sets it
	Tolerance     float64
	MaxIterations int
}

// NewSpacingOptimizer returns an optimizer with default tolerance and
// iteration bound.
func NewSpacingOptimizer(settings LayoutSettings) *SpacingOptimizer {
	return &SpacingOptimizer{
		Settings:      settings,
		Tolerance:     DefaultGCRTolerance,
		MaxIterations: DefaultMaxIterations,
	}
}

// Optimize bisects row spacing until the achieved GCR is within tolerance
// of the target, and returns the layout at the chosen spacing.
//
// When the target is unreachable — typically a target above what
// edge-to-edge rows can achieve on this region — the result carries the
// closest achievable spacing with Converged set false. That is a finding
// about the site, not a failure, so err stays nil.
func (o *SpacingOptimizer) Optimize(sfc *terrain.Surface, region *terrain.BuildableRegion, footprint model.RackFootprint, targetGCR float64) (model.SpacingResult, error) {
	if targetGCR <= 0 || targetGCR > 1 {
		return model.SpacingResult{}, fmt.Errorf("%w: target GCR %g outside (0, 1]", ErrInvalidParameter, targetGCR)
	}
	if footprint.WidthMm <= 0 || footprint.HeightMm <= 0 {
		return model.SpacingResult{}, fmt.Errorf("%w: footprint %g × %g mm", ErrInvalidParameter, footprint.WidthMm, footprint.HeightMm)
	}

	tol := o.Tolerance
	if tol <= 0 {
		tol = DefaultGCRTolerance
	}
	maxIter := o.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	res := model.SpacingResult{TargetGCR: targetGCR, SpacingMm: footprint.HeightMm}

	// Rows touching front-to-back is the tightest physical spacing; the
	// region diagonal is loose enough that at most one row fits.
	lo := footprint.HeightMm
	hi := lo
	if !region.Empty() {
		d := math.Hypot(region.Bounds.Width(), region.Bounds.Height())
		if d > hi {
			hi = d
		}
	}

	recorded := false
	eval := func(spacing float64) model.LayoutResult {
		res.Iterations++
		settings := o.Settings
		settings.RowSpacingMm = spacing
		layout, _ := NewPlanner(settings).Generate(sfc, region, footprint)
		layout.RowSpacingMm = spacing
		if !recorded || math.Abs(layout.AchievedGCR-targetGCR) < math.Abs(res.AchievedGCR-targetGCR) {
			recorded = true
			res.Layout = layout
			res.SpacingMm = spacing
			res.AchievedGCR = layout.AchievedGCR
		}
		return layout
	}

	tightest := eval(lo)
	if math.Abs(tightest.AchievedGCR-targetGCR) <= tol {
		res.Converged = true
		return res, nil
	}
	if tightest.AchievedGCR < targetGCR {
		// Even touching rows fall short; the target is unreachable here.
		return res, nil
	}

	loosest := eval(hi)
	if math.Abs(loosest.AchievedGCR-targetGCR) <= tol {
		res.Converged = true
		return res, nil
	}

	for res.Iterations < maxIter {
		mid := (lo + hi) / 2
		layout := eval(mid)
		if math.Abs(layout.AchievedGCR-targetGCR) <= tol {
			res.Converged = true
			return res, nil
		}
		if layout.AchievedGCR > targetGCR {
			lo = mid
		} else {
			hi = mid
		}
	}
	return res, nil
}
