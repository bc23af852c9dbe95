package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrasolar/rackplan/internal/model"
	"github.com/terrasolar/rackplan/internal/terrain"
)

// testFootprint is a 10m x 5m rack of ten 1m x 5m panels.
func testFootprint() model.RackFootprint {
	panel := model.PanelSpec{WidthMm: 1000, HeightMm: 5000, PowerWatts: 500}
	return model.NewRackFootprint(panel, 10, 1, 20, 1500)
}

// flatSite builds a flat 100m x 100m surface and its buildable region.
func flatSite(t *testing.T) (*terrain.Surface, *terrain.BuildableRegion) {
	t.Helper()
	sfc, err := terrain.Build(terrain.GridTerrain(100000, 100000, 10000, terrain.Flat))
	require.NoError(t, err)
	region, err := terrain.Classify(sfc, 15)
	require.NoError(t, err)
	return sfc, region
}

func centeredSettings(spacing, azimuth float64) LayoutSettings {
	return LayoutSettings{
		RowSpacingMm:     spacing,
		AzimuthDeg:       azimuth,
		OriginX:          50000,
		OriginY:          50000,
		TerrainFollowing: true,
	}
}

func TestGenerateFlatSite(t *testing.T) {
	sfc, region := flatSite(t)
	layout, err := NewPlanner(centeredSettings(10000, 0)).Generate(sfc, region, testFootprint())
	require.NoError(t, err)

	// 9 columns of 10m racks and 9 rows at 10m pitch fit a 100m square
	// around a central origin.
	assert.Equal(t, 81, layout.RackCount)
	assert.Equal(t, 810, layout.PanelCount)
	assert.InDelta(t, 81*50.0, layout.PanelAreaM2, 1e-6)
	assert.InDelta(t, 10000, layout.GroundAreaM2, 1e-6)
	assert.InDelta(t, 0.405, layout.AchievedGCR, 1e-9)
	assert.InDelta(t, 81*5.0, layout.CapacityKw, 1e-9)
}

func TestGenerateAllCornersInside(t *testing.T) {
	sfc, region := flatSite(t)
	fp := testFootprint()
	layout, err := NewPlanner(centeredSettings(10000, 0)).Generate(sfc, region, fp)
	require.NoError(t, err)

	for _, pl := range layout.Placements {
		assert.GreaterOrEqual(t, pl.X-fp.WidthMm/2, 0.0)
		assert.LessOrEqual(t, pl.X+fp.WidthMm/2, 100000.0)
		assert.GreaterOrEqual(t, pl.Y-fp.HeightMm/2, 0.0)
		assert.LessOrEqual(t, pl.Y+fp.HeightMm/2, 100000.0)
	}
}

func TestGenerateDeterministicOrdering(t *testing.T) {
	sfc, region := flatSite(t)
	fp := testFootprint()

	first, err := NewPlanner(centeredSettings(10000, 0)).Generate(sfc, region, fp)
	require.NoError(t, err)
	second, err := NewPlanner(centeredSettings(10000, 0)).Generate(sfc, region, fp)
	require.NoError(t, err)

	require.Equal(t, first.RackCount, second.RackCount)
	for i := range first.Placements {
		a, b := first.Placements[i], second.Placements[i]
		assert.Equal(t, a.Row, b.Row)
		assert.Equal(t, a.Col, b.Col)
		assert.Equal(t, a.X, b.X)
		assert.Equal(t, a.Y, b.Y)
	}

	// Row-major: row ascending, column ascending within a row.
	for i := 1; i < len(first.Placements); i++ {
		prev, cur := first.Placements[i-1], first.Placements[i]
		if cur.Row == prev.Row {
			assert.Greater(t, cur.Col, prev.Col)
		} else {
			assert.Greater(t, cur.Row, prev.Row)
		}
	}
}

func TestGenerateSpacingMonotonicity(t *testing.T) {
	sfc, region := flatSite(t)
	fp := testFootprint()

	prevCount := math.MaxInt
	for _, spacing := range []float64{6000, 8000, 10000, 15000, 25000, 50000} {
		layout, err := NewPlanner(centeredSettings(spacing, 0)).Generate(sfc, region, fp)
		require.NoError(t, err)
		assert.LessOrEqual(t, layout.RackCount, prevCount,
			"spacing %g must not add racks", spacing)
		prevCount = layout.RackCount
	}
}

func TestGenerateRotatedAzimuth(t *testing.T) {
	sfc, region := flatSite(t)
	fp := testFootprint()

	// A 45 degree grid still fits racks, and every placement keeps the
	// requested azimuth.
	layout, err := NewPlanner(centeredSettings(10000, 45)).Generate(sfc, region, fp)
	require.NoError(t, err)
	assert.Greater(t, layout.RackCount, 0)
	for _, pl := range layout.Placements {
		assert.Equal(t, 45.0, pl.AzimuthDeg)
	}

	// South and north grids are mirror images: same capacity.
	south, err := NewPlanner(centeredSettings(10000, 180)).Generate(sfc, region, fp)
	require.NoError(t, err)
	north, err := NewPlanner(centeredSettings(10000, 0)).Generate(sfc, region, fp)
	require.NoError(t, err)
	assert.Equal(t, north.RackCount, south.RackCount)
}

func TestGenerateAzimuthNormalized(t *testing.T) {
	sfc, region := flatSite(t)
	layout, err := NewPlanner(centeredSettings(10000, 450)).Generate(sfc, region, testFootprint())
	require.NoError(t, err)
	assert.Equal(t, 90.0, layout.AzimuthDeg)
}

func TestGenerateEmptyRegion(t *testing.T) {
	sfc, _ := flatSite(t)
	layout, err := NewPlanner(centeredSettings(10000, 0)).Generate(sfc, &terrain.BuildableRegion{}, testFootprint())
	require.NoError(t, err, "zero racks is a valid outcome, not an error")
	assert.Equal(t, 0, layout.RackCount)
	assert.Empty(t, layout.Placements)
}

func TestGenerateInvalidParameters(t *testing.T) {
	sfc, region := flatSite(t)
	fp := testFootprint()

	_, err := NewPlanner(centeredSettings(0, 0)).Generate(sfc, region, fp)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = NewPlanner(centeredSettings(-100, 0)).Generate(sfc, region, fp)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	bad := fp
	bad.WidthMm = 0
	_, err = NewPlanner(centeredSettings(10000, 0)).Generate(sfc, region, bad)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestGenerateTerrainFollowingTilt(t *testing.T) {
	// 26.57 degree ramp rising north; racks face east so the grid runs
	// along the slope.
	sfc, err := terrain.Build(terrain.GridTerrain(100000, 100000, 10000, func(x, y float64) float64 {
		return 0.5 * y
	}))
	require.NoError(t, err)
	region, err := terrain.Classify(sfc, 30)
	require.NoError(t, err)

	fp := testFootprint() // nominal tilt 20

	// Facing north, the tilt axis runs up the slope: terrain following
	// steepens the rack to the ground slope.
	following, err := NewPlanner(centeredSettings(10000, 0)).Generate(sfc, region, fp)
	require.NoError(t, err)
	require.Greater(t, following.RackCount, 0)
	wantSlope := math.Atan(0.5) * 180 / math.Pi
	for _, pl := range following.Placements {
		assert.InDelta(t, wantSlope, pl.TiltDeg, 1e-6)
		assert.InDelta(t, wantSlope, pl.GroundSlopeDeg, 1e-6)
	}

	// Disabled: the nominal tilt survives regardless of slope.
	settings := centeredSettings(10000, 0)
	settings.TerrainFollowing = false
	rigid, err := NewPlanner(settings).Generate(sfc, region, fp)
	require.NoError(t, err)
	for _, pl := range rigid.Placements {
		assert.Equal(t, 20.0, pl.TiltDeg)
	}

	// Facing east, the tilt axis runs across the slope: no adjustment.
	cross, err := NewPlanner(centeredSettings(10000, 90)).Generate(sfc, region, fp)
	require.NoError(t, err)
	require.Greater(t, cross.RackCount, 0)
	for _, pl := range cross.Placements {
		assert.InDelta(t, 20.0, pl.TiltDeg, 1e-6)
	}
}

func TestGenerateElevationFollowsTerrain(t *testing.T) {
	sfc, err := terrain.Build(terrain.GridTerrain(100000, 100000, 10000, func(x, y float64) float64 {
		return 0.1 * x
	}))
	require.NoError(t, err)
	region, err := terrain.Classify(sfc, 15)
	require.NoError(t, err)

	layout, err := NewPlanner(centeredSettings(10000, 0)).Generate(sfc, region, testFootprint())
	require.NoError(t, err)
	require.Greater(t, layout.RackCount, 0)
	for _, pl := range layout.Placements {
		assert.InDelta(t, 0.1*pl.X, pl.Z, 1e-6)
	}
}

func TestGenerateWorkerCountInvariant(t *testing.T) {
	sfc, region := flatSite(t)
	fp := testFootprint()

	base := centeredSettings(10000, 0)
	serial := base
	serial.Workers = 1
	parallel := base
	parallel.Workers = 8

	a, err := NewPlanner(serial).Generate(sfc, region, fp)
	require.NoError(t, err)
	b, err := NewPlanner(parallel).Generate(sfc, region, fp)
	require.NoError(t, err)

	require.Equal(t, a.RackCount, b.RackCount)
	for i := range a.Placements {
		assert.Equal(t, a.Placements[i].Row, b.Placements[i].Row)
		assert.Equal(t, a.Placements[i].Col, b.Placements[i].Col)
	}
}
