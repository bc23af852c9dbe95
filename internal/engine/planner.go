// Package engine lays out rack placements over a buildable terrain region
// and searches row spacing for a target ground-coverage ratio.
package engine

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/terrasolar/rackplan/internal/model"
	"github.com/terrasolar/rackplan/internal/terrain"
)

// ErrInvalidParameter is returned for non-positive spacing or footprint
// dimensions and for out-of-range optimizer targets.
var ErrInvalidParameter = errors.New("invalid layout parameter")

// LayoutSettings holds the full configuration accepted by the planner.
type LayoutSettings struct {
	RowSpacingMm     float64 `json:"row_spacing_mm"`
	AzimuthDeg       float64 `json:"azimuth_deg"` // 0=N, 90=E, 180=S, 270=W
	OriginX          float64 `json:"origin_x"`
	OriginY          float64 `json:"origin_y"`
	TerrainFollowing bool    `json:"terrain_following"`

	// Workers bounds concurrent candidate evaluation; 0 means GOMAXPROCS.
	Workers int `json:"workers,omitempty"`
}

// DefaultLayoutSettings returns a south-facing layout at 6 m row pitch with
// terrain following enabled.
func DefaultLayoutSettings() LayoutSettings {
	return LayoutSettings{
		RowSpacingMm:     6000,
		AzimuthDeg:       180,
		TerrainFollowing: true,
	}
}

// Planner generates grid layouts of rack footprints.
type Planner struct {
	Settings LayoutSettings
}

// NewPlanner returns a planner with the given settings.
func NewPlanner(settings LayoutSettings) *Planner {
	return &Planner{Settings: settings}
}

// candidate is one grid cell under evaluation.
type candidate struct {
	row, col int
	center   model.Point2
}

// Generate lays a regular grid of footprints over the buildable region.
//
// The grid frame is rotated by the azimuth: candidate centers sit at
// origin + v·(col·width) + u·(row·spacing), where u points along the
// azimuth and v (the row axis) is u rotated 90° counter-clockwise.
// Racks are edge-to-edge along a row; rows are rowSpacing apart.
//
// A candidate is accepted only when all four footprint corners lie inside
// the region boundary — no partial racks. Accepted racks take their z from
// the terrain at the footprint centroid; with terrain following the tilt is
// raised to the ground slope along the tilt direction when that slope
// exceeds the nominal tilt, so the trailing edge clears the ground.
//
// Candidates are evaluated concurrently but the returned placements are
// always ordered row-major by (row, col): identical inputs give identical
// output.
//
// An empty region yields an empty layout — zero racks is a valid,
// reportable outcome, not an error.
func (p *Planner) Generate(sfc *terrain.Surface, region *terrain.BuildableRegion, footprint model.RackFootprint) (model.LayoutResult, error) {
	if p.Settings.RowSpacingMm <= 0 {
		return model.LayoutResult{}, fmt.Errorf("%w: row spacing %g mm", ErrInvalidParameter, p.Settings.RowSpacingMm)
	}
	if footprint.WidthMm <= 0 || footprint.HeightMm <= 0 {
		return model.LayoutResult{}, fmt.Errorf("%w: footprint %g × %g mm", ErrInvalidParameter, footprint.WidthMm, footprint.HeightMm)
	}

	azimuth := model.NormalizeAzimuth(p.Settings.AzimuthDeg)
	result := model.LayoutResult{
		RowSpacingMm: p.Settings.RowSpacingMm,
		AzimuthDeg:   azimuth,
	}

	if region.Empty() {
		result.Summarize(footprint, 0)
		return result, nil
	}

	candidates := p.enumerate(region, footprint, azimuth)
	slots := make([]*model.RackPlacement, len(candidates))

	workers := p.Settings.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	var g errgroup.Group
	g.SetLimit(workers)

	chunk := (len(candidates) + workers - 1) / workers
	if chunk < 1 {
		chunk = 1
	}
	for start := 0; start < len(candidates); start += chunk {
		end := start + chunk
		if end > len(candidates) {
			end = len(candidates)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				slots[i] = p.evaluate(sfc, region, footprint, azimuth, candidates[i])
			}
			return nil
		})
	}
	// Evaluation never fails; the group only bounds parallelism.
	_ = g.Wait()

	for _, pl := range slots {
		if pl != nil {
			result.Placements = append(result.Placements, *pl)
		}
	}
	result.Summarize(footprint, region.GroundAreaMm2())
	return result, nil
}

// enumerate lists grid candidates in row-major order, covering the
// region's bounding box projected onto the azimuth axes.
func (p *Planner) enumerate(region *terrain.BuildableRegion, footprint model.RackFootprint, azimuth float64) []candidate {
	u, v := model.AzimuthAxes(azimuth)
	origin := model.Point2{X: p.Settings.OriginX, Y: p.Settings.OriginY}

	corners := [4]model.Point2{
		region.Bounds.Min,
		{X: region.Bounds.Max.X, Y: region.Bounds.Min.Y},
		region.Bounds.Max,
		{X: region.Bounds.Min.X, Y: region.Bounds.Max.Y},
	}
	sMin, sMax := math.Inf(1), math.Inf(-1)
	tMin, tMax := math.Inf(1), math.Inf(-1)
	for _, c := range corners {
		dx, dy := c.X-origin.X, c.Y-origin.Y
		s := dx*v.X + dy*v.Y
		t := dx*u.X + dy*u.Y
		sMin, sMax = math.Min(sMin, s), math.Max(sMax, s)
		tMin, tMax = math.Min(tMin, t), math.Max(tMax, t)
	}

	colPitch := footprint.WidthMm
	rowPitch := p.Settings.RowSpacingMm
	cMin := int(math.Floor(sMin/colPitch)) - 1
	cMax := int(math.Ceil(sMax/colPitch)) + 1
	rMin := int(math.Floor(tMin/rowPitch)) - 1
	rMax := int(math.Ceil(tMax/rowPitch)) + 1

	var out []candidate
	for r := rMin; r <= rMax; r++ {
		for c := cMin; c <= cMax; c++ {
			s := float64(c) * colPitch
			t := float64(r) * rowPitch
			out = append(out, candidate{
				row: r,
				col: c,
				center: model.Point2{
					X: origin.X + s*v.X + t*u.X,
					Y: origin.Y + s*v.Y + t*u.Y,
				},
			})
		}
	}
	return out
}

// evaluate tests one candidate and returns its placement, or nil when the
// footprint does not fit.
func (p *Planner) evaluate(sfc *terrain.Surface, region *terrain.BuildableRegion, footprint model.RackFootprint, azimuth float64, cand candidate) *model.RackPlacement {
	u, v := model.AzimuthAxes(azimuth)
	hw := footprint.WidthMm / 2
	hh := footprint.HeightMm / 2

	corners := [4]model.Point2{
		{X: cand.center.X - hw*v.X - hh*u.X, Y: cand.center.Y - hw*v.Y - hh*u.Y},
		{X: cand.center.X + hw*v.X - hh*u.X, Y: cand.center.Y + hw*v.Y - hh*u.Y},
		{X: cand.center.X + hw*v.X + hh*u.X, Y: cand.center.Y + hw*v.Y + hh*u.Y},
		{X: cand.center.X - hw*v.X + hh*u.X, Y: cand.center.Y - hw*v.Y + hh*u.Y},
	}
	for _, c := range corners {
		if !region.Contains(c.X, c.Y) {
			return nil
		}
	}

	z, _ := sfc.ElevationAt(cand.center.X, cand.center.Y)
	face, _ := sfc.FaceAt(cand.center.X, cand.center.Y)

	tilt := footprint.TiltDeg
	if p.Settings.TerrainFollowing {
		slope := p.slopeAlongTilt(sfc, cand.center, u, footprint.HeightMm)
		if slope > tilt {
			tilt = slope
		}
	}

	pl := model.NewRackPlacement(cand.row, cand.col)
	pl.X = cand.center.X
	pl.Y = cand.center.Y
	pl.Z = z
	pl.AzimuthDeg = azimuth
	pl.TiltDeg = tilt
	pl.GroundSlopeDeg = face.SlopeDeg
	pl.GroundAspectDeg = face.AspectDeg
	return &pl
}

// slopeAlongTilt measures the ground slope between the leading and trailing
// edge midpoints of the footprint, along the azimuth (tilt) axis.
func (p *Planner) slopeAlongTilt(sfc *terrain.Surface, center model.Point2, u model.Point2, depthMm float64) float64 {
	half := depthMm / 2
	zFront, _ := sfc.ElevationAt(center.X+half*u.X, center.Y+half*u.Y)
	zBack, _ := sfc.ElevationAt(center.X-half*u.X, center.Y-half*u.Y)
	return math.Atan(math.Abs(zBack-zFront)/depthMm) * 180 / math.Pi
}
