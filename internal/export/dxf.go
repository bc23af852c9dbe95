// Package export writes layout results to CAD and data exchange formats.
package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/entity"

	"github.com/terrasolar/rackplan/internal/model"
	"github.com/terrasolar/rackplan/internal/terrain"
)

// DXF layer names for the exported drawing.
const (
	layerTerrain  = "TERRAIN"
	layerBoundary = "BUILDABLE"
	layerRacks    = "RACKS"
)

// ExportDXF writes the surface triangulation, the buildable boundary, and
// the rack footprints to a DXF drawing, one layer per concern. Coordinates
// are plan-view millimetres; elevations are dropped since the drawing is 2D.
// Surface and region may be nil to export a layout alone.
func ExportDXF(path string, sfc *terrain.Surface, region *terrain.BuildableRegion, layout model.LayoutResult, footprint model.RackFootprint) error {
	d := dxf.NewDrawing()
	d.Header().LtScale = 1.0

	if sfc != nil {
		d.AddLayer(layerTerrain, color.Green, dxf.DefaultLineType, true)
		d.ChangeLayer(layerTerrain)
		for face := range sfc.Triangles() {
			lwp := entity.NewLwPolyline(4)
			lwp.Vertices[0] = []float64{face.A.X, face.A.Y}
			lwp.Vertices[1] = []float64{face.B.X, face.B.Y}
			lwp.Vertices[2] = []float64{face.C.X, face.C.Y}
			lwp.Vertices[3] = []float64{face.A.X, face.A.Y}
			d.AddEntity(lwp)
		}
	}

	if region != nil {
		d.AddLayer(layerBoundary, color.Yellow, dxf.DefaultLineType, true)
		d.ChangeLayer(layerBoundary)
		for _, pg := range region.Polygons {
			if len(pg) < 3 {
				continue
			}
			lwp := entity.NewLwPolyline(len(pg) + 1)
			for i, pt := range pg {
				lwp.Vertices[i] = []float64{pt.X, pt.Y}
			}
			lwp.Vertices[len(pg)] = []float64{pg[0].X, pg[0].Y}
			d.AddEntity(lwp)
		}
	}

	if len(layout.Placements) > 0 {
		d.AddLayer(layerRacks, color.Red, dxf.DefaultLineType, true)
		d.ChangeLayer(layerRacks)
		for _, pl := range layout.Placements {
			corners := footprintCorners(pl, footprint)
			lwp := entity.NewLwPolyline(5)
			for i, c := range corners {
				lwp.Vertices[i] = []float64{c.X, c.Y}
			}
			lwp.Vertices[4] = []float64{corners[0].X, corners[0].Y}
			d.AddEntity(lwp)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("save dxf: %w", err)
	}
	return nil
}

// footprintCorners returns the four plan-view corners of a placed rack, in
// counter-clockwise order starting at the back-left corner.
func footprintCorners(pl model.RackPlacement, footprint model.RackFootprint) [4]model.Point2 {
	u, v := model.AzimuthAxes(pl.AzimuthDeg)
	hw := footprint.WidthMm / 2
	hh := footprint.HeightMm / 2
	return [4]model.Point2{
		{X: pl.X - hw*v.X - hh*u.X, Y: pl.Y - hw*v.Y - hh*u.Y},
		{X: pl.X + hw*v.X - hh*u.X, Y: pl.Y + hw*v.Y - hh*u.Y},
		{X: pl.X + hw*v.X + hh*u.X, Y: pl.Y + hw*v.Y + hh*u.Y},
		{X: pl.X - hw*v.X + hh*u.X, Y: pl.Y - hw*v.Y + hh*u.Y},
	}
}
