package terrain

import (
	"math"

	"github.com/terrasolar/rackplan/internal/model"
)

// ElevationFunc maps a ground position to an elevation, all in mm.
type ElevationFunc func(x, y float64) float64

// Flat is the zero-elevation function.
func Flat(x, y float64) float64 { return 0 }

// GridTerrain generates sample points on a regular grid covering
// [0, xExtent] × [0, yExtent] at the given spacing, with elevations from
// fn (Flat when nil). Useful for synthetic sites and DEM-like input.
func GridTerrain(xExtent, yExtent, spacing float64, fn ElevationFunc) []model.Point3 {
	if spacing <= 0 || xExtent <= 0 || yExtent <= 0 {
		return nil
	}
	if fn == nil {
		fn = Flat
	}
	nx := int(math.Round(xExtent/spacing)) + 1
	ny := int(math.Round(yExtent/spacing)) + 1
	points := make([]model.Point3, 0, nx*ny)
	for iy := 0; iy < ny; iy++ {
		y := math.Min(float64(iy)*spacing, yExtent)
		for ix := 0; ix < nx; ix++ {
			x := math.Min(float64(ix)*spacing, xExtent)
			points = append(points, model.Point3{X: x, Y: y, Z: fn(x, y)})
		}
	}
	return points
}
