package importer

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/terrasolar/rackplan/internal/model"
)

// ImportDXF imports survey points from a DXF file. Surveyors commonly
// deliver breaklines as 3D LINE entities; each distinct endpoint becomes a
// sample point. Entities without elevation information are skipped.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	seen := make(map[[2]float64]bool)
	skipped := 0
	add := func(x, y, z float64) {
		key := [2]float64{x, y}
		if seen[key] {
			return
		}
		seen[key] = true
		result.Points = append(result.Points, model.Point3{X: x, Y: y, Z: z})
	}

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.Line:
			add(e.Start[0], e.Start[1], e.Start[2])
			add(e.End[0], e.End[1], e.End[2])
		default:
			skipped++
		}
	}

	if skipped > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Skipped %d entities without 3D coordinates", skipped))
	}
	if len(result.Points) == 0 {
		result.Errors = append(result.Errors, "No 3D points found in DXF file")
	}
	return result
}
