package engine

import (
	"fmt"

	"github.com/terrasolar/rackplan/internal/model"
	"github.com/terrasolar/rackplan/internal/terrain"
)

// ComparisonScenario defines a named set of layout settings to compare.
type ComparisonScenario struct {
	Name      string
	Settings  LayoutSettings
	Footprint model.RackFootprint
}

// ComparisonResult holds the layout and headline statistics for a single
// scenario.
type ComparisonResult struct {
	Scenario   ComparisonScenario
	Layout     model.LayoutResult
	RackCount  int
	CapacityKw float64
	GCR        float64
	Err        error
}

// CompareScenarios generates a layout for each scenario on the same surface
// and region, returning results in scenario order. A scenario whose
// parameters fail validation carries the error instead of aborting the
// whole comparison.
func CompareScenarios(sfc *terrain.Surface, region *terrain.BuildableRegion, scenarios []ComparisonScenario) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		layout, err := NewPlanner(scenario.Settings).Generate(sfc, region, scenario.Footprint)
		results = append(results, ComparisonResult{
			Scenario:   scenario,
			Layout:     layout,
			RackCount:  layout.RackCount,
			CapacityKw: layout.CapacityKw,
			GCR:        layout.AchievedGCR,
			Err:        err,
		})
	}

	return results
}

// BuildDefaultScenarios generates what-if variations of the base settings:
// tighter and looser row spacing and an east-west azimuth alternative.
func BuildDefaultScenarios(base LayoutSettings, footprint model.RackFootprint) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{Name: "Current Settings", Settings: base, Footprint: footprint},
	}

	if base.RowSpacingMm > footprint.HeightMm {
		tight := base
		tight.RowSpacingMm = (base.RowSpacingMm + footprint.HeightMm) / 2
		scenarios = append(scenarios, ComparisonScenario{
			Name:      fmt.Sprintf("Spacing %.0fmm (tighter)", tight.RowSpacingMm),
			Settings:  tight,
			Footprint: footprint,
		})
	}

	loose := base
	loose.RowSpacingMm = base.RowSpacingMm * 1.5
	scenarios = append(scenarios, ComparisonScenario{
		Name:      fmt.Sprintf("Spacing %.0fmm (looser)", loose.RowSpacingMm),
		Settings:  loose,
		Footprint: footprint,
	})

	altAz := base
	if base.AzimuthDeg == 90 {
		altAz.AzimuthDeg = 180
		scenarios = append(scenarios, ComparisonScenario{
			Name: "South Facing", Settings: altAz, Footprint: footprint,
		})
	} else {
		altAz.AzimuthDeg = 90
		scenarios = append(scenarios, ComparisonScenario{
			Name: "East Facing", Settings: altAz, Footprint: footprint,
		})
	}

	return scenarios
}
