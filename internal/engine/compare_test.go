package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareScenarios(t *testing.T) {
	sfc, region := flatSite(t)
	fp := testFootprint()

	scenarios := []ComparisonScenario{
		{Name: "Tight", Settings: centeredSettings(6000, 0), Footprint: fp},
		{Name: "Loose", Settings: centeredSettings(20000, 0), Footprint: fp},
	}
	results := CompareScenarios(sfc, region, scenarios)

	require.Len(t, results, 2)
	assert.Equal(t, "Tight", results[0].Scenario.Name)
	assert.Equal(t, "Loose", results[1].Scenario.Name)
	for _, r := range results {
		assert.NoError(t, r.Err)
		assert.Equal(t, r.Layout.RackCount, r.RackCount)
		assert.Equal(t, r.Layout.AchievedGCR, r.GCR)
	}
	assert.Greater(t, results[0].RackCount, results[1].RackCount)
}

func TestCompareScenariosCarriesErrors(t *testing.T) {
	sfc, region := flatSite(t)
	fp := testFootprint()

	scenarios := []ComparisonScenario{
		{Name: "Bad", Settings: centeredSettings(0, 0), Footprint: fp},
		{Name: "Good", Settings: centeredSettings(10000, 0), Footprint: fp},
	}
	results := CompareScenarios(sfc, region, scenarios)

	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, ErrInvalidParameter)
	assert.NoError(t, results[1].Err)
	assert.Greater(t, results[1].RackCount, 0)
}

func TestBuildDefaultScenarios(t *testing.T) {
	fp := testFootprint()
	scenarios := BuildDefaultScenarios(centeredSettings(10000, 180), fp)

	require.NotEmpty(t, scenarios)
	assert.Equal(t, "Current Settings", scenarios[0].Name)
	names := make(map[string]bool)
	for _, s := range scenarios {
		assert.False(t, names[s.Name], "scenario names must be unique")
		names[s.Name] = true
	}
}
