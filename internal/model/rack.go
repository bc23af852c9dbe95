package model

import "github.com/google/uuid"

// PanelSpec describes the PV module mounted on a rack.
type PanelSpec struct {
	WidthMm    float64 `json:"width_mm"`
	HeightMm   float64 `json:"height_mm"`
	PowerWatts float64 `json:"power_watts"`
}

// DefaultPanelSpec returns a generic 550 W module.
func DefaultPanelSpec() PanelSpec {
	return PanelSpec{
		WidthMm:    1134,
		HeightMm:   2278,
		PowerWatts: 550,
	}
}

// RackFootprint is the immutable physical envelope of one rack structure.
// Width runs along the row, Height across the row (the tilt direction).
type RackFootprint struct {
	WidthMm      float64   `json:"width_mm"`
	HeightMm     float64   `json:"height_mm"`
	TiltDeg      float64   `json:"tilt_deg"`
	PostHeightMm float64   `json:"post_height_mm"`
	PanelsWide   int       `json:"panels_wide"`
	PanelRows    int       `json:"panel_rows"`
	Panel        PanelSpec `json:"panel"`
}

// NewRackFootprint builds a footprint sized to hold panelsWide × panelRows
// modules of the given spec.
func NewRackFootprint(panel PanelSpec, panelsWide, panelRows int, tiltDeg, postHeightMm float64) RackFootprint {
	return RackFootprint{
		WidthMm:      float64(panelsWide) * panel.WidthMm,
		HeightMm:     float64(panelRows) * panel.HeightMm,
		TiltDeg:      tiltDeg,
		PostHeightMm: postHeightMm,
		PanelsWide:   panelsWide,
		PanelRows:    panelRows,
		Panel:        panel,
	}
}

// PanelCount returns the number of modules per rack.
func (f RackFootprint) PanelCount() int {
	n := f.PanelsWide * f.PanelRows
	if n <= 0 {
		return 1
	}
	return n
}

// AreaMm2 returns the envelope area of the footprint.
func (f RackFootprint) AreaMm2() float64 {
	return f.WidthMm * f.HeightMm
}

// CapacityKw returns the DC capacity of one rack in kW.
func (f RackFootprint) CapacityKw() float64 {
	return float64(f.PanelCount()) * f.Panel.PowerWatts / 1000
}

// RackPlacement is one placed rack. Produced by the planner and never
// mutated afterwards; a new layout run produces a new list.
type RackPlacement struct {
	ID  string `json:"id"`
	Row int    `json:"row"`
	Col int    `json:"col"`

	// Position of the footprint centroid, mm. Z follows the terrain.
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`

	// Orientation. TiltDeg may exceed the footprint's nominal tilt when
	// terrain following steepens the rack to clear the ground.
	AzimuthDeg float64 `json:"azimuth_deg"`
	TiltDeg    float64 `json:"tilt_deg"`

	// Terrain sampled beneath the rack.
	GroundSlopeDeg  float64 `json:"ground_slope_deg"`
	GroundAspectDeg float64 `json:"ground_aspect_deg"`
}

// NewRackPlacement assigns a fresh short ID, matching the ID style used for
// every other entity in the project.
func NewRackPlacement(row, col int) RackPlacement {
	return RackPlacement{
		ID:  uuid.New().String()[:8],
		Row: row,
		Col: col,
	}
}

// LayoutResult is the ordered list of placements plus summary metrics.
// Read-only once produced.
type LayoutResult struct {
	Placements []RackPlacement `json:"placements"`

	RackCount    int     `json:"rack_count"`
	PanelCount   int     `json:"panel_count"`
	PanelAreaM2  float64 `json:"panel_area_m2"`
	GroundAreaM2 float64 `json:"ground_area_m2"`
	AchievedGCR  float64 `json:"achieved_gcr"`
	CapacityKw   float64 `json:"capacity_kw"`

	RowSpacingMm float64 `json:"row_spacing_mm"`
	AzimuthDeg   float64 `json:"azimuth_deg"`
}

// Summarize fills the derived metrics from the placement list. groundAreaMm2
// is the bounding ground area of the buildable region the layout ran over.
func (lr *LayoutResult) Summarize(footprint RackFootprint, groundAreaMm2 float64) {
	lr.RackCount = len(lr.Placements)
	lr.PanelCount = lr.RackCount * footprint.PanelCount()
	lr.PanelAreaM2 = float64(lr.RackCount) * footprint.AreaMm2() / 1e6
	lr.GroundAreaM2 = groundAreaMm2 / 1e6
	lr.CapacityKw = float64(lr.RackCount) * footprint.CapacityKw()
	if lr.GroundAreaM2 > 0 {
		lr.AchievedGCR = lr.PanelAreaM2 / lr.GroundAreaM2
	}
}

// SpacingResult is the spacing optimizer's outcome. Converged=false marks a
// best-effort spacing after the iteration budget ran out; callers decide
// whether to accept it.
type SpacingResult struct {
	SpacingMm   float64      `json:"spacing_mm"`
	AchievedGCR float64      `json:"achieved_gcr"`
	TargetGCR   float64      `json:"target_gcr"`
	Converged   bool         `json:"converged"`
	Iterations  int          `json:"iterations"`
	Layout      LayoutResult `json:"layout"`
}
