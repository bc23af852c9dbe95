package model

import (
	"math"
	"testing"
)

func TestNewRackFootprint(t *testing.T) {
	panel := PanelSpec{WidthMm: 1134, HeightMm: 2278, PowerWatts: 550}
	fp := NewRackFootprint(panel, 26, 4, 20, 1500)

	if fp.WidthMm != 26*1134 {
		t.Errorf("expected width %d, got %g", 26*1134, fp.WidthMm)
	}
	if fp.HeightMm != 4*2278 {
		t.Errorf("expected height %d, got %g", 4*2278, fp.HeightMm)
	}
	if fp.PanelCount() != 104 {
		t.Errorf("expected 104 panels, got %d", fp.PanelCount())
	}
	if got := fp.CapacityKw(); math.Abs(got-57.2) > 1e-9 {
		t.Errorf("expected 57.2 kW, got %g", got)
	}
}

func TestNewRackPlacementID(t *testing.T) {
	a := NewRackPlacement(0, 0)
	b := NewRackPlacement(0, 0)
	if len(a.ID) != 8 {
		t.Errorf("expected 8-char ID, got %q", a.ID)
	}
	if a.ID == b.ID {
		t.Error("placements should get distinct IDs")
	}
}

func TestLayoutResultSummarize(t *testing.T) {
	panel := PanelSpec{WidthMm: 1000, HeightMm: 2000, PowerWatts: 500}
	fp := NewRackFootprint(panel, 10, 2, 20, 1500)

	lr := LayoutResult{
		Placements: []RackPlacement{
			NewRackPlacement(0, 0),
			NewRackPlacement(0, 1),
		},
	}
	// Two racks of 10m x 4m on 400 m2 of ground
	lr.Summarize(fp, 400e6)

	if lr.RackCount != 2 {
		t.Errorf("expected 2 racks, got %d", lr.RackCount)
	}
	if lr.PanelCount != 40 {
		t.Errorf("expected 40 panels, got %d", lr.PanelCount)
	}
	if math.Abs(lr.PanelAreaM2-80) > 1e-9 {
		t.Errorf("expected 80 m2 panel area, got %g", lr.PanelAreaM2)
	}
	if math.Abs(lr.AchievedGCR-0.2) > 1e-9 {
		t.Errorf("expected GCR 0.2, got %g", lr.AchievedGCR)
	}
	if math.Abs(lr.CapacityKw-20) > 1e-9 {
		t.Errorf("expected 20 kW, got %g", lr.CapacityKw)
	}
}

func TestLayoutResultSummarizeEmpty(t *testing.T) {
	fp := NewRackFootprint(DefaultPanelSpec(), 26, 4, 20, 1500)
	lr := LayoutResult{}
	lr.Summarize(fp, 0)

	if lr.RackCount != 0 || lr.AchievedGCR != 0 {
		t.Errorf("empty layout should have zero metrics, got %+v", lr)
	}
}
