package model

import (
	"math"
	"testing"
)

func TestAzimuthAxes(t *testing.T) {
	cases := []struct {
		azimuth float64
		u, v    Point2
	}{
		{0, Point2{0, 1}, Point2{-1, 0}},
		{90, Point2{1, 0}, Point2{0, 1}},
		{180, Point2{0, -1}, Point2{1, 0}},
		{270, Point2{-1, 0}, Point2{0, -1}},
	}
	for _, c := range cases {
		u, v := AzimuthAxes(c.azimuth)
		if math.Abs(u.X-c.u.X) > 1e-12 || math.Abs(u.Y-c.u.Y) > 1e-12 {
			t.Errorf("azimuth %g: expected u %v, got %v", c.azimuth, c.u, u)
		}
		if math.Abs(v.X-c.v.X) > 1e-12 || math.Abs(v.Y-c.v.Y) > 1e-12 {
			t.Errorf("azimuth %g: expected v %v, got %v", c.azimuth, c.v, v)
		}
		// v is u rotated 90 degrees, so they stay perpendicular
		if dot := u.X*v.X + u.Y*v.Y; math.Abs(dot) > 1e-12 {
			t.Errorf("azimuth %g: u and v not perpendicular (dot %g)", c.azimuth, dot)
		}
	}
}

func TestNormalizeAzimuth(t *testing.T) {
	cases := map[float64]float64{
		0:    0,
		360:  0,
		450:  90,
		-90:  270,
		-720: 0,
		180:  180,
	}
	for in, want := range cases {
		if got := NormalizeAzimuth(in); math.Abs(got-want) > 1e-12 {
			t.Errorf("NormalizeAzimuth(%g) = %g, want %g", in, got, want)
		}
	}
}

func TestPolygonArea(t *testing.T) {
	square := Polygon{{0, 0}, {100, 0}, {100, 100}, {0, 100}}
	if got := square.Area(); math.Abs(got-10000) > 1e-9 {
		t.Errorf("expected area 10000, got %g", got)
	}

	// Winding direction must not change the magnitude
	reversed := Polygon{{0, 100}, {100, 100}, {100, 0}, {0, 0}}
	if got := reversed.Area(); math.Abs(got-10000) > 1e-9 {
		t.Errorf("expected area 10000 for reversed winding, got %g", got)
	}
}

func TestPolygonContainsPoint(t *testing.T) {
	square := Polygon{{0, 0}, {100, 0}, {100, 100}, {0, 100}}

	if !square.ContainsPoint(50, 50) {
		t.Error("center should be inside")
	}
	if square.ContainsPoint(150, 50) {
		t.Error("point right of the square should be outside")
	}
	if square.ContainsPoint(-1, 50) {
		t.Error("point left of the square should be outside")
	}
	// Boundary points count as inside within the documented epsilon
	if !square.ContainsPoint(100, 50) {
		t.Error("edge point should be inside")
	}
	if !square.ContainsPoint(0, 0) {
		t.Error("corner should be inside")
	}
}

func TestPolygonBoundingBox(t *testing.T) {
	pg := Polygon{{10, 20}, {-5, 40}, {30, -10}}
	min, max := pg.BoundingBox()
	if min.X != -5 || min.Y != -10 || max.X != 30 || max.Y != 40 {
		t.Errorf("unexpected bounding box: min %v max %v", min, max)
	}
}

func TestBounds2(t *testing.T) {
	b := NewBounds2(Point2{10, 10})
	b.Extend(Point2{30, 5})
	b.Extend(Point2{20, 50})

	if b.Width() != 20 || b.Height() != 45 {
		t.Errorf("expected 20 x 45, got %g x %g", b.Width(), b.Height())
	}
	if got := b.Area(); math.Abs(got-900) > 1e-9 {
		t.Errorf("expected area 900, got %g", got)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := Vec3{X: 0, Y: 3, Z: 4}.Normalize()
	if math.Abs(n.Length()-1) > 1e-12 {
		t.Errorf("expected unit length, got %g", n.Length())
	}
}
