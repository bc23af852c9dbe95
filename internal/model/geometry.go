// Package model defines the pure geometric value types shared by the
// terrain and layout engines. All coordinates are millimeters in a
// right-handed frame: X=East, Y=North, Z=Up.
package model

import "math"

// Point2 represents a 2D ground coordinate in mm.
type Point2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point3 represents a 3D terrain sample in mm.
type Point3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// XY returns the ground projection of the point.
func (p Point3) XY() Point2 {
	return Point2{X: p.X, Y: p.Y}
}

// Vec3 is a 3D vector, used for face normals.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

// Cross returns the cross product v × w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
}

// Length returns the Euclidean norm.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns the unit vector, or the zero vector if v has zero length.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / l, Y: v.Y / l, Z: v.Z / l}
}

// Polygon is a closed 2D ring as a sequence of vertices. The ring is
// implicitly closed: the last vertex connects back to the first.
type Polygon []Point2

// ContainsEps is the boundary tolerance for point-in-polygon tests, in mm.
// Points within this distance of an edge count as inside, which keeps the
// containment predicate deterministic for footprints flush with a boundary.
const ContainsEps = 1e-6

// BoundingBox returns the min and max corners of the polygon.
func (pg Polygon) BoundingBox() (min, max Point2) {
	if len(pg) == 0 {
		return Point2{}, Point2{}
	}
	min, max = pg[0], pg[0]
	for _, p := range pg[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// Area returns the unsigned area enclosed by the ring (shoelace formula).
func (pg Polygon) Area() float64 {
	if len(pg) < 3 {
		return 0
	}
	sum := 0.0
	for i, p := range pg {
		q := pg[(i+1)%len(pg)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(sum) / 2
}

// ContainsPoint reports whether (x, y) lies inside the ring using the
// even-odd rule. Points on the boundary (within ContainsEps) are inside.
func (pg Polygon) ContainsPoint(x, y float64) bool {
	if len(pg) < 3 {
		return false
	}
	if pg.onBoundary(x, y) {
		return true
	}
	inside := false
	j := len(pg) - 1
	for i := 0; i < len(pg); i++ {
		pi, pj := pg[i], pg[j]
		if (pi.Y > y) != (pj.Y > y) {
			xCross := (pj.X-pi.X)*(y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if x < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// onBoundary reports whether (x, y) is within ContainsEps of any edge.
func (pg Polygon) onBoundary(x, y float64) bool {
	for i := range pg {
		a := pg[i]
		b := pg[(i+1)%len(pg)]
		if distPointSegment(x, y, a, b) <= ContainsEps {
			return true
		}
	}
	return false
}

func distPointSegment(x, y float64, a, b Point2) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(x-a.X, y-a.Y)
	}
	t := ((x-a.X)*dx + (y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(x-(a.X+t*dx), y-(a.Y+t*dy))
}

// Bounds2 is an axis-aligned 2D bounding box.
type Bounds2 struct {
	Min Point2 `json:"min"`
	Max Point2 `json:"max"`
}

// Width returns the X extent of the box.
func (b Bounds2) Width() float64 { return b.Max.X - b.Min.X }

// Height returns the Y extent of the box.
func (b Bounds2) Height() float64 { return b.Max.Y - b.Min.Y }

// Area returns the ground area covered by the box.
func (b Bounds2) Area() float64 { return b.Width() * b.Height() }

// Extend grows the box to include p.
func (b *Bounds2) Extend(p Point2) {
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
}

// NewBounds2 returns a box containing only p, ready for Extend calls.
func NewBounds2(p Point2) Bounds2 {
	return Bounds2{Min: p, Max: p}
}

// NormalizeAzimuth maps any compass angle in degrees onto [0, 360).
func NormalizeAzimuth(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// AzimuthAxes returns the along-azimuth unit vector u and the row-axis unit
// vector v for a compass azimuth in degrees (0=N, 90=E). v is u rotated 90°
// counter-clockwise viewed from above, so for a south-facing array (180°)
// rows run west to east.
func AzimuthAxes(azimuthDeg float64) (u, v Point2) {
	rad := azimuthDeg * math.Pi / 180
	u = Point2{X: math.Sin(rad), Y: math.Cos(rad)}
	v = Point2{X: -u.Y, Y: u.X}
	return u, v
}
