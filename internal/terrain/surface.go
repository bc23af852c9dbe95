// Package terrain builds an immutable triangulated surface from elevation
// samples and answers elevation, slope, and buildability queries against it.
package terrain

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/terrasolar/rackplan/internal/model"
)

var (
	// ErrInsufficientPoints is returned by Build for fewer than 3 points.
	ErrInsufficientPoints = errors.New("at least 3 terrain points are required")
	// ErrDegenerateGeometry is returned by Build when all points are collinear.
	ErrDegenerateGeometry = errors.New("terrain points are collinear")
)

// Surface is a triangulated irregular network over 3D sample points.
// It is immutable after Build; a new point set requires a new Surface.
type Surface struct {
	points  []model.Point3
	tris    [][3]int
	normals []model.Vec3
	slopes  []float64 // degrees, [0, 90]
	aspects []float64 // degrees, 0=N compass

	bounds model.Bounds2
	minZ   float64
	maxZ   float64

	index *triIndex
}

// Face is one triangle of the surface with its cached derived values.
type Face struct {
	Index     int
	V         [3]int
	A, B, C   model.Point3
	Normal    model.Vec3
	SlopeDeg  float64
	AspectDeg float64
}

// Build triangulates the given samples. Coordinates are mm, X=East Y=North
// Z=Up. Points sharing an identical (x, y) are collapsed to the first
// occurrence. Fails with ErrInsufficientPoints or ErrDegenerateGeometry;
// there is no fallback to a degenerate surface.
func Build(points []model.Point3) (*Surface, error) {
	unique := dedupeXY(points)
	if len(unique) < 3 {
		return nil, fmt.Errorf("%w (got %d)", ErrInsufficientPoints, len(unique))
	}
	if collinear(unique) {
		return nil, ErrDegenerateGeometry
	}

	tris := delaunay(unique)
	if len(tris) == 0 {
		return nil, ErrDegenerateGeometry
	}

	s := &Surface{
		points:  unique,
		tris:    tris,
		normals: make([]model.Vec3, len(tris)),
		slopes:  make([]float64, len(tris)),
		aspects: make([]float64, len(tris)),
		bounds:  model.NewBounds2(unique[0].XY()),
		minZ:    unique[0].Z,
		maxZ:    unique[0].Z,
	}
	for _, p := range unique[1:] {
		s.bounds.Extend(p.XY())
		s.minZ = math.Min(s.minZ, p.Z)
		s.maxZ = math.Max(s.maxZ, p.Z)
	}

	for i, tri := range tris {
		n := faceNormal(unique[tri[0]], unique[tri[1]], unique[tri[2]])
		s.normals[i] = n
		s.slopes[i] = slopeFromNormal(n)
		s.aspects[i] = aspectFromNormal(n)
	}

	s.index = newTriIndex(s)
	return s, nil
}

// NumPoints returns the number of distinct sample points.
func (s *Surface) NumPoints() int { return len(s.points) }

// NumFaces returns the number of triangles.
func (s *Surface) NumFaces() int { return len(s.tris) }

// Bounds returns the ground-plane bounding box of the surface.
func (s *Surface) Bounds() model.Bounds2 { return s.bounds }

// Face returns the face at the given triangle index.
func (s *Surface) Face(i int) Face {
	tri := s.tris[i]
	return Face{
		Index:     i,
		V:         tri,
		A:         s.points[tri[0]],
		B:         s.points[tri[1]],
		C:         s.points[tri[2]],
		Normal:    s.normals[i],
		SlopeDeg:  s.slopes[i],
		AspectDeg: s.aspects[i],
	}
}

// Triangles returns a lazy, restartable sequence over all faces.
func (s *Surface) Triangles() iter.Seq[Face] {
	return func(yield func(Face) bool) {
		for i := range s.tris {
			if !yield(s.Face(i)) {
				return
			}
		}
	}
}

// ElevationAt returns the barycentric-interpolated elevation at (x, y).
// For points outside the hull the nearest face's plane is extended and
// outOfBounds is true. Interpolation is continuous across shared edges.
func (s *Surface) ElevationAt(x, y float64) (z float64, outOfBounds bool) {
	fi, outside := s.locate(x, y)
	tri := s.tris[fi]
	a, b, c := s.points[tri[0]], s.points[tri[1]], s.points[tri[2]]
	return planeZ(x, y, a, b, c), outside
}

// SlopeAt returns the slope in degrees of the face containing (x, y).
// Slope is piecewise constant per face, an approximation of the continuous
// surface, and therefore discontinuous across triangle edges.
func (s *Surface) SlopeAt(x, y float64) (slopeDeg float64, outOfBounds bool) {
	fi, outside := s.locate(x, y)
	return s.slopes[fi], outside
}

// FaceAt returns the face containing (x, y), or the nearest face with
// outOfBounds=true when the point falls outside the hull.
func (s *Surface) FaceAt(x, y float64) (Face, bool) {
	fi, outside := s.locate(x, y)
	return s.Face(fi), outside
}

// locate finds the triangle containing (x, y), falling back to the nearest
// triangle by centroid distance (ties break to the lower index, keeping the
// lookup deterministic).
func (s *Surface) locate(x, y float64) (face int, outOfBounds bool) {
	if fi, ok := s.index.containing(s, x, y); ok {
		return fi, false
	}
	best := 0
	bestDist := math.Inf(1)
	for i, tri := range s.tris {
		a, b, c := s.points[tri[0]], s.points[tri[1]], s.points[tri[2]]
		cx := (a.X + b.X + c.X) / 3
		cy := (a.Y + b.Y + c.Y) / 3
		d := (cx-x)*(cx-x) + (cy-y)*(cy-y)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best, true
}

// Stats summarizes the surface for reporting.
type Stats struct {
	Points         int           `json:"points"`
	Faces          int           `json:"faces"`
	Bounds         model.Bounds2 `json:"bounds"`
	MinElevationMm float64       `json:"min_elevation_mm"`
	MaxElevationMm float64       `json:"max_elevation_mm"`
	MeanSlopeDeg   float64       `json:"mean_slope_deg"`
	MaxSlopeDeg    float64       `json:"max_slope_deg"`
}

// Stats computes summary statistics over all faces.
func (s *Surface) Stats() Stats {
	st := Stats{
		Points:         len(s.points),
		Faces:          len(s.tris),
		Bounds:         s.bounds,
		MinElevationMm: s.minZ,
		MaxElevationMm: s.maxZ,
	}
	for _, sl := range s.slopes {
		st.MeanSlopeDeg += sl
		st.MaxSlopeDeg = math.Max(st.MaxSlopeDeg, sl)
	}
	if len(s.slopes) > 0 {
		st.MeanSlopeDeg /= float64(len(s.slopes))
	}
	return st
}

// BuildablePercent returns the share of faces (by plan area) whose slope
// does not exceed maxSlopeDeg, as a percentage.
func (s *Surface) BuildablePercent(maxSlopeDeg float64) float64 {
	var total, ok float64
	for i, tri := range s.tris {
		a, b, c := s.points[tri[0]], s.points[tri[1]], s.points[tri[2]]
		area := planArea(a, b, c)
		total += area
		if s.slopes[i] <= maxSlopeDeg {
			ok += area
		}
	}
	if total == 0 {
		return 0
	}
	return ok / total * 100
}

// dedupeXY drops points whose (x, y) exactly matches an earlier point.
func dedupeXY(points []model.Point3) []model.Point3 {
	seen := make(map[model.Point2]bool, len(points))
	out := make([]model.Point3, 0, len(points))
	for _, p := range points {
		key := p.XY()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// collinear reports whether every point lies on one line in the XY plane.
func collinear(points []model.Point3) bool {
	p0 := points[0]
	var ref model.Point3
	refSet := false
	for _, p := range points[1:] {
		if p.X != p0.X || p.Y != p0.Y {
			ref = p
			refSet = true
			break
		}
	}
	if !refSet {
		return true
	}
	ux, uy := ref.X-p0.X, ref.Y-p0.Y
	scale := math.Hypot(ux, uy)
	for _, p := range points[1:] {
		cross := ux*(p.Y-p0.Y) - uy*(p.X-p0.X)
		if math.Abs(cross) > 1e-9*scale {
			return false
		}
	}
	return true
}

// faceNormal returns the upward-facing unit normal of triangle (a, b, c).
func faceNormal(a, b, c model.Point3) model.Vec3 {
	va := model.Vec3{X: a.X, Y: a.Y, Z: a.Z}
	vb := model.Vec3{X: b.X, Y: b.Y, Z: b.Z}
	vc := model.Vec3{X: c.X, Y: c.Y, Z: c.Z}
	n := vb.Sub(va).Cross(vc.Sub(va)).Normalize()
	if n.Z < 0 {
		n = model.Vec3{X: -n.X, Y: -n.Y, Z: -n.Z}
	}
	return n
}

// slopeFromNormal converts a unit normal to a slope angle in degrees.
// normal·vertical = cos(slope).
func slopeFromNormal(n model.Vec3) float64 {
	nz := math.Min(math.Max(n.Z, 0), 1)
	return math.Acos(nz) * 180 / math.Pi
}

// aspectFromNormal returns the compass direction of the fall line in
// degrees (0=N, 90=E). Flat faces report 0.
func aspectFromNormal(n model.Vec3) float64 {
	if n.X == 0 && n.Y == 0 {
		return 0
	}
	deg := math.Atan2(n.X, n.Y) * 180 / math.Pi
	return model.NormalizeAzimuth(deg)
}

// planeZ interpolates z at (x, y) on the plane through a, b, c using
// barycentric coordinates. Degenerate triangles fall back to the mean z.
func planeZ(x, y float64, a, b, c model.Point3) float64 {
	denom := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if math.Abs(denom) < 1e-12 {
		return (a.Z + b.Z + c.Z) / 3
	}
	wa := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / denom
	wb := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / denom
	wc := 1 - wa - wb
	return wa*a.Z + wb*b.Z + wc*c.Z
}

// planArea returns the XY-projected (plan) area of a triangle.
func planArea(a, b, c model.Point3) float64 {
	return math.Abs((b.X-a.X)*(c.Y-a.Y)-(c.X-a.X)*(b.Y-a.Y)) / 2
}

// barycentricEps tolerates floating-point noise at triangle edges so a
// query point on a shared edge is accepted by at least one of the faces.
const barycentricEps = 1e-9

// pointInTriangle reports whether (x, y) lies in the triangle's plan
// projection, boundary included.
func pointInTriangle(x, y float64, a, b, c model.Point3) bool {
	denom := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if math.Abs(denom) < 1e-12 {
		return false
	}
	wa := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / denom
	wb := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / denom
	wc := 1 - wa - wb
	return wa >= -barycentricEps && wb >= -barycentricEps && wc >= -barycentricEps
}

// triIndex is a uniform grid over triangle bounding boxes for O(1) point
// location on typical terrains.
type triIndex struct {
	minX, minY float64
	cellSize   float64
	nx, ny     int
	cells      [][]int32
}

func newTriIndex(s *Surface) *triIndex {
	b := s.bounds
	extent := math.Max(b.Width(), b.Height())
	if extent == 0 {
		extent = 1
	}
	// Aim for roughly one triangle per cell.
	n := int(math.Ceil(math.Sqrt(float64(len(s.tris)))))
	if n < 1 {
		n = 1
	}
	idx := &triIndex{
		minX:     b.Min.X,
		minY:     b.Min.Y,
		cellSize: extent / float64(n),
		nx:       n,
		ny:       n,
	}
	idx.cells = make([][]int32, n*n)

	for t, tri := range s.tris {
		a, bb, c := s.points[tri[0]], s.points[tri[1]], s.points[tri[2]]
		minCX, minCY := idx.cellOf(math.Min(a.X, math.Min(bb.X, c.X)), math.Min(a.Y, math.Min(bb.Y, c.Y)))
		maxCX, maxCY := idx.cellOf(math.Max(a.X, math.Max(bb.X, c.X)), math.Max(a.Y, math.Max(bb.Y, c.Y)))
		for cy := minCY; cy <= maxCY; cy++ {
			for cx := minCX; cx <= maxCX; cx++ {
				cell := cy*idx.nx + cx
				idx.cells[cell] = append(idx.cells[cell], int32(t))
			}
		}
	}
	return idx
}

func (idx *triIndex) cellOf(x, y float64) (int, int) {
	cx := int((x - idx.minX) / idx.cellSize)
	cy := int((y - idx.minY) / idx.cellSize)
	if cx < 0 {
		cx = 0
	} else if cx >= idx.nx {
		cx = idx.nx - 1
	}
	if cy < 0 {
		cy = 0
	} else if cy >= idx.ny {
		cy = idx.ny - 1
	}
	return cx, cy
}

// containing returns the lowest-indexed triangle whose plan projection
// contains (x, y).
func (idx *triIndex) containing(s *Surface, x, y float64) (int, bool) {
	if x < idx.minX || y < idx.minY ||
		x > idx.minX+float64(idx.nx)*idx.cellSize ||
		y > idx.minY+float64(idx.ny)*idx.cellSize {
		return 0, false
	}
	cx, cy := idx.cellOf(x, y)
	best := -1
	for _, t := range idx.cells[cy*idx.nx+cx] {
		tri := s.tris[t]
		if pointInTriangle(x, y, s.points[tri[0]], s.points[tri[1]], s.points[tri[2]]) {
			if best < 0 || int(t) < best {
				best = int(t)
			}
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}
