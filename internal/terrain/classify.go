package terrain

import (
	"errors"
	"fmt"
	"sort"

	"github.com/terrasolar/rackplan/internal/model"
)

// ErrEmptyRegion is returned by Classify when no face qualifies. Callers
// must treat this as "no buildable area", not as a silent empty layout.
var ErrEmptyRegion = errors.New("no terrain below the slope threshold")

// BuildableRegion is the subset of a surface usable for construction at a
// given slope threshold: the qualifying triangle indices plus the boundary
// polygons obtained by merging adjacent qualifying faces. Never mutated;
// changing the threshold means classifying again.
type BuildableRegion struct {
	TriIndices  []int           `json:"tri_indices"`
	Polygons    []model.Polygon `json:"polygons"`
	MaxSlopeDeg float64         `json:"max_slope_deg"`
	AreaMm2     float64         `json:"area_mm2"`
	Bounds      model.Bounds2   `json:"bounds"`
}

// Classify selects every face with slope ≤ maxSlopeDeg (the threshold is an
// inclusive upper bound) and merges them into boundary polygons by
// shared-edge adjacency. An isolated qualifying face becomes its own
// single-triangle polygon.
func Classify(s *Surface, maxSlopeDeg float64) (*BuildableRegion, error) {
	if maxSlopeDeg <= 0 {
		return nil, fmt.Errorf("max slope must be positive, got %g", maxSlopeDeg)
	}

	region := &BuildableRegion{MaxSlopeDeg: maxSlopeDeg}
	for i := 0; i < s.NumFaces(); i++ {
		if s.slopes[i] <= maxSlopeDeg {
			region.TriIndices = append(region.TriIndices, i)
		}
	}
	if len(region.TriIndices) == 0 {
		return nil, fmt.Errorf("%w (max slope %g°)", ErrEmptyRegion, maxSlopeDeg)
	}
	sort.Ints(region.TriIndices)

	boundsSet := false
	for _, t := range region.TriIndices {
		tri := s.tris[t]
		a, b, c := s.points[tri[0]], s.points[tri[1]], s.points[tri[2]]
		region.AreaMm2 += planArea(a, b, c)
		for _, v := range []model.Point3{a, b, c} {
			if !boundsSet {
				region.Bounds = model.NewBounds2(v.XY())
				boundsSet = true
			} else {
				region.Bounds.Extend(v.XY())
			}
		}
	}

	region.Polygons = boundaryPolygons(s, region.TriIndices)
	return region, nil
}

// Empty reports whether the region has no member faces. Classify never
// produces an empty region, but the planner accepts one and returns a
// zero-rack layout.
func (r *BuildableRegion) Empty() bool {
	return r == nil || len(r.TriIndices) == 0
}

// Contains reports whether (x, y) lies inside the region, using the
// even-odd rule across all boundary rings so interior holes are excluded.
func (r *BuildableRegion) Contains(x, y float64) bool {
	crossings := 0
	for _, pg := range r.Polygons {
		if pg.ContainsPoint(x, y) {
			crossings++
		}
	}
	return crossings%2 == 1
}

// GroundAreaMm2 returns the bounding ground area of the region, the
// denominator of the ground-coverage ratio.
func (r *BuildableRegion) GroundAreaMm2() float64 {
	if r.Empty() {
		return 0
	}
	return r.Bounds.Area()
}

// boundaryPolygons extracts the boundary rings of the selected face set.
// An edge is on the boundary when exactly one selected face uses it; since
// every face is wound counter-clockwise, the directed boundary edges chain
// head-to-tail into closed rings (outer rings CCW, hole rings CW).
func boundaryPolygons(s *Surface, selected []int) []model.Polygon {
	inSet := make(map[int]bool, len(selected))
	for _, t := range selected {
		inSet[t] = true
	}

	undirCount := make(map[[2]int]int)
	for _, t := range selected {
		tri := s.tris[t]
		for e := 0; e < 3; e++ {
			undirCount[undirected(tri[e], tri[(e+1)%3])]++
		}
	}

	// next maps a boundary edge's start vertex to its end vertices. A vertex
	// can start more than one boundary edge when two region parts touch at a
	// single point.
	next := make(map[int][]int)
	for _, t := range selected {
		tri := s.tris[t]
		for e := 0; e < 3; e++ {
			a, b := tri[e], tri[(e+1)%3]
			if undirCount[undirected(a, b)] == 1 {
				next[a] = append(next[a], b)
			}
		}
	}
	for v := range next {
		sort.Ints(next[v])
	}

	var rings []model.Polygon
	starts := make([]int, 0, len(next))
	for v := range next {
		starts = append(starts, v)
	}
	sort.Ints(starts)

	for _, start := range starts {
		for len(next[start]) > 0 {
			ring := model.Polygon{s.points[start].XY()}
			cur := next[start][0]
			next[start] = next[start][1:]
			for cur != start {
				ring = append(ring, s.points[cur].XY())
				succ := next[cur]
				if len(succ) == 0 {
					// Open chain; should not happen on a well-formed
					// triangulation, but never loop forever.
					break
				}
				nxt := succ[0]
				next[cur] = succ[1:]
				cur = nxt
			}
			if len(ring) >= 3 {
				rings = append(rings, ring)
			}
		}
	}

	sort.Slice(rings, func(i, j int) bool {
		mi, _ := rings[i].BoundingBox()
		mj, _ := rings[j].BoundingBox()
		if mi.X != mj.X {
			return mi.X < mj.X
		}
		return mi.Y < mj.Y
	})
	return rings
}
