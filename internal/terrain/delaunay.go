package terrain

import (
	"math"

	"github.com/terrasolar/rackplan/internal/model"
)

// delaunay computes a 2D Delaunay triangulation of the points' ground
// projection using the Bowyer-Watson algorithm. Triangles are returned as
// vertex index triples wound counter-clockwise in the XY plane.
//
// The triangulation works on indices into the caller's point slice; the
// three super-triangle vertices are appended past the end and stripped
// before returning.
func delaunay(points []model.Point3) [][3]int {
	n := len(points)
	if n < 3 {
		return nil
	}

	verts := make([]model.Point2, n, n+3)
	for i, p := range points {
		verts[i] = p.XY()
	}
	verts = append(verts, superTriangle(verts)...)

	tris := [][3]int{{n, n + 1, n + 2}}

	for i := 0; i < n; i++ {
		p := verts[i]

		// Triangles whose circumcircle contains the new point are invalid.
		var bad []int
		for t, tri := range tris {
			if inCircumcircle(p, verts[tri[0]], verts[tri[1]], verts[tri[2]]) {
				bad = append(bad, t)
			}
		}

		// The cavity boundary is every edge of a bad triangle not shared
		// with another bad triangle.
		edgeCount := make(map[[2]int]int)
		for _, t := range bad {
			tri := tris[t]
			for e := 0; e < 3; e++ {
				edgeCount[undirected(tri[e], tri[(e+1)%3])]++
			}
		}

		var polygon [][2]int
		for _, t := range bad {
			tri := tris[t]
			for e := 0; e < 3; e++ {
				a, b := tri[e], tri[(e+1)%3]
				if edgeCount[undirected(a, b)] == 1 {
					polygon = append(polygon, [2]int{a, b})
				}
			}
		}

		// Drop the bad triangles and re-triangulate the cavity around p.
		kept := tris[:0]
		badSet := make(map[int]bool, len(bad))
		for _, t := range bad {
			badSet[t] = true
		}
		for t, tri := range tris {
			if !badSet[t] {
				kept = append(kept, tri)
			}
		}
		tris = kept

		for _, edge := range polygon {
			tris = append(tris, ccw(edge[0], edge[1], i, verts))
		}
	}

	// Strip triangles that still touch the super-triangle.
	final := tris[:0]
	for _, tri := range tris {
		if tri[0] < n && tri[1] < n && tri[2] < n {
			final = append(final, tri)
		}
	}
	return final
}

// superTriangle returns three vertices enclosing every input point with a
// wide margin, so no input point lands on a super-triangle edge.
func superTriangle(verts []model.Point2) []model.Point2 {
	b := model.NewBounds2(verts[0])
	for _, v := range verts[1:] {
		b.Extend(v)
	}
	d := math.Max(b.Width(), b.Height())
	if d == 0 {
		d = 1
	}
	midX := (b.Min.X + b.Max.X) / 2
	midY := (b.Min.Y + b.Max.Y) / 2
	return []model.Point2{
		{X: midX - 20*d, Y: midY - d},
		{X: midX, Y: midY + 20*d},
		{X: midX + 20*d, Y: midY - d},
	}
}

// inCircumcircle reports whether p lies strictly inside the circumcircle of
// triangle (a, b, c).
func inCircumcircle(p, a, b, c model.Point2) bool {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if math.Abs(d) < 1e-10 {
		return false
	}
	aa := a.X*a.X + a.Y*a.Y
	bb := b.X*b.X + b.Y*b.Y
	cc := c.X*c.X + c.Y*c.Y
	ux := (aa*(b.Y-c.Y) + bb*(c.Y-a.Y) + cc*(a.Y-b.Y)) / d
	uy := (aa*(c.X-b.X) + bb*(a.X-c.X) + cc*(b.X-a.X)) / d
	r2 := (ux-a.X)*(ux-a.X) + (uy-a.Y)*(uy-a.Y)
	dist2 := (ux-p.X)*(ux-p.X) + (uy-p.Y)*(uy-p.Y)
	return dist2 < r2
}

// undirected returns a canonical key for an undirected edge.
func undirected(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// ccw orders a triangle counter-clockwise in the XY plane.
func ccw(a, b, c int, verts []model.Point2) [3]int {
	pa, pb, pc := verts[a], verts[b], verts[c]
	cross := (pb.X-pa.X)*(pc.Y-pa.Y) - (pc.X-pa.X)*(pb.Y-pa.Y)
	if cross < 0 {
		return [3]int{a, c, b}
	}
	return [3]int{a, b, c}
}
