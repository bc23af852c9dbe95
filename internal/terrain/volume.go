package terrain

import "fmt"

// CutFill computes earthwork volumes between two surfaces sharing one
// triangulation (the graded surface is typically built from the original
// points with adjusted elevations). Uses the triangular prism method.
// Volumes are cubic mm; net = fill − cut.
func CutFill(original, graded *Surface) (cut, fill, net float64, err error) {
	if original.NumFaces() != graded.NumFaces() || original.NumPoints() != graded.NumPoints() {
		return 0, 0, 0, fmt.Errorf("surfaces must share a triangulation (%d/%d faces)",
			original.NumFaces(), graded.NumFaces())
	}
	for i, tri := range original.tris {
		if tri != graded.tris[i] {
			return 0, 0, 0, fmt.Errorf("surfaces must share a triangulation (face %d differs)", i)
		}
	}

	for _, tri := range original.tris {
		oa, ob, oc := original.points[tri[0]], original.points[tri[1]], original.points[tri[2]]
		ga, gb, gc := graded.points[tri[0]], graded.points[tri[1]], graded.points[tri[2]]

		area := planArea(oa, ob, oc)
		dz := (ga.Z+gb.Z+gc.Z)/3 - (oa.Z+ob.Z+oc.Z)/3
		v := area * dz
		if v > 0 {
			fill += v
		} else {
			cut += -v
		}
	}
	return cut, fill, fill - cut, nil
}
