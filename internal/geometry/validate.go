package geometry

import (
	"errors"

	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"
	"gonum.org/v1/gonum/spatial/r2"
)

// Rejection reasons returned by Validate. They double as metric labels via
// Reason.
var (
	ErrTooFewVertices   = errors.New("fewer than 3 distinct vertices")
	ErrZeroArea         = errors.New("ring has zero area")
	ErrSelfIntersection = errors.New("ring is self-intersecting")
)

// Validate reports whether r is a usable simple polygon ring: at least three
// distinct vertices, non-zero area and no self-intersection.
//
// A ring whose vertices all lie on one line has zero area. Otherwise the
// self-intersection test runs before the area test, since a crossing ring
// such as a symmetric bowtie can have a signed area of exactly zero.
func Validate(r orb.Ring) error {
	ring := Dedupe(r)
	if DistinctVertices(ring) < 3 {
		return ErrTooFewVertices
	}
	if collinear(ring) {
		return ErrZeroArea
	}
	if SelfIntersects(ring) {
		return ErrSelfIntersection
	}
	if SignedArea(ring) == 0 {
		return ErrZeroArea
	}
	return nil
}

// collinear reports whether every vertex of r lies on the line through its
// first two distinct vertices.
func collinear(r orb.Ring) bool {
	if len(r) < 3 {
		return true
	}
	a := r[0]
	var b orb.Point
	found := false
	for _, p := range r[1:] {
		if p != a {
			b, found = p, true
			break
		}
	}
	if !found {
		return true
	}
	for _, p := range r {
		if orientation(a, b, p) != 0 {
			return false
		}
	}
	return true
}

// Reason maps a Validate error to a short label.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTooFewVertices):
		return "degenerate"
	case errors.Is(err, ErrZeroArea):
		return "zero_area"
	case errors.Is(err, ErrSelfIntersection):
		return "self_intersection"
	default:
		return "other"
	}
}

// SelfIntersects reports whether any two edges of r cross or touch other than
// at the vertex shared by consecutive edges. Consecutive edges that fold back
// over each other also count as an intersection.
//
// Edge bounding boxes are indexed in an R-tree so only overlapping pairs are
// tested exactly.
func SelfIntersects(r orb.Ring) bool {
	ring := Dedupe(r)
	n := len(ring)
	if n < 3 {
		return false
	}

	var tr rtree.RTreeG[int]
	for i := 0; i < n; i++ {
		min, max := segmentBox(ring[i], ring[(i+1)%n])
		tr.Insert(min, max, i)
	}

	found := false
	for i := 0; i < n && !found; i++ {
		a1, a2 := ring[i], ring[(i+1)%n]
		min, max := segmentBox(a1, a2)
		tr.Search(min, max, func(_, _ [2]float64, j int) bool {
			if j <= i {
				return true
			}
			b1, b2 := ring[j], ring[(j+1)%n]
			if adjacent(i, j, n) {
				if foldsBack(a1, a2, b1, b2) {
					found = true
				}
			} else if segmentsIntersect(a1, a2, b1, b2) {
				found = true
			}
			return !found
		})
	}
	return found
}

func adjacent(i, j, n int) bool {
	return j == i+1 || (i == 0 && j == n-1)
}

func segmentBox(a, b orb.Point) (min, max [2]float64) {
	min = [2]float64{a[0], a[1]}
	max = min
	if b[0] < min[0] {
		min[0] = b[0]
	}
	if b[0] > max[0] {
		max[0] = b[0]
	}
	if b[1] < min[1] {
		min[1] = b[1]
	}
	if b[1] > max[1] {
		max[1] = b[1]
	}
	return min, max
}

func vec(p orb.Point) r2.Vec {
	return r2.Vec{X: p[0], Y: p[1]}
}

// orientation is the sign of the turn p -> q -> s.
func orientation(p, q, s orb.Point) int {
	c := r2.Cross(r2.Sub(vec(q), vec(p)), r2.Sub(vec(s), vec(p)))
	switch {
	case c > 0:
		return 1
	case c < 0:
		return -1
	}
	return 0
}

// onSegment assumes p, q, s are collinear and checks s lies within pq's box.
func onSegment(p, q, s orb.Point) bool {
	return s[0] <= maxf(p[0], q[0]) && s[0] >= minf(p[0], q[0]) &&
		s[1] <= maxf(p[1], q[1]) && s[1] >= minf(p[1], q[1])
}

func segmentsIntersect(p1, p2, q1, q2 orb.Point) bool {
	o1 := orientation(p1, p2, q1)
	o2 := orientation(p1, p2, q2)
	o3 := orientation(q1, q2, p1)
	o4 := orientation(q1, q2, p2)

	if o1 != o2 && o3 != o4 {
		return true
	}
	if o1 == 0 && onSegment(p1, p2, q1) {
		return true
	}
	if o2 == 0 && onSegment(p1, p2, q2) {
		return true
	}
	if o3 == 0 && onSegment(q1, q2, p1) {
		return true
	}
	if o4 == 0 && onSegment(q1, q2, p2) {
		return true
	}
	return false
}

// foldsBack detects consecutive edges that are collinear and point in
// opposite directions, i.e. a zero-width spike.
func foldsBack(a1, a2, b1, b2 orb.Point) bool {
	da := r2.Sub(vec(a2), vec(a1))
	db := r2.Sub(vec(b2), vec(b1))
	return r2.Cross(da, db) == 0 && r2.Dot(da, db) < 0
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
