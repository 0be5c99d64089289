package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

// Open returns r without a trailing duplicate of its first vertex.
func Open(r orb.Ring) orb.Ring {
	if len(r) >= 2 && r[0] == r[len(r)-1] {
		return r[:len(r)-1]
	}
	return r
}

// Close returns a copy of r with the first vertex repeated as the last one,
// which is the form GeoJSON requires.
func Close(r orb.Ring) orb.Ring {
	open := Open(r)
	if len(open) == 0 {
		return orb.Ring{}
	}
	closed := make(orb.Ring, len(open), len(open)+1)
	copy(closed, open)
	return append(closed, open[0])
}

// Dedupe removes consecutive duplicate vertices, including the seam between
// the last and the first vertex. The input is not modified.
func Dedupe(r orb.Ring) orb.Ring {
	open := Open(r)
	out := make(orb.Ring, 0, len(open))
	for _, p := range open {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	for len(out) >= 2 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

// DistinctVertices counts the distinct points in r.
func DistinctVertices(r orb.Ring) int {
	seen := make(map[orb.Point]struct{}, len(r))
	for _, p := range Open(r) {
		seen[p] = struct{}{}
	}
	return len(seen)
}

// SignedArea computes the shoelace area of r. In image coordinates (y down)
// a clockwise-on-screen ring has positive area.
func SignedArea(r orb.Ring) float64 {
	open := Open(r)
	n := len(open)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		a := open[i]
		b := open[(i+1)%n]
		sum += a[0]*b[1] - b[0]*a[1]
	}
	return sum / 2
}

// Area is the magnitude of the shoelace area.
func Area(r orb.Ring) float64 {
	return math.Abs(SignedArea(r))
}

// Perimeter is the length of r including the closing segment.
func Perimeter(r orb.Ring) float64 {
	open := Open(r)
	n := len(open)
	if n < 2 {
		return 0
	}
	var total float64
	for i := 0; i < n; i++ {
		a := open[i]
		b := open[(i+1)%n]
		total += math.Hypot(b[0]-a[0], b[1]-a[1])
	}
	return total
}

// Centroid returns the area-weighted centroid of r. Degenerate rings with no
// area fall back to the mean of their vertices.
func Centroid(r orb.Ring) orb.Point {
	open := Open(r)
	n := len(open)
	if n == 0 {
		return orb.Point{}
	}

	a := SignedArea(open)
	if a == 0 {
		var sx, sy float64
		for _, p := range open {
			sx += p[0]
			sy += p[1]
		}
		return orb.Point{sx / float64(n), sy / float64(n)}
	}

	var cx, cy float64
	for i := 0; i < n; i++ {
		p := open[i]
		q := open[(i+1)%n]
		cross := p[0]*q[1] - q[0]*p[1]
		cx += (p[0] + q[0]) * cross
		cy += (p[1] + q[1]) * cross
	}
	return orb.Point{cx / (6 * a), cy / (6 * a)}
}
