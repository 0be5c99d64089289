package detection

import (
	"github.com/ironsheep/sat-polygons/internal/geometry"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// Simplify reduces an open ring with Douglas-Peucker. The tolerance is
// fraction times the closed perimeter of the ring, so it scales with the
// feature rather than the image.
//
// Douglas-Peucker always keeps the seam vertex (the first one). Afterwards
// that vertex is dropped too when it lies within tolerance of the chord
// between its neighbours.
func Simplify(r orb.Ring, fraction float64) orb.Ring {
	if len(r) < 4 || fraction <= 0 {
		return append(orb.Ring(nil), r...)
	}
	tolerance := fraction * geometry.Perimeter(r)

	ls := orb.LineString(geometry.Close(r))
	s, ok := simplify.DouglasPeucker(tolerance).Simplify(ls.Clone()).(orb.LineString)
	if !ok {
		return append(orb.Ring(nil), r...)
	}
	out := geometry.Open(orb.Ring(s))

	if n := len(out); n > 3 {
		if planar.DistanceFromSegment(out[n-1], out[1], out[0]) <= tolerance {
			out = out[1:]
		}
	}
	return out
}
