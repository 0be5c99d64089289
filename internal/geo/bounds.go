package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// ErrInvalidBounds is returned when a bounding box is empty, inverted or not
// finite.
var ErrInvalidBounds = errors.New("invalid bounds")

// Bounds is the geographic rectangle covered by a raster, in degrees.
// Row 0 of the raster is the North edge and column 0 the West edge.
type Bounds struct {
	West  float64 `json:"west" mapstructure:"west"`
	South float64 `json:"south" mapstructure:"south"`
	East  float64 `json:"east" mapstructure:"east"`
	North float64 `json:"north" mapstructure:"north"`
}

// Validate checks that every edge is finite and that West < East and
// South < North.
func (b Bounds) Validate() error {
	for _, v := range []float64{b.West, b.South, b.East, b.North} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite edge in %v", ErrInvalidBounds, b)
		}
	}
	if b.West >= b.East {
		return fmt.Errorf("%w: west %v must be less than east %v", ErrInvalidBounds, b.West, b.East)
	}
	if b.South >= b.North {
		return fmt.Errorf("%w: south %v must be less than north %v", ErrInvalidBounds, b.South, b.North)
	}
	return nil
}

// Contains reports whether p (lon, lat) lies inside or on the box.
func (b Bounds) Contains(p orb.Point) bool {
	return p[0] >= b.West && p[0] <= b.East && p[1] >= b.South && p[1] <= b.North
}

// Bound converts b to an orb.Bound.
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b.West, b.South}, Max: orb.Point{b.East, b.North}}
}

// String formats b as "W,S,E,N".
func (b Bounds) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", b.West, b.South, b.East, b.North)
}

// BoundsFromCoords returns the bounding box of a region outline given as
// [lon, lat] pairs, such as the exterior ring of an area-of-interest polygon.
func BoundsFromCoords(coords [][]float64) (Bounds, error) {
	if len(coords) == 0 {
		return Bounds{}, fmt.Errorf("%w: no coordinates", ErrInvalidBounds)
	}
	ring := make(orb.Ring, 0, len(coords))
	for i, c := range coords {
		if len(c) < 2 {
			return Bounds{}, fmt.Errorf("%w: coordinate %d has %d values, want 2", ErrInvalidBounds, i, len(c))
		}
		ring = append(ring, orb.Point{c[0], c[1]})
	}

	bound := ring.Bound()
	b := Bounds{West: bound.Min[0], South: bound.Min[1], East: bound.Max[0], North: bound.Max[1]}
	if err := b.Validate(); err != nil {
		return Bounds{}, err
	}
	return b, nil
}
