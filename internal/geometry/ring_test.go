package geometry

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x, y, size float64) orb.Ring {
	return orb.Ring{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}}
}

func TestOpenAndClose(t *testing.T) {
	r := square(0, 0, 10)

	closed := Close(r)
	require.Len(t, closed, 5)
	assert.Equal(t, closed[0], closed[4])

	assert.Len(t, Open(closed), 4)
	assert.Len(t, Open(r), 4, "already open ring is unchanged")
	assert.Len(t, Close(orb.Ring{}), 0)

	closed[0] = orb.Point{99, 99}
	assert.Equal(t, orb.Point{0, 0}, r[0], "Close copies its input")
}

func TestDedupe(t *testing.T) {
	r := orb.Ring{{0, 0}, {0, 0}, {5, 0}, {5, 5}, {5, 5}, {0, 5}, {0, 0}}
	got := Dedupe(r)
	assert.Equal(t, orb.Ring{{0, 0}, {5, 0}, {5, 5}, {0, 5}}, got)
}

func TestDistinctVertices(t *testing.T) {
	tests := []struct {
		name string
		ring orb.Ring
		want int
	}{
		{"empty", orb.Ring{}, 0},
		{"repeated point", orb.Ring{{1, 1}, {1, 1}, {1, 1}}, 1},
		{"closed square", Close(square(0, 0, 1)), 4},
		{"line", orb.Ring{{0, 0}, {1, 0}, {0, 0}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DistinctVertices(tt.ring))
		})
	}
}

func TestArea(t *testing.T) {
	r := square(10, 10, 50)
	assert.InDelta(t, 2500, Area(r), 1e-9)
	assert.InDelta(t, 2500, Area(Close(r)), 1e-9, "closing vertex does not change area")

	reversed := orb.Ring{r[3], r[2], r[1], r[0]}
	assert.InDelta(t, -SignedArea(r), SignedArea(reversed), 1e-9)
	assert.InDelta(t, 2500, Area(reversed), 1e-9)

	assert.Zero(t, Area(orb.Ring{{0, 0}, {1, 1}}))
}

func TestPerimeter(t *testing.T) {
	assert.InDelta(t, 40, Perimeter(square(0, 0, 10)), 1e-9)
	assert.InDelta(t, 12, Perimeter(orb.Ring{{0, 0}, {3, 0}, {3, 4}}), 1e-9)
	assert.Zero(t, Perimeter(orb.Ring{{2, 2}}))
}

func TestCentroid(t *testing.T) {
	c := Centroid(square(10, 20, 4))
	assert.InDelta(t, 12, c[0], 1e-9)
	assert.InDelta(t, 22, c[1], 1e-9)

	// Zero-area rings fall back to the vertex mean.
	c = Centroid(orb.Ring{{0, 0}, {2, 0}, {4, 0}})
	assert.InDelta(t, 2, c[0], 1e-9)
	assert.InDelta(t, 0, c[1], 1e-9)

	assert.Equal(t, orb.Point{}, Centroid(nil))
}
