package geometry

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		ring orb.Ring
		want error
	}{
		{"square", square(0, 0, 10), nil},
		{"closed square", Close(square(0, 0, 10)), nil},
		{"triangle", orb.Ring{{0, 0}, {10, 0}, {5, 8}}, nil},
		{"concave", orb.Ring{{0, 0}, {10, 0}, {10, 10}, {5, 3}, {0, 10}}, nil},
		{"two points", orb.Ring{{0, 0}, {1, 1}}, ErrTooFewVertices},
		{"duplicates only", orb.Ring{{0, 0}, {0, 0}, {1, 1}, {1, 1}}, ErrTooFewVertices},
		{"collinear", orb.Ring{{0, 0}, {5, 0}, {10, 0}}, ErrZeroArea},
		{"bowtie", orb.Ring{{0, 0}, {10, 10}, {10, 0}, {0, 10}}, ErrSelfIntersection},
		{"collinear spike", orb.Ring{{0, 0}, {10, 0}, {5, 0}}, ErrZeroArea},
		{"vertical line", orb.Ring{{3, 0}, {3, 4}, {3, 9}, {3, 2}}, ErrZeroArea},
		{"touching vertex", orb.Ring{{0, 0}, {10, 0}, {5, 5}, {10, 10}, {0, 10}, {5, 5}}, ErrSelfIntersection},
		{"spike", orb.Ring{{0, 0}, {10, 0}, {10, 10}, {10, 5}, {0, 10}}, ErrSelfIntersection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.ring)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidate_BowtieReason(t *testing.T) {
	// Both lobes have equal area, so the signed area cancels to zero.
	bowtie := orb.Ring{{0, 0}, {10, 10}, {10, 0}, {0, 10}}
	assert.Equal(t, 0.0, SignedArea(bowtie))

	err := Validate(bowtie)
	assert.ErrorIs(t, err, ErrSelfIntersection)
	assert.Equal(t, "self_intersection", Reason(err))
}

func TestSelfIntersects(t *testing.T) {
	assert.False(t, SelfIntersects(square(0, 0, 1)))
	assert.True(t, SelfIntersects(orb.Ring{{0, 0}, {4, 4}, {4, 0}, {0, 4}}))
	assert.False(t, SelfIntersects(orb.Ring{{0, 0}, {1, 1}}), "too short to intersect")

	// A long ring with a crossing between far-apart edges.
	ring := orb.Ring{}
	for x := 0.0; x <= 100; x += 10 {
		ring = append(ring, orb.Point{x, 0})
	}
	ring = append(ring, orb.Point{100, 50}, orb.Point{50, -20}, orb.Point{0, 50})
	assert.True(t, SelfIntersects(ring))
}

func TestReason(t *testing.T) {
	assert.Equal(t, "", Reason(nil))
	assert.Equal(t, "degenerate", Reason(ErrTooFewVertices))
	assert.Equal(t, "zero_area", Reason(ErrZeroArea))
	assert.Equal(t, "self_intersection", Reason(ErrSelfIntersection))
	assert.Equal(t, "other", Reason(assert.AnError))
}
