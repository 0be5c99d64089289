package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestPixelToGeo(t *testing.T) {
	b := galicia()

	tests := []struct {
		name   string
		pixel  orb.Point
		lonLat orb.Point
	}{
		{"origin is north-west", orb.Point{0, 0}, orb.Point{-9, 44}},
		{"far corner is south-east", orb.Point{200, 200}, orb.Point{-7, 42}},
		{"centre", orb.Point{100, 100}, orb.Point{-8, 43}},
		{"square corner", orb.Point{50, 50}, orb.Point{-8.5, 43.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PixelToGeo(tt.pixel, 200, 200, b)
			assert.InDelta(t, tt.lonLat[0], got[0], 1e-12)
			assert.InDelta(t, tt.lonLat[1], got[1], 1e-12)
		})
	}
}

func TestPixelToGeo_StaysInsideBounds(t *testing.T) {
	b := Bounds{West: 12.25, South: -3.5, East: 12.75, North: -3.1}
	width, height := 37, 23

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := PixelToGeo(orb.Point{float64(x), float64(y)}, width, height, b)
			if !b.Contains(p) {
				t.Fatalf("pixel (%d,%d) mapped outside bounds: %v", x, y, p)
			}
		}
	}
}

func TestGeoToPixel_InvertsPixelToGeo(t *testing.T) {
	b := Bounds{West: -9.3, South: 41.8, East: -6.7, North: 43.8}
	for _, p := range []orb.Point{{0, 0}, {10, 20}, {123.5, 77.25}, {511, 383}} {
		back := GeoToPixel(PixelToGeo(p, 512, 384, b), 512, 384, b)
		assert.InDelta(t, p[0], back[0], 1e-9)
		assert.InDelta(t, p[1], back[1], 1e-9)
	}
}

func TestRingTransforms(t *testing.T) {
	b := galicia()
	ring := orb.Ring{{50, 50}, {100, 50}, {100, 100}, {50, 100}}

	geoRing := RingToGeo(ring, 200, 200, b)
	assert.Len(t, geoRing, 4)
	assert.Equal(t, orb.Point{50, 50}, ring[0], "input must not change")
	assert.InDelta(t, -8.0, geoRing[1][0], 1e-12)
	assert.InDelta(t, 43.5, geoRing[1][1], 1e-12)

	back := RingToPixel(geoRing, 200, 200, b)
	for i := range ring {
		assert.InDelta(t, ring[i][0], back[i][0], 1e-9)
		assert.InDelta(t, ring[i][1], back[i][1], 1e-9)
	}
}
