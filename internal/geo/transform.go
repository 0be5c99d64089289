package geo

import "github.com/paulmach/orb"

// PixelToGeo maps pixel coordinates to (lon, lat) by linear interpolation
// over the bounding box:
//
//	lon = west  + (east  - west)  * x / width
//	lat = north - (north - south) * y / height
//
// This ignores the map projection of the source imagery. It is accurate for
// small areas and degrades towards the poles and for large extents.
//
// width and height must be positive.
func PixelToGeo(p orb.Point, width, height int, b Bounds) orb.Point {
	lon := b.West + (b.East-b.West)*(p[0]/float64(width))
	lat := b.North - (b.North-b.South)*(p[1]/float64(height))
	return orb.Point{lon, lat}
}

// GeoToPixel is the inverse of PixelToGeo. The result may carry fractional
// or out-of-raster coordinates.
func GeoToPixel(p orb.Point, width, height int, b Bounds) orb.Point {
	x := (p[0] - b.West) / (b.East - b.West) * float64(width)
	y := (b.North - p[1]) / (b.North - b.South) * float64(height)
	return orb.Point{x, y}
}

// RingToGeo transforms every vertex of a pixel ring. The input is not
// modified.
func RingToGeo(r orb.Ring, width, height int, b Bounds) orb.Ring {
	out := make(orb.Ring, len(r))
	for i, p := range r {
		out[i] = PixelToGeo(p, width, height, b)
	}
	return out
}

// RingToPixel transforms every vertex of a geographic ring back to pixel
// space.
func RingToPixel(r orb.Ring, width, height int, b Bounds) orb.Ring {
	out := make(orb.Ring, len(r))
	for i, p := range r {
		out[i] = GeoToPixel(p, width, height, b)
	}
	return out
}
