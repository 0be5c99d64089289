// Package geo maps pixel polygons onto geographic coordinates and
// serializes them as GeoJSON.
//
// The pixel to (lon, lat) mapping is a plain linear interpolation over a
// Bounds rectangle with row 0 at the northern edge. No map projection is
// applied.
//
// Feature collections are built with github.com/paulmach/orb/geojson. Floats
// are encoded with the shortest decimal form that parses back to the same
// float64, so reading a written file yields bit-identical coordinates.
package geo
