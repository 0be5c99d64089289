package geo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/sat-polygons/internal/geometry"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Polygon is a feature outline in geographic coordinates.
type Polygon struct {
	// Ring holds (lon, lat) vertices and is open: the first vertex is not
	// repeated at the end.
	Ring orb.Ring

	// AreaPx is the area of the source pixel polygon in square pixels.
	AreaPx float64

	// Centroid is the (lon, lat) centroid of the source pixel polygon.
	Centroid orb.Point
}

// CollectionOptions adds optional properties to every feature.
type CollectionOptions struct {
	// Index names the band combination the features were extracted from
	// (rgb, ndvi, ndwi). Empty omits the property.
	Index string
}

// NewFeatureCollection builds a GeoJSON FeatureCollection from polys.
//
// Each polygon is validated again in geographic space; invalid ones are
// dropped and counted in the second return value. Surviving features get
// sequential ids starting at 0 in input order, both as the feature id and
// as the "id" property. Rings are closed as GeoJSON requires.
func NewFeatureCollection(polys []Polygon, opts CollectionOptions) (*geojson.FeatureCollection, int) {
	fc := geojson.NewFeatureCollection()
	dropped := 0

	for _, p := range polys {
		if err := geometry.Validate(p.Ring); err != nil {
			dropped++
			continue
		}

		id := len(fc.Features)
		f := geojson.NewFeature(orb.Polygon{geometry.Close(p.Ring)})
		f.ID = id
		f.Properties["id"] = id
		f.Properties["area_px"] = p.AreaPx
		f.Properties["centroid_lon"] = p.Centroid[0]
		f.Properties["centroid_lat"] = p.Centroid[1]
		if opts.Index != "" {
			f.Properties["index"] = opts.Index
		}
		fc.Append(f)
	}
	return fc, dropped
}

// Rings returns the open exterior ring of every Polygon feature in fc, in
// feature order. Features with other geometry types are skipped.
func Rings(fc *geojson.FeatureCollection) []orb.Ring {
	var rings []orb.Ring
	for _, f := range fc.Features {
		poly, ok := f.Geometry.(orb.Polygon)
		if !ok || len(poly) == 0 {
			continue
		}
		rings = append(rings, geometry.Open(poly[0]))
	}
	return rings
}

// WriteFeatureCollection writes fc as UTF-8 GeoJSON to path.
//
// The document is written to a temporary file in the target directory and
// renamed into place, so a failed write never leaves partial output behind.
// The parent directory is created when missing.
func WriteFeatureCollection(fc *geojson.FeatureCollection, path string) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode feature collection: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write feature collection: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync feature collection: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close feature collection: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move feature collection into place: %w", err)
	}
	return nil
}

// ReadFeatureCollection loads a GeoJSON FeatureCollection from path.
func ReadFeatureCollection(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feature collection: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode feature collection: %w", err)
	}
	return fc, nil
}
