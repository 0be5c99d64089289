package geo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRings(b Bounds) []Polygon {
	pixel := []orb.Ring{
		{{50, 50}, {100, 50}, {100, 100}, {50, 100}},
		{{13, 7}, {61, 9}, {37, 41}},
	}
	polys := make([]Polygon, len(pixel))
	for i, r := range pixel {
		polys[i] = Polygon{
			Ring:     RingToGeo(r, 197, 211, b),
			AreaPx:   float64(100 * (i + 1)),
			Centroid: PixelToGeo(r[0], 197, 211, b),
		}
	}
	return polys
}

func TestNewFeatureCollection(t *testing.T) {
	polys := sampleRings(galicia())
	fc, dropped := NewFeatureCollection(polys, CollectionOptions{Index: "ndvi"})

	assert.Zero(t, dropped)
	require.Len(t, fc.Features, 2)

	for i, f := range fc.Features {
		assert.Equal(t, i, f.ID)
		assert.Equal(t, i, f.Properties["id"])
		assert.Equal(t, "ndvi", f.Properties["index"])

		poly, ok := f.Geometry.(orb.Polygon)
		require.True(t, ok, "geometry is a polygon")
		require.Len(t, poly, 1)
		ring := poly[0]
		assert.Equal(t, ring[0], ring[len(ring)-1], "ring is closed")
		assert.Len(t, ring, len(polys[i].Ring)+1)
	}
}

func TestNewFeatureCollection_DropsInvalid(t *testing.T) {
	polys := []Polygon{
		{Ring: orb.Ring{{0, 0}, {1, 0}}},                         // too few vertices
		{Ring: orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}}},         // valid
		{Ring: orb.Ring{{0, 0}, {1, 1}, {1, 0}, {0, 1}}},         // bow-tie
		{Ring: orb.Ring{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}, // valid, already closed
	}

	fc, dropped := NewFeatureCollection(polys, CollectionOptions{})
	assert.Equal(t, 2, dropped)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, 0, fc.Features[0].ID)
	assert.Equal(t, 1, fc.Features[1].ID, "ids stay sequential after drops")
	assert.NotContains(t, fc.Features[0].Properties, "index")

	poly := fc.Features[1].Geometry.(orb.Polygon)
	assert.Len(t, poly[0], 5, "an already closed ring is not closed twice")
}

func TestNewFeatureCollection_Empty(t *testing.T) {
	fc, dropped := NewFeatureCollection(nil, CollectionOptions{})
	assert.Zero(t, dropped)

	data, err := fc.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(data))
}

func TestFeatureCollectionFormat(t *testing.T) {
	polys := []Polygon{{Ring: orb.Ring{{-8.5, 43.5}, {-8, 43.5}, {-8, 43}, {-8.5, 43}}}}
	fc, _ := NewFeatureCollection(polys, CollectionOptions{})

	data, err := fc.MarshalJSON()
	require.NoError(t, err)

	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			Type     string `json:"type"`
			ID       int    `json:"id"`
			Geometry struct {
				Type        string         `json:"type"`
				Coordinates [][][2]float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "FeatureCollection", doc.Type)
	require.Len(t, doc.Features, 1)
	f := doc.Features[0]
	assert.Equal(t, "Feature", f.Type)
	assert.Equal(t, 0, f.ID)
	assert.Equal(t, "Polygon", f.Geometry.Type)
	assert.Equal(t, [][][2]float64{{{-8.5, 43.5}, {-8, 43.5}, {-8, 43}, {-8.5, 43}, {-8.5, 43.5}}}, f.Geometry.Coordinates)
	assert.EqualValues(t, 0, f.Properties["id"])
}

func TestWriteAndReadFeatureCollection_RoundTrip(t *testing.T) {
	b := Bounds{West: -9.3, South: 41.8, East: -6.7, North: 43.8}
	fc, _ := NewFeatureCollection(sampleRings(b), CollectionOptions{Index: "rgb"})

	path := filepath.Join(t.TempDir(), "out", "rgb_polygons.geojson")
	require.NoError(t, WriteFeatureCollection(fc, path))

	back, err := ReadFeatureCollection(path)
	require.NoError(t, err)
	require.Len(t, back.Features, len(fc.Features))

	for i := range fc.Features {
		want := fc.Features[i].Geometry.(orb.Polygon)
		got := back.Features[i].Geometry.(orb.Polygon)
		require.Len(t, got[0], len(want[0]))
		for j := range want[0] {
			// Exact equality: no decimal drift through the file.
			assert.Equal(t, want[0][j], got[0][j], "feature %d vertex %d", i, j)
		}
		assert.EqualValues(t, i, back.Features[i].Properties["id"])
	}
}

func TestWriteFeatureCollection_Idempotent(t *testing.T) {
	fc, _ := NewFeatureCollection(sampleRings(galicia()), CollectionOptions{})
	dir := t.TempDir()
	a := filepath.Join(dir, "a.geojson")
	b := filepath.Join(dir, "b.geojson")

	require.NoError(t, WriteFeatureCollection(fc, a))
	require.NoError(t, WriteFeatureCollection(fc, b))

	da, err := os.ReadFile(a)
	require.NoError(t, err)
	db, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestWriteFeatureCollection_Unwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := WriteFeatureCollection(geojson.NewFeatureCollection(), filepath.Join(blocker, "out.geojson"))
	assert.Error(t, err)
}

func TestWriteFeatureCollection_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fc, _ := NewFeatureCollection(sampleRings(galicia()), CollectionOptions{})
	require.NoError(t, WriteFeatureCollection(fc, filepath.Join(dir, "scene.geojson")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "scene.geojson", entries[0].Name())
}

func TestReadFeatureCollection_Errors(t *testing.T) {
	_, err := ReadFeatureCollection(filepath.Join(t.TempDir(), "missing.geojson"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.geojson")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err = ReadFeatureCollection(path)
	assert.Error(t, err)
}

func TestRings(t *testing.T) {
	fc, _ := NewFeatureCollection(sampleRings(galicia()), CollectionOptions{})
	fc.Append(geojson.NewFeature(orb.Point{1, 2}))

	rings := Rings(fc)
	require.Len(t, rings, 2, "non-polygon features are skipped")
	assert.Len(t, rings[0], 4, "rings are returned open")
}
