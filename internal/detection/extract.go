package detection

import (
	"log/slog"

	"github.com/ironsheep/sat-polygons/internal/geometry"
	"github.com/ironsheep/sat-polygons/internal/imaging"
	"github.com/paulmach/orb"
)

// Options controls contour filtering and simplification.
type Options struct {
	// MinArea is the smallest contour area, in square pixels, that is kept.
	// Contours with a smaller shoelace area are discarded.
	MinArea float64

	// SimplifyToleranceFraction scales the Douglas-Peucker tolerance by the
	// contour's closed perimeter. Zero disables simplification.
	SimplifyToleranceFraction float64

	// Logger receives per-polygon rejection messages at debug level.
	// Nil uses slog.Default().
	Logger *slog.Logger
}

// PixelPolygon is a simplified, validated contour in pixel space.
type PixelPolygon struct {
	// Ring is open: the first vertex is not repeated at the end.
	Ring orb.Ring `json:"ring"`

	// Area is the shoelace area of Ring in square pixels.
	Area float64 `json:"area"`

	// Centroid is the area-weighted centroid of Ring.
	Centroid orb.Point `json:"centroid"`

	// ImageWidth and ImageHeight are the dimensions of the source raster.
	ImageWidth  int `json:"image_width"`
	ImageHeight int `json:"image_height"`
}

// Stats counts what happened to contours during extraction.
type Stats struct {
	// Components is the number of 8-connected edge components.
	Components int `json:"components"`

	// Raw is the number of external contours traced.
	Raw int `json:"raw_contours"`

	// Nested counts components skipped because they lie inside an earlier
	// external contour.
	Nested int `json:"nested"`

	// Filtered counts contours below MinArea.
	Filtered int `json:"filtered"`

	// Rejected counts simplified rings that failed validation.
	Rejected int `json:"rejected"`

	// RejectReasons breaks Rejected down by geometry.Reason label.
	RejectReasons map[string]int `json:"reject_reasons,omitempty"`

	// Kept is the number of polygons returned.
	Kept int `json:"kept"`
}

// ContourResult contains the polygons found in an edge map.
type ContourResult struct {
	// Polygons are in discovery order (raster order of each contour's first
	// pixel).
	Polygons []PixelPolygon `json:"polygons"`

	// Contours are the traced rings that passed the area filter, before
	// simplification. They feed the contour diagnostic image.
	Contours []orb.Ring `json:"-"`

	Stats Stats `json:"stats"`
}

// ExtractContours turns an edge map into simplified pixel polygons.
//
// # Algorithm
//
//  1. Label 8-connected edge components in raster order.
//  2. Trace each component's outer boundary with Moore-neighbour tracing and
//     compress straight runs to their end points.
//  3. Skip components whose first pixel lies inside an earlier external
//     contour, so only outermost boundaries survive.
//  4. Discard contours whose area is below MinArea.
//  5. Simplify with Douglas-Peucker (see Simplify).
//  6. Validate: at least 3 distinct vertices, non-zero area and no
//     self-intersection. Rejected rings are logged and counted.
//
// An empty edge map yields an empty result.
func ExtractContours(edges *imaging.EdgeMap, opts Options) *ContourResult {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	result := &ContourResult{
		Polygons: []PixelPolygon{},
		Stats:    Stats{RejectReasons: map[string]int{}},
	}
	if edges == nil || edges.Width() == 0 || edges.Height() == 0 {
		return result
	}

	components := labelComponents(edges)
	result.Stats.Components = len(components)

	var external externalIndex
	for _, c := range components {
		start := orb.Point{float64(c.start.X), float64(c.start.Y)}
		if external.contains(start) {
			result.Stats.Nested++
			continue
		}

		contour := compressChain(traceBoundary(edges, c.start))
		external.add(contour)
		result.Stats.Raw++

		if geometry.Area(contour) < opts.MinArea {
			result.Stats.Filtered++
			continue
		}
		result.Contours = append(result.Contours, contour)

		ring := geometry.Dedupe(Simplify(contour, opts.SimplifyToleranceFraction))
		if err := geometry.Validate(ring); err != nil {
			reason := geometry.Reason(err)
			result.Stats.Rejected++
			result.Stats.RejectReasons[reason]++
			logger.Debug("polygon rejected",
				"reason", reason,
				"start_x", c.start.X,
				"start_y", c.start.Y,
				"vertices", len(ring))
			continue
		}

		result.Polygons = append(result.Polygons, PixelPolygon{
			Ring:        ring,
			Area:        geometry.Area(ring),
			Centroid:    geometry.Centroid(ring),
			ImageWidth:  edges.Width(),
			ImageHeight: edges.Height(),
		})
	}

	result.Stats.Kept = len(result.Polygons)
	return result
}
