package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/ironsheep/sat-polygons/internal/detection"
	"github.com/ironsheep/sat-polygons/internal/geo"
	"github.com/ironsheep/sat-polygons/internal/imaging"
	"github.com/ironsheep/sat-polygons/internal/metrics"
	"github.com/paulmach/orb/geojson"
)

// ErrEmptyRaster is wrapped by an InputError when the raster has no pixels.
var ErrEmptyRaster = errors.New("raster has zero width or height")

// Stage names, used in logs, metrics and cancellation errors.
const (
	StageDecode    = "decode"
	StageEdges     = "edges"
	StageContours  = "contours"
	StageTransform = "transform"
	StageSerialize = "serialize"
	StageOverlay   = "overlay"
)

// Request describes one extraction run.
type Request struct {
	// Name labels the run in logs and batch results.
	Name string `json:"name"`

	// Profile is recorded as the "index" property of every feature and used
	// as the metrics label. It does not select parameters: callers resolve
	// Params themselves (see Profiles.Lookup).
	Profile string `json:"profile"`

	// InputPath is the raster to decode. When empty, Image is used instead.
	InputPath string `json:"input_path,omitempty"`

	// Image is an already decoded raster.
	Image image.Image `json:"-"`

	Bounds geo.Bounds `json:"bounds"`
	Params Params     `json:"params"`

	// OutputPath receives the GeoJSON document. Empty skips writing, which is
	// useful when the caller only wants Result.Collection.
	OutputPath string `json:"output_path,omitempty"`

	// OverlayPath and ContoursPath optionally receive diagnostic PNGs.
	OverlayPath  string `json:"overlay_path,omitempty"`
	ContoursPath string `json:"contours_path,omitempty"`
}

// Result describes a completed run.
type Result struct {
	Name       string `json:"name"`
	OutputPath string `json:"output_path,omitempty"`

	Width      int `json:"width"`
	Height     int `json:"height"`
	EdgePixels int `json:"edge_pixels"`

	// Stats are the contour extraction counters.
	Stats detection.Stats `json:"stats"`

	// GeoDropped counts polygons that failed validation after the pixel to
	// geographic transform.
	GeoDropped int `json:"geo_dropped"`

	// Features is the number of features in Collection.
	Features int `json:"features"`

	// Empty is set when no polygon survived. This is not an error.
	Empty bool `json:"empty"`

	OverlayPath   string `json:"overlay_path,omitempty"`
	OverlayError  string `json:"overlay_error,omitempty"`
	ContoursPath  string `json:"contours_path,omitempty"`
	ContoursError string `json:"contours_error,omitempty"`

	DurationMS int64 `json:"duration_ms"`

	Collection *geojson.FeatureCollection `json:"-"`
}

// Runner executes extraction runs. A Runner holds no per-run state and may be
// shared by concurrent runs.
type Runner struct {
	logger *slog.Logger
}

// NewRunner creates a Runner logging to logger. Nil uses slog.Default().
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

// Run executes one extraction: decode, edge detection, contour extraction,
// pixel to geographic transform, serialization and optional diagnostics.
//
// # Errors
//
//   - ErrInvalidParams or geo.ErrInvalidBounds: rejected before any stage
//   - *InputError: the raster cannot be decoded or has no pixels
//   - *SerializationError: the GeoJSON document could not be written
//   - context errors: ctx was cancelled; checked before every stage
//
// An empty result is not an error. Diagnostic image failures are logged and
// reported in the Result without failing the run.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	profile := req.Profile
	if profile == "" {
		profile = "custom"
	}
	logger := r.logger.With("run", req.Name, "profile", profile)

	res, err := r.run(ctx, req, logger)

	outcome := metrics.OutcomeOK
	switch {
	case err == nil && res.Empty:
		outcome = metrics.OutcomeEmpty
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		outcome = metrics.OutcomeCancel
	case errors.Is(err, ErrInvalidParams), errors.Is(err, geo.ErrInvalidBounds):
		outcome = metrics.OutcomeInvalid
	case err != nil:
		outcome = metrics.OutcomeError
	}
	metrics.RunsTotal.WithLabelValues(profile, outcome).Inc()

	if err != nil {
		logger.Error("extraction failed", "error", err)
		return nil, err
	}

	res.DurationMS = time.Since(start).Milliseconds()
	logger.Info("extraction finished",
		"components", res.Stats.Components,
		"raw_contours", res.Stats.Raw,
		"filtered", res.Stats.Filtered,
		"rejected", res.Stats.Rejected+res.GeoDropped,
		"features", res.Features,
		"output", res.OutputPath,
		"duration_ms", res.DurationMS)
	return res, nil
}

func (r *Runner) run(ctx context.Context, req Request, logger *slog.Logger) (*Result, error) {
	if err := req.Params.Validate(); err != nil {
		return nil, err
	}
	if err := req.Bounds.Validate(); err != nil {
		return nil, err
	}

	// Decode
	if err := checkpoint(ctx, StageDecode); err != nil {
		return nil, err
	}
	t := time.Now()
	raster, err := decode(req)
	if err != nil {
		return nil, err
	}
	metrics.ObserveStage(StageDecode, t)
	logger.Debug("raster decoded", "width", raster.Width(), "height", raster.Height())

	// Edges
	if err := checkpoint(ctx, StageEdges); err != nil {
		return nil, err
	}
	t = time.Now()
	edges := imaging.DetectEdges(raster, req.Params.LowThreshold, req.Params.HighThreshold)
	metrics.ObserveStage(StageEdges, t)

	// Contours
	if err := checkpoint(ctx, StageContours); err != nil {
		return nil, err
	}
	t = time.Now()
	contours := detection.ExtractContours(edges, detection.Options{
		MinArea:                   req.Params.MinArea,
		SimplifyToleranceFraction: req.Params.SimplifyToleranceFraction,
		Logger:                    logger,
	})
	metrics.ObserveStage(StageContours, t)

	// Transform
	if err := checkpoint(ctx, StageTransform); err != nil {
		return nil, err
	}
	t = time.Now()
	width, height := raster.Width(), raster.Height()
	polys := make([]geo.Polygon, 0, len(contours.Polygons))
	for _, p := range contours.Polygons {
		polys = append(polys, geo.Polygon{
			Ring:     geo.RingToGeo(p.Ring, width, height, req.Bounds),
			AreaPx:   p.Area,
			Centroid: geo.PixelToGeo(p.Centroid, width, height, req.Bounds),
		})
	}
	fc, dropped := geo.NewFeatureCollection(polys, geo.CollectionOptions{Index: req.Profile})
	metrics.ObserveStage(StageTransform, t)

	res := &Result{
		Name:       req.Name,
		Width:      width,
		Height:     height,
		EdgePixels: edges.Count(),
		Stats:      contours.Stats,
		GeoDropped: dropped,
		Features:   len(fc.Features),
		Empty:      len(fc.Features) == 0,
		Collection: fc,
	}
	recordContourMetrics(req.Profile, res)
	if dropped > 0 {
		logger.Debug("polygons dropped after transform", "count", dropped)
	}
	if res.Empty {
		logger.Warn("no polygons extracted",
			"edge_pixels", res.EdgePixels,
			"raw_contours", res.Stats.Raw,
			"filtered", res.Stats.Filtered)
	}

	// Serialize
	if req.OutputPath != "" {
		if err := checkpoint(ctx, StageSerialize); err != nil {
			return nil, err
		}
		t = time.Now()
		if err := geo.WriteFeatureCollection(fc, req.OutputPath); err != nil {
			return nil, &SerializationError{Path: req.OutputPath, Err: err}
		}
		metrics.ObserveStage(StageSerialize, t)
		res.OutputPath = req.OutputPath
	}

	// Diagnostics never fail the run.
	if req.ContoursPath != "" {
		img := imaging.DrawContours(raster, contours.Contours, imaging.ContourColor)
		if err := imaging.SaveImage(img, req.ContoursPath); err != nil {
			metrics.DiagnosticFailures.WithLabelValues("contours").Inc()
			logger.Warn("contour image failed", "path", req.ContoursPath, "error", err)
			res.ContoursError = err.Error()
		} else {
			res.ContoursPath = req.ContoursPath
		}
	}
	if req.OverlayPath != "" {
		t = time.Now()
		if err := RenderOverlay(raster, fc, req.Bounds, req.OverlayPath); err != nil {
			metrics.DiagnosticFailures.WithLabelValues("overlay").Inc()
			logger.Warn("overlay failed", "path", req.OverlayPath, "error", err)
			res.OverlayError = err.Error()
		} else {
			metrics.ObserveStage(StageOverlay, t)
			res.OverlayPath = req.OverlayPath
		}
	}

	return res, nil
}

// decode produces the run's private raster.
func decode(req Request) (*imaging.Raster, error) {
	img := req.Image
	if req.InputPath != "" {
		loaded, err := imaging.LoadFile(req.InputPath)
		if err != nil {
			return nil, &InputError{Path: req.InputPath, Err: err}
		}
		img = loaded
	}
	if img == nil {
		return nil, &InputError{Err: errors.New("no input path or image given")}
	}

	raster := imaging.NewRaster(img)
	if raster.Empty() {
		return nil, &InputError{Path: req.InputPath, Err: ErrEmptyRaster}
	}
	return raster, nil
}

func checkpoint(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("extraction stopped before %s: %w", stage, err)
	}
	return nil
}

func recordContourMetrics(profile string, res *Result) {
	if profile == "" {
		profile = "custom"
	}
	metrics.PolygonsKept.WithLabelValues(profile).Add(float64(res.Features))
	metrics.ContoursFiltered.WithLabelValues(profile).Add(float64(res.Stats.Filtered))
	for reason, n := range res.Stats.RejectReasons {
		metrics.PolygonsRejected.WithLabelValues(reason).Add(float64(n))
	}
	if res.GeoDropped > 0 {
		metrics.PolygonsRejected.WithLabelValues("after_transform").Add(float64(res.GeoDropped))
	}
}
