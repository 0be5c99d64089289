package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ironsheep/sat-polygons/internal/geo"
	"github.com/ironsheep/sat-polygons/internal/imaging"
	"github.com/ironsheep/sat-polygons/internal/metrics"
	"github.com/ironsheep/sat-polygons/internal/pipeline"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "geo_extract_polygons").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// errMissingBounds is returned when a geo tool receives neither bounds nor
// an area-of-interest outline.
var errMissingBounds = errors.New("bounds or aoi is required")

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		metrics.ToolCalls.WithLabelValues("unknown", "invalid").Inc()
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		metrics.ToolCalls.WithLabelValues(params.Name, "error").Inc()
		s.logger.Warn("tool call failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	metrics.ToolCalls.WithLabelValues(params.Name, "ok").Inc()

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads rasters from cache as needed
//  4. Calls the appropriate imaging/pipeline/geo function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_edge_detect":
		return s.handleImageEdgeDetect(args)

	// Polygon Extraction
	case "geo_extract_polygons":
		return s.handleGeoExtractPolygons(args)
	case "geo_render_overlay":
		return s.handleGeoRenderOverlay(args)
	case "geo_read_features":
		return s.handleGeoReadFeatures(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// resolveBounds prefers explicit bounds over the bounding box of aoi.
func resolveBounds(b *geo.Bounds, aoi [][]float64) (geo.Bounds, error) {
	switch {
	case b != nil:
		if err := b.Validate(); err != nil {
			return geo.Bounds{}, err
		}
		return *b, nil
	case len(aoi) > 0:
		return geo.BoundsFromCoords(aoi)
	default:
		return geo.Bounds{}, errMissingBounds
	}
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.cache.Inspect(a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.cache.Dimensions(a.Path)
}

type imageEdgeDetectArgs struct {
	Path          string `json:"path"`
	ThresholdLow  *int   `json:"threshold_low"`
	ThresholdHigh *int   `json:"threshold_high"`
}

// thresholds returns the requested thresholds, 50/150 when omitted. An
// explicit 0 is honoured.
func (a imageEdgeDetectArgs) thresholds() (low, high int) {
	low, high = 50, 150
	if a.ThresholdLow != nil {
		low = *a.ThresholdLow
	}
	if a.ThresholdHigh != nil {
		high = *a.ThresholdHigh
	}
	return low, high
}

func (s *Server) handleImageEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a imageEdgeDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	low, high := a.thresholds()
	thresholds := pipeline.Params{LowThreshold: low, HighThreshold: high}
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeDetect(img, low, high)
}

// === Polygon Extraction Handlers ===

type geoExtractArgs struct {
	Path    string      `json:"path"`
	Bounds  *geo.Bounds `json:"bounds"`
	AOI     [][]float64 `json:"aoi"`
	Profile string      `json:"profile"`

	LowThreshold              *int     `json:"low_threshold"`
	HighThreshold             *int     `json:"high_threshold"`
	MinArea                   *float64 `json:"min_area"`
	SimplifyToleranceFraction *float64 `json:"simplify_tolerance_fraction"`

	OutputPath   string `json:"output_path"`
	OverlayPath  string `json:"overlay_path"`
	ContoursPath string `json:"contours_path"`
}

// params resolves the profile and applies the explicit overrides.
func (a geoExtractArgs) params(profiles pipeline.Profiles) (pipeline.Params, error) {
	p, err := profiles.Lookup(a.Profile)
	if err != nil {
		return pipeline.Params{}, err
	}
	if a.LowThreshold != nil {
		p.LowThreshold = *a.LowThreshold
	}
	if a.HighThreshold != nil {
		p.HighThreshold = *a.HighThreshold
	}
	if a.MinArea != nil {
		p.MinArea = *a.MinArea
	}
	if a.SimplifyToleranceFraction != nil {
		p.SimplifyToleranceFraction = *a.SimplifyToleranceFraction
	}
	return p, nil
}

// geoExtractResult is the pipeline result plus the parameters that produced
// it. FeatureCollection is only filled when no output path was given.
type geoExtractResult struct {
	*pipeline.Result
	Profile           string                     `json:"profile"`
	Params            pipeline.Params            `json:"params"`
	Bounds            geo.Bounds                 `json:"bounds"`
	FeatureCollection *geojson.FeatureCollection `json:"feature_collection,omitempty"`
}

func (s *Server) handleGeoExtractPolygons(args json.RawMessage) (interface{}, error) {
	var a geoExtractArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Profile == "" {
		a.Profile = pipeline.ProfileRGB
	}
	params, err := a.params(s.profiles)
	if err != nil {
		return nil, err
	}
	bounds, err := resolveBounds(a.Bounds, a.AOI)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, &pipeline.InputError{Path: a.Path, Err: err}
	}

	base := filepath.Base(a.Path)
	res, err := s.runner.Run(s.ctx, pipeline.Request{
		Name:         strings.TrimSuffix(base, filepath.Ext(base)),
		Profile:      strings.ToLower(a.Profile),
		Image:        img,
		Bounds:       bounds,
		Params:       params,
		OutputPath:   a.OutputPath,
		OverlayPath:  a.OverlayPath,
		ContoursPath: a.ContoursPath,
	})
	if err != nil {
		return nil, err
	}

	out := &geoExtractResult{
		Result:  res,
		Profile: strings.ToLower(a.Profile),
		Params:  params,
		Bounds:  bounds,
	}
	if a.OutputPath == "" {
		out.FeatureCollection = res.Collection
	}
	return out, nil
}

type geoRenderOverlayArgs struct {
	ImagePath    string      `json:"image_path"`
	FeaturesPath string      `json:"features_path"`
	Bounds       *geo.Bounds `json:"bounds"`
	AOI          [][]float64 `json:"aoi"`
	OutputPath   string      `json:"output_path"`
}

type geoRenderOverlayResult struct {
	ImagePath    string `json:"image_path"`
	FeaturesPath string `json:"features_path"`
	OutputPath   string `json:"output_path"`
}

func (s *Server) handleGeoRenderOverlay(args json.RawMessage) (interface{}, error) {
	var a geoRenderOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.OutputPath == "" {
		return nil, errors.New("output_path is required")
	}
	bounds, err := resolveBounds(a.Bounds, a.AOI)
	if err != nil {
		return nil, err
	}
	if err := pipeline.RenderOverlayFiles(s.ctx, a.ImagePath, a.FeaturesPath, bounds, a.OutputPath); err != nil {
		return nil, err
	}
	return &geoRenderOverlayResult{
		ImagePath:    a.ImagePath,
		FeaturesPath: a.FeaturesPath,
		OutputPath:   a.OutputPath,
	}, nil
}

type geoReadFeaturesArgs struct {
	Path string `json:"path"`
}

// FeatureSummary describes one feature of a stored collection.
type FeatureSummary struct {
	ID       interface{} `json:"id"`
	AreaPx   float64     `json:"area_px"`
	Centroid [2]float64  `json:"centroid"`
	Vertices int         `json:"vertices"`
}

// FeaturesSummary describes a stored feature collection.
type FeaturesSummary struct {
	Path     string           `json:"path"`
	Count    int              `json:"count"`
	Index    string           `json:"index,omitempty"`
	Bounds   *geo.Bounds      `json:"bounds,omitempty"`
	Features []FeatureSummary `json:"features"`
}

func (s *Server) handleGeoReadFeatures(args json.RawMessage) (interface{}, error) {
	var a geoReadFeaturesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	fc, err := geo.ReadFeatureCollection(a.Path)
	if err != nil {
		return nil, err
	}
	return summarizeFeatures(a.Path, fc), nil
}

func summarizeFeatures(path string, fc *geojson.FeatureCollection) *FeaturesSummary {
	out := &FeaturesSummary{
		Path:     path,
		Count:    len(fc.Features),
		Features: make([]FeatureSummary, 0, len(fc.Features)),
	}

	var (
		total orb.Bound
		seen  bool
	)
	for _, f := range fc.Features {
		vertices := 0
		if poly, ok := f.Geometry.(orb.Polygon); ok && len(poly) > 0 {
			// Rings are stored closed.
			vertices = len(poly[0]) - 1
		}
		if out.Index == "" {
			out.Index = f.Properties.MustString("index", "")
		}
		out.Features = append(out.Features, FeatureSummary{
			ID:     f.ID,
			AreaPx: f.Properties.MustFloat64("area_px", 0),
			Centroid: [2]float64{
				f.Properties.MustFloat64("centroid_lon", 0),
				f.Properties.MustFloat64("centroid_lat", 0),
			},
			Vertices: vertices,
		})

		if f.Geometry == nil {
			continue
		}
		if !seen {
			total, seen = f.Geometry.Bound(), true
		} else {
			total = total.Union(f.Geometry.Bound())
		}
	}

	if seen {
		out.Bounds = &geo.Bounds{
			West:  total.Min[0],
			South: total.Min[1],
			East:  total.Max[0],
			North: total.Max[1],
		}
	}
	return out
}
