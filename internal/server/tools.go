package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// boundsSchema describes the geographic rectangle covered by a raster.
func boundsSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Geographic bounds of the raster in degrees. Row 0 is the north edge, column 0 the west edge.",
		"properties": map[string]interface{}{
			"west":  map[string]interface{}{"type": "number", "description": "Western longitude"},
			"south": map[string]interface{}{"type": "number", "description": "Southern latitude"},
			"east":  map[string]interface{}{"type": "number", "description": "Eastern longitude"},
			"north": map[string]interface{}{"type": "number", "description": "Northern latitude"},
		},
		"required": []string{"west", "south", "east", "north"},
	}
}

// aoiSchema describes an area-of-interest outline whose bounding box is used
// when explicit bounds are not given.
func aoiSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": "Alternative to bounds: outline of the area of interest as [lon, lat] pairs. Its bounding box is used.",
		"items": map[string]interface{}{
			"type":     "array",
			"items":    map[string]interface{}{"type": "number"},
			"minItems": 2,
			"maxItems": 2,
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load a raster file and return its dimensions and format. The decoded image is cached for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the raster file (PNG, JPEG, GIF, TIFF or BMP)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of a raster file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the raster file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_edge_detect",
			Description: "Run Canny edge detection and return the binary edge map as base64-encoded PNG. Useful for tuning thresholds before extracting polygons.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the raster file",
					},
					"threshold_low": map[string]interface{}{
						"type":        "integer",
						"description": "Lower hysteresis threshold, 0-255. Default 50; an explicit 0 is honoured",
						"default":     50,
					},
					"threshold_high": map[string]interface{}{
						"type":        "integer",
						"description": "Upper hysteresis threshold, 0-255. Default 150",
						"default":     150,
					},
				},
				"required": []string{"path"},
			},
		},

		// Polygon Extraction
		{
			Name:        "geo_extract_polygons",
			Description: "Extract polygon boundaries from a raster and georeference them into a GeoJSON FeatureCollection. Parameters default to the selected profile; any of them may be overridden.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the raster file",
					},
					"bounds": boundsSchema(),
					"aoi":    aoiSchema(),
					"profile": map[string]interface{}{
						"type":        "string",
						"description": "Parameter profile: rgb, ndvi, ndwi or a profile from the configuration file. Default rgb",
						"default":     "rgb",
					},
					"low_threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Override the profile's lower hysteresis threshold (0-255)",
					},
					"high_threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Override the profile's upper hysteresis threshold (0-255)",
					},
					"min_area": map[string]interface{}{
						"type":        "number",
						"description": "Override the profile's minimum contour area in square pixels",
					},
					"simplify_tolerance_fraction": map[string]interface{}{
						"type":        "number",
						"description": "Override the profile's simplification tolerance as a fraction of contour perimeter",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path for the GeoJSON file. When omitted the collection is returned inline",
					},
					"overlay_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path for a PNG showing the polygons drawn over the raster",
					},
					"contours_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path for a PNG showing the raw contours before simplification",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "geo_render_overlay",
			Description: "Draw the polygons of a stored GeoJSON file on top of the raster they were extracted from and save the result as PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the raster file",
					},
					"features_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the GeoJSON FeatureCollection",
					},
					"bounds": boundsSchema(),
					"aoi":    aoiSchema(),
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path for the PNG overlay",
					},
				},
				"required": []string{"image_path", "features_path", "output_path"},
			},
		},
		{
			Name:        "geo_read_features",
			Description: "Summarize a GeoJSON FeatureCollection: feature count, overall bounding box and per-feature area, centroid and vertex count.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the GeoJSON file",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
