// Package server implements the MCP (Model Context Protocol) server that
// exposes polygon extraction as tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs go to the configured slog logger, never to stdout.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Raster inspection:
//   - image_load: Load a raster and get metadata
//   - image_dimensions: Get width and height
//   - image_edge_detect: Canny edge map, for tuning thresholds
//
// Polygon extraction:
//   - geo_extract_polygons: Raster to georeferenced GeoJSON polygons
//   - geo_render_overlay: Draw a stored collection over its raster
//   - geo_read_features: Summarize a stored collection
//
// Geographic tools accept either explicit bounds (west, south, east, north)
// or an area-of-interest outline whose bounding box is used.
//
// # Parameters
//
// geo_extract_polygons starts from a named profile (rgb, ndvi, ndwi or one
// from the configuration file) and applies any explicit overrides. The
// parameters actually used are echoed in the result.
//
// # Image Caching
//
// Decoded rasters are cached by absolute path and reused across tool calls
// until the file's size or modification time changes.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// Every tool call is counted in the satpoly_mcp_tool_calls_total metric.
//
// # Usage
//
//	srv := server.New(server.WithLogger(logger), server.WithProfiles(cfg.ProfileSet()))
//	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil {
//	    logger.Error("server stopped", "error", err)
//	}
package server
