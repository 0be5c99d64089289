// Package imaging provides the raster side of polygon extraction.
//
// It decodes satellite exports (PNG, JPEG, GIF, TIFF, BMP), wraps them in an
// immutable Raster, runs Canny edge detection and renders diagnostic images
// (contour highlights and per-feature overlays). All operations use a
// coordinate system where (0,0) is at the top-left corner, X increases
// rightward, and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel, the northern edge of a scene)
//
// Rings passed to the drawing functions are in the same pixel space and may
// carry fractional coordinates; they are rounded to the nearest pixel.
//
// # Thread Safety
//
// The RasterCache type is safe for concurrent use. A Raster is never mutated
// after construction, so it may be shared by readers. EdgeMap values are
// owned by the goroutine that produced them.
//
// # Error Handling
//
// Edge detection never fails: a zero-area raster yields an empty map.
// Errors are returned for file I/O and encoding failures only.
//
// # Performance Considerations
//
// RasterCache holds every raster it has decoded for the life of the cache.
// Extraction runs decode through LoadFile instead so batch memory is released
// when each run ends.
package imaging
