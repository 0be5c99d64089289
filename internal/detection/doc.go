// Package detection turns binary edge maps into simplified pixel polygons.
//
// # Algorithm Overview
//
// ExtractContours follows a fixed pipeline:
//
//  1. Component labelling: 8-connected edge pixels are grouped in raster
//     order using an explicit stack, so large components cannot overflow the
//     goroutine stack.
//  2. Boundary tracing: the outer boundary of each component is walked with
//     Moore-neighbour tracing and straight runs are compressed to their end
//     points.
//  3. Nesting: a component whose first pixel lies inside an earlier external
//     contour is skipped. Only outermost boundaries become polygons.
//  4. Area filter: contours with a shoelace area below the minimum are
//     dropped.
//  5. Simplification: Douglas-Peucker with a tolerance proportional to the
//     contour perimeter.
//  6. Validation: rings with fewer than three distinct vertices, zero area or
//     a self-intersection are rejected and counted.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Ring vertices are pixel indices. Rings are open: the first vertex is not
// repeated at the end.
//
// # Limitations
//
// Holes are not represented; a ring describes the outer boundary of a
// feature only. Touching features whose edges merge into a single component
// produce a single polygon.
package detection
