// Package geometry provides the small set of planar predicates the extraction
// pipeline relies on: shoelace area, centroid, perimeter, vertex
// de-duplication and an explicit ring validity check.
//
// Rings are orb.Ring values stored open (the first vertex is not repeated at
// the end). Functions accept closed rings too; a trailing duplicate of the
// first vertex is ignored.
//
// The same predicates serve pixel space and geographic space. Coordinates are
// treated as planar in both cases.
package geometry
