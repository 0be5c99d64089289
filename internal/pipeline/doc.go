// Package pipeline runs polygon extraction end to end.
//
// A run decodes a raster into a private copy, detects edges, extracts and
// simplifies contours, maps them onto the geographic bounding box and writes
// a GeoJSON FeatureCollection. Optional diagnostic images show the traced
// contours and the final polygons.
//
// # Errors
//
// Failures are typed so callers can react with errors.As / errors.Is:
//   - ErrInvalidParams, geo.ErrInvalidBounds: rejected before any work
//   - *InputError: the raster cannot be decoded or has no pixels
//   - *SerializationError: the output could not be written
//
// An extraction that finds nothing is not an error; Result.Empty is set and
// an empty collection is still written. Diagnostic image failures are
// recorded in the Result and never fail a run.
//
// # Concurrency
//
// Runs share no mutable state. RunBatch executes independent requests in
// parallel with a concurrency limit; one failure never cancels the others.
package pipeline
