package pipeline

import "fmt"

// InputError reports that the raster could not be used: it failed to decode
// or has no pixels. Nothing is written when a run fails this way.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid input raster: %v", e.Err)
	}
	return fmt.Sprintf("invalid input raster %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// SerializationError reports that the feature collection could not be
// written to its destination.
type SerializationError struct {
	Path string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("failed to write features to %s: %v", e.Path, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }
