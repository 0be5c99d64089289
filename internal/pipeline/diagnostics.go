package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ironsheep/sat-polygons/internal/geo"
	"github.com/ironsheep/sat-polygons/internal/imaging"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// RenderOverlay maps every polygon of fc back into the raster's pixel space
// and draws it, one palette colour per feature, on a copy of raster saved to
// path. raster and fc are not modified.
func RenderOverlay(raster *imaging.Raster, fc *geojson.FeatureCollection, b geo.Bounds, path string) error {
	if raster.Empty() {
		return &InputError{Err: ErrEmptyRaster}
	}
	rings := geo.Rings(fc)
	pixel := make([]orb.Ring, len(rings))
	for i, r := range rings {
		pixel[i] = geo.RingToPixel(r, raster.Width(), raster.Height(), b)
	}
	if err := imaging.RenderOverlay(raster, pixel, path); err != nil {
		return fmt.Errorf("failed to render overlay: %w", err)
	}
	return nil
}

// RenderOverlayFiles draws a stored feature collection on top of the raster
// it was extracted from.
func RenderOverlayFiles(ctx context.Context, imagePath, featuresPath string, b geo.Bounds, outPath string) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := checkpoint(ctx, StageDecode); err != nil {
		return err
	}
	img, err := imaging.LoadFile(imagePath)
	if err != nil {
		return &InputError{Path: imagePath, Err: err}
	}
	fc, err := geo.ReadFeatureCollection(featuresPath)
	if err != nil {
		return err
	}
	if err := checkpoint(ctx, StageOverlay); err != nil {
		return err
	}
	return RenderOverlay(imaging.NewRaster(img), fc, b, outPath)
}

// FeaturesFileName is the GeoJSON file name for a named run.
func FeaturesFileName(name string) string {
	return name + "_polygons.geojson"
}

// OverlayFileName is the overlay image file name for a named run.
func OverlayFileName(name string) string {
	return name + "_visualization.png"
}

// ContoursFileName is the contour diagnostic file name for an input raster.
func ContoursFileName(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_contours.png"
}

// WithOutputDir fills in any empty output paths of req with the standard
// file names inside dir. Diagnostics are only named when requested.
func (req Request) WithOutputDir(dir string, overlay, contours bool) Request {
	name := req.Name
	if name == "" {
		name = req.Profile
	}
	if name == "" && req.InputPath != "" {
		base := filepath.Base(req.InputPath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if name == "" {
		name = "scene"
	}

	if req.OutputPath == "" {
		req.OutputPath = filepath.Join(dir, FeaturesFileName(name))
	}
	if overlay && req.OverlayPath == "" {
		req.OverlayPath = filepath.Join(dir, OverlayFileName(name))
	}
	if contours && req.ContoursPath == "" {
		source := req.InputPath
		if source == "" {
			source = name
		}
		req.ContoursPath = filepath.Join(dir, ContoursFileName(source))
	}
	return req
}
