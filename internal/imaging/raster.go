package imaging

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/clone"
)

// Raster is an immutable RGBA copy of a source image.
//
// Every extraction run builds its own Raster from the decoded input so that
// later stages never observe mutations of a shared image (cached images in
// particular). The pixel grid is always addressed from (0,0) regardless of the
// source image's bounds origin.
type Raster struct {
	pix *image.RGBA
}

// NewRaster copies img into a new Raster. A nil image yields an empty raster.
func NewRaster(img image.Image) *Raster {
	if img == nil {
		return &Raster{pix: image.NewRGBA(image.Rectangle{})}
	}
	rgba := clone.AsRGBA(img)
	// The copy owns its Pix slice, so re-anchoring only moves the rectangle.
	rgba.Rect = rgba.Rect.Sub(rgba.Rect.Min)
	return &Raster{pix: rgba}
}

// Width returns the raster width in pixels.
func (r *Raster) Width() int { return r.pix.Rect.Dx() }

// Height returns the raster height in pixels.
func (r *Raster) Height() int { return r.pix.Rect.Dy() }

// Empty reports whether the raster has zero area.
func (r *Raster) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Image exposes the raster as a read-only image.Image. Callers that need to
// draw must copy it first (see DrawRings).
func (r *Raster) Image() image.Image { return r.pix }

// RGB returns the 8-bit colour channels at (x, y).
func (r *Raster) RGB(x, y int) (uint8, uint8, uint8) {
	c := r.pix.RGBAAt(x, y)
	return c.R, c.G, c.B
}

// Luminance returns the ITU-R BT.601 luminance at (x, y) scaled to 0-1.
func (r *Raster) Luminance(x, y int) float64 {
	c := r.pix.RGBAAt(x, y)
	return luminance(c)
}

func luminance(c color.RGBA) float64 {
	rf := float64(c.R) / 255.0
	gf := float64(c.G) / 255.0
	bf := float64(c.B) / 255.0
	return 0.299*rf + 0.587*gf + 0.114*bf
}
