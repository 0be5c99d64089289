package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
)

// ContourColor is the highlight used for contour diagnostics.
const ContourColor = "#00FF00"

// lineWidth is the stroke width, in pixels, of every drawn ring.
const lineWidth = 2

// DrawContours draws every ring in a single highlight colour on a copy of the
// raster. Invalid hex colours fall back to ContourColor.
func DrawContours(r *Raster, rings []orb.Ring, hex string) *image.NRGBA {
	c, err := parseHexColor(hex)
	if err != nil {
		c, _ = parseHexColor(ContourColor)
	}
	colors := make([]color.Color, len(rings))
	for i := range colors {
		colors[i] = c
	}
	return drawRings(r.Image(), rings, colors, false)
}

// DrawOverlay draws each ring in its own palette colour on a copy of the
// raster and labels it with its index near the first vertex.
func DrawOverlay(r *Raster, rings []orb.Ring) *image.NRGBA {
	return drawRings(r.Image(), rings, Palette(len(rings)), true)
}

// RenderOverlay draws rings on a copy of src and writes the result as a PNG
// to path. The source image is never modified.
func RenderOverlay(src *Raster, rings []orb.Ring, path string) error {
	return SaveImage(DrawOverlay(src, rings), path)
}

// SaveImage writes img to path, creating the parent directory when needed.
// The format is chosen from the file extension.
func SaveImage(img image.Image, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// Palette returns n visually distinct colours spread around the HSV wheel.
func Palette(n int) []color.Color {
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := 360.0 * float64(i) / float64(n)
		colors[i] = colorful.Hsv(hue, 0.85, 0.95).Clamped()
	}
	return colors
}

func drawRings(src image.Image, rings []orb.Ring, colors []color.Color, labels bool) *image.NRGBA {
	out := imaging.Clone(src)
	for i, ring := range rings {
		if len(ring) == 0 {
			continue
		}
		c := colors[i%len(colors)]
		for j := range ring {
			drawSegment(out, ring[j], ring[(j+1)%len(ring)], c)
		}
		if labels && finite(ring[0]) {
			fg := color.RGBA{255, 255, 255, 255}
			bg := color.RGBA{0, 0, 0, 180}
			drawLabel(out, int(math.Round(ring[0][0]))+3, int(math.Round(ring[0][1]))+3, strconv.Itoa(i), fg, bg)
		}
	}
	return out
}

// drawSegment draws the part of a-b that can touch img. Segments with
// non-finite end points are skipped.
func drawSegment(img *image.NRGBA, a, b orb.Point, c color.Color) {
	if !finite(a) || !finite(b) {
		return
	}
	r := img.Bounds()
	box := orb.Bound{
		Min: orb.Point{float64(r.Min.X - lineWidth), float64(r.Min.Y - lineWidth)},
		Max: orb.Point{float64(r.Max.X + lineWidth), float64(r.Max.Y + lineWidth)},
	}
	for _, ls := range clip.LineString(box, orb.LineString{a, b}) {
		for k := 0; k+1 < len(ls); k++ {
			drawLine(img, ls[k], ls[k+1], c)
		}
	}
}

func finite(p orb.Point) bool {
	return !math.IsNaN(p[0]) && !math.IsNaN(p[1]) && !math.IsInf(p[0], 0) && !math.IsInf(p[1], 0)
}

// drawLine rasterises the segment a-b with Bresenham's algorithm, stamping a
// lineWidth square at every step.
func drawLine(img *image.NRGBA, a, b orb.Point, c color.Color) {
	x0, y0 := int(math.Round(a[0])), int(math.Round(a[1]))
	x1, y1 := int(math.Round(b[0])), int(math.Round(b[1]))

	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy

	for {
		stamp(img, x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func stamp(img *image.NRGBA, x, y int, c color.Color) {
	b := img.Bounds()
	for dy := 0; dy < lineWidth; dy++ {
		for dx := 0; dx < lineWidth; dx++ {
			p := image.Pt(x+dx, y+dy)
			if p.In(b) {
				img.Set(p.X, p.Y, c)
			}
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// parseHexColor parses "#RRGGBB" (the leading # is optional).
func parseHexColor(hex string) (color.Color, error) {
	if hex == "" {
		return nil, fmt.Errorf("empty color string")
	}
	if hex[0] != '#' {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return c, nil
}

// drawLabel draws a simple text label at the given position
// using a 3x5 pixel font for digits.
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.RGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			p := image.Pt(x+dx, y+dy)
			if p.In(bounds) {
				img.Set(p.X, p.Y, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel != '1' {
					continue
				}
				p := image.Pt(cx+col, y+row)
				if p.In(bounds) {
					img.Set(p.X, p.Y, fg)
				}
			}
		}
		cx += charWidth
	}
}
