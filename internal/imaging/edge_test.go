package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func TestEdgeDetect(t *testing.T) {
	// Create an image with a clear edge (black rectangle on white background)
	img := createEdgeTestImage(100, 100)

	result, err := EdgeDetect(img, 50, 150)
	if err != nil {
		t.Fatalf("EdgeDetect failed: %v", err)
	}

	if result.Width != 100 || result.Height != 100 {
		t.Errorf("dimensions: got %dx%d, want 100x100", result.Width, result.Height)
	}

	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}

	if result.EdgePixels == 0 {
		t.Error("expected edge pixels around the rectangle")
	}

	// Verify base64 can be decoded
	decoded, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}

	// Verify it's a valid PNG
	edgeImg, err := png.Decode(strings.NewReader(string(decoded)))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}

	if edgeImg.Bounds().Dx() != 100 || edgeImg.Bounds().Dy() != 100 {
		t.Errorf("decoded image dimensions: got %dx%d, want 100x100",
			edgeImg.Bounds().Dx(), edgeImg.Bounds().Dy())
	}
}

func TestDetectEdges_DifferentThresholds(t *testing.T) {
	img := createEdgeTestImage(50, 50)

	tests := []struct {
		name      string
		low, high int
	}{
		{"index thresholds", 50, 150},
		{"true colour thresholds", 100, 200},
		{"low thresholds", 10, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges := DetectEdges(NewRaster(img), tt.low, tt.high)
			if edges.Count() == 0 {
				t.Error("no edges found for a high-contrast rectangle")
			}
		})
	}
}

func TestDetectEdges_HigherThresholdsFindFewerEdges(t *testing.T) {
	// A moderate step: strong enough for index thresholds only.
	img := image.NewRGBA(image.Rect(0, 0, 60, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			v := uint8(90)
			if x >= 30 {
				v = 170
			}
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}

	sensitive := DetectEdges(NewRaster(img), 50, 150).Count()
	strict := DetectEdges(NewRaster(img), 250, 255).Count()

	if sensitive == 0 {
		t.Fatal("index thresholds should detect the step")
	}
	if strict > sensitive {
		t.Errorf("strict thresholds found %d edges, sensitive %d", strict, sensitive)
	}
}

func TestDetectEdges_UniformImage(t *testing.T) {
	img := createInMemoryImage(50, 50, color.RGBA{128, 128, 128, 255})

	edges := DetectEdges(NewRaster(img), 50, 150)
	if edges.Count() != 0 {
		t.Errorf("uniform image: got %d edge pixels, want 0", edges.Count())
	}
}

func TestDetectEdges_StrongEdge(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if x < 50 {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}

	edges := DetectEdges(NewRaster(img), 100, 200)

	edgeFound := false
	for x := 48; x <= 52; x++ {
		if edges.At(x, 50) {
			edgeFound = true
			break
		}
	}
	if !edgeFound {
		t.Error("strong vertical edge was not detected")
	}

	// Far from the step nothing should fire.
	if edges.At(10, 50) || edges.At(90, 50) {
		t.Error("edge reported in a flat area")
	}
}

func TestDetectEdges_ZeroArea(t *testing.T) {
	edges := DetectEdges(NewRaster(image.NewRGBA(image.Rect(0, 0, 0, 0))), 50, 150)
	if edges.Width() != 0 || edges.Height() != 0 || edges.Count() != 0 {
		t.Errorf("zero-area raster: got %dx%d with %d edges", edges.Width(), edges.Height(), edges.Count())
	}

	edges = DetectEdges(NewRaster(nil), 50, 150)
	if edges.Count() != 0 {
		t.Error("nil image should produce an empty map")
	}
}

func TestDetectEdges_SinglePixel(t *testing.T) {
	img := createInMemoryImage(1, 1, color.White)
	edges := DetectEdges(NewRaster(img), 50, 150)
	if edges.Width() != 1 || edges.Height() != 1 {
		t.Fatalf("dimensions: got %dx%d, want 1x1", edges.Width(), edges.Height())
	}
	if edges.Count() != 0 {
		t.Error("a single pixel has no edges")
	}
}

func TestDetectEdges_SmallImage(t *testing.T) {
	img := createInMemoryImage(5, 5, color.RGBA{128, 128, 128, 255})

	edges := DetectEdges(NewRaster(img), 50, 150)
	if edges.Width() != 5 || edges.Height() != 5 {
		t.Errorf("dimensions: got %dx%d, want 5x5", edges.Width(), edges.Height())
	}
}

func TestDetectEdges_Deterministic(t *testing.T) {
	img := createEdgeTestImage(64, 64)
	a := DetectEdges(NewRaster(img), 100, 200)
	b := DetectEdges(NewRaster(img), 100, 200)

	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if a.At(x, y) != b.At(x, y) {
				t.Fatalf("pixel (%d,%d) differs between runs", x, y)
			}
		}
	}
}

func TestEdgeMap(t *testing.T) {
	m := NewEdgeMap(4, 3)
	m.Set(1, 2, true)
	m.Set(10, 10, true) // ignored

	if !m.At(1, 2) {
		t.Error("At(1,2) should be set")
	}
	if m.At(-1, 0) || m.At(4, 0) {
		t.Error("out-of-range coordinates must not be edges")
	}
	if m.Count() != 1 {
		t.Errorf("Count: got %d, want 1", m.Count())
	}

	gray := m.Gray()
	if gray.GrayAt(1, 2).Y != 255 || gray.GrayAt(0, 0).Y != 0 {
		t.Error("Gray rendering mismatch")
	}

	if NewEdgeMap(-3, 2).Width() != 0 {
		t.Error("negative width should clamp to zero")
	}
}

func TestHysteresis_WeakPixelsNeedStrongNeighbour(t *testing.T) {
	// One strong pixel connected to a chain of weak pixels, plus an isolated
	// weak pixel.
	suppressed := make([][]float64, 3)
	for y := range suppressed {
		suppressed[y] = make([]float64, 8)
	}
	suppressed[1][1] = 0.9
	suppressed[1][2] = 0.3
	suppressed[1][3] = 0.3
	suppressed[1][4] = 0.3
	suppressed[1][7] = 0.3

	out := NewEdgeMap(8, 3)
	hysteresis(out, suppressed, 0.2, 0.8)

	for x := 1; x <= 4; x++ {
		if !out.At(x, 1) {
			t.Errorf("pixel (%d,1) should be connected to the strong edge", x)
		}
	}
	if out.At(7, 1) {
		t.Error("isolated weak pixel should be dropped")
	}
}

func TestGaussianBlur(t *testing.T) {
	width, height := 10, 10
	img := make([][]float64, height)
	for y := 0; y < height; y++ {
		img[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			img[y][x] = 0.5 // uniform gray
		}
	}

	blurred := gaussianBlur(img, width, height)

	for y := 2; y < height-2; y++ {
		for x := 2; x < width-2; x++ {
			if absFloat(blurred[y][x]-0.5) > 0.01 {
				t.Errorf("blurred[%d][%d]: got %.3f, want ~0.5", y, x, blurred[y][x])
			}
		}
	}
}

func TestGaussianBlur_WithSpot(t *testing.T) {
	width, height := 11, 11
	img := make([][]float64, height)
	for y := 0; y < height; y++ {
		img[y] = make([]float64, width)
	}
	img[5][5] = 1.0 // bright spot in center

	blurred := gaussianBlur(img, width, height)

	if blurred[5][5] >= 1.0 {
		t.Error("bright spot should be reduced after blur")
	}

	if blurred[5][4] == 0 || blurred[5][6] == 0 || blurred[4][5] == 0 || blurred[6][5] == 0 {
		t.Error("neighbors should receive some brightness from blur")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, want int
	}{
		{5, 0, 10, 5},   // within range
		{-1, 0, 10, 0},  // below min
		{15, 0, 10, 10}, // above max
		{0, 0, 10, 0},   // at min
		{10, 0, 10, 10}, // at max
	}

	for _, tt := range tests {
		got := clamp(tt.val, tt.min, tt.max)
		if got != tt.want {
			t.Errorf("clamp(%d, %d, %d): got %d, want %d",
				tt.val, tt.min, tt.max, got, tt.want)
		}
	}
}

// createEdgeTestImage creates an image with a black rectangle on white background
// to create clear edges for testing
func createEdgeTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}

	for y := height / 4; y < 3*height/4; y++ {
		for x := width / 4; x < 3*width/4; x++ {
			img.Set(x, y, color.Black)
		}
	}

	return img
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
