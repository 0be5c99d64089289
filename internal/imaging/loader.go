package imaging

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff" // GeoTIFF exports
)

// RasterCache keeps decoded rasters by absolute path. An entry is reused only
// while the file's size and modification time are unchanged, so a scene that
// is re-exported under the same name is decoded again. Safe for concurrent use.
type RasterCache struct {
	mu      sync.RWMutex
	entries map[string]cachedRaster
}

type cachedRaster struct {
	img     image.Image
	format  string
	size    int64
	modTime time.Time
}

func NewRasterCache() *RasterCache {
	return &RasterCache{entries: make(map[string]cachedRaster)}
}

// Load returns the decoded raster at path.
func (c *RasterCache) Load(path string) (image.Image, error) {
	e, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return e.img, nil
}

func (c *RasterCache) load(path string) (cachedRaster, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		key = filepath.Clean(path)
	}
	st, err := os.Stat(key)
	if err != nil {
		return cachedRaster{}, fmt.Errorf("failed to open image: %w", err)
	}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && e.size == st.Size() && e.modTime.Equal(st.ModTime()) {
		return e, nil
	}

	img, format, err := decodeFile(key)
	if err != nil {
		return cachedRaster{}, err
	}
	e = cachedRaster{img: img, format: format, size: st.Size(), modTime: st.ModTime()}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return e, nil
}

// Len reports the number of cached rasters.
func (c *RasterCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// LoadFile decodes a raster without caching it. Extraction runs use this so
// each run owns its image.
func LoadFile(path string) (image.Image, error) {
	img, _, err := decodeFile(path)
	return img, err
}

func decodeFile(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// RasterInfo is the image_load result.
type RasterInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	// Format is the name the decoder registered under ("png", "jpeg", "gif",
	// "tiff" or "bmp"). It comes from the file contents, not the extension.
	Format        string `json:"format"`
	ColorDepth    string `json:"color_depth"`
	HasAlpha      bool   `json:"has_alpha"`
	FileSizeBytes int64  `json:"file_size_bytes"`
}

// Size is the image_dimensions result.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Inspect loads path through the cache and describes it.
func (c *RasterCache) Inspect(path string) (*RasterInfo, error) {
	e, err := c.load(path)
	if err != nil {
		return nil, err
	}
	b := e.img.Bounds()
	depth, alpha := colorLayout(e.img.ColorModel())
	return &RasterInfo{
		Width:         b.Dx(),
		Height:        b.Dy(),
		Format:        e.format,
		ColorDepth:    depth,
		HasAlpha:      alpha,
		FileSizeBytes: e.size,
	}, nil
}

// Dimensions loads path through the cache and returns its pixel size.
func (c *RasterCache) Dimensions(path string) (*Size, error) {
	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &Size{Width: b.Dx(), Height: b.Dy()}, nil
}

func colorLayout(m color.Model) (depth string, alpha bool) {
	// color.Palette is a slice and cannot be compared below.
	if _, ok := m.(color.Palette); ok {
		return "8-bit", false
	}
	switch m {
	case color.RGBAModel, color.NRGBAModel:
		return "8-bit", true
	case color.RGBA64Model, color.NRGBA64Model:
		return "16-bit", true
	case color.Gray16Model:
		return "16-bit", false
	}
	return "8-bit", false
}
