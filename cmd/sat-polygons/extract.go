package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/sat-polygons/internal/geo"
	"github.com/ironsheep/sat-polygons/internal/pipeline"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract polygons from one raster",
	Long: `Extract polygon boundaries from one raster and write them as a GeoJSON
FeatureCollection. Parameters come from --profile and may be overridden
individually. The run summary is printed to stdout as JSON.`,
	Example: `  sat-polygons extract -i galicia_rgb.png --bounds -9.3,41.8,-6.7,43.8
  sat-polygons extract -i ndvi.tif -p ndvi --aoi-file galicia.geojson --overlay`,
	RunE: runExtract,
}

var (
	extractInput     string
	extractName      string
	extractProfile   string
	extractBounds    []float64
	extractAOIFile   string
	extractOutput    string
	extractOutputDir string
	extractOverlay   bool
	extractContours  bool

	extractLow      int
	extractHigh     int
	extractMinArea  float64
	extractFraction float64
)

func init() {
	f := extractCmd.Flags()
	f.StringVarP(&extractInput, "input", "i", "", "Raster to process (PNG, JPEG, GIF, TIFF or BMP)")
	f.StringVarP(&extractName, "name", "n", "", "Run name used for output file names (default: profile)")
	f.StringVarP(&extractProfile, "profile", "p", pipeline.ProfileRGB, "Parameter profile: rgb, ndvi, ndwi or one from the config file")
	f.Float64SliceVar(&extractBounds, "bounds", nil, "Raster bounds as west,south,east,north in degrees")
	f.StringVar(&extractAOIFile, "aoi-file", "", "GeoJSON area of interest; its bounding box is used as the raster bounds")
	f.StringVarP(&extractOutput, "output", "o", "", "GeoJSON output path (default: <output-dir>/<name>_polygons.geojson)")
	f.StringVar(&extractOutputDir, "output-dir", "", "Output directory (overrides config)")
	f.BoolVar(&extractOverlay, "overlay", false, "Also write <name>_visualization.png")
	f.BoolVar(&extractContours, "contours", false, "Also write <input>_contours.png")

	f.IntVar(&extractLow, "low-threshold", 0, "Override the lower hysteresis threshold (0-255)")
	f.IntVar(&extractHigh, "high-threshold", 0, "Override the upper hysteresis threshold (0-255)")
	f.Float64Var(&extractMinArea, "min-area", 0, "Override the minimum contour area in square pixels")
	f.Float64Var(&extractFraction, "simplify-tolerance-fraction", 0, "Override the simplification tolerance as a fraction of perimeter")

	_ = extractCmd.MarkFlagRequired("input")
	extractCmd.MarkFlagsMutuallyExclusive("bounds", "aoi-file")
}

func runExtract(cmd *cobra.Command, args []string) error {
	params, err := cfg.ProfileSet().Lookup(extractProfile)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if f.Changed("low-threshold") {
		params.LowThreshold = extractLow
	}
	if f.Changed("high-threshold") {
		params.HighThreshold = extractHigh
	}
	if f.Changed("min-area") {
		params.MinArea = extractMinArea
	}
	if f.Changed("simplify-tolerance-fraction") {
		params.SimplifyToleranceFraction = extractFraction
	}

	bounds, err := resolveBounds(extractBounds, extractAOIFile)
	if err != nil {
		return err
	}

	dir := cfg.Output.Dir
	if extractOutputDir != "" {
		dir = extractOutputDir
	}
	profile := strings.ToLower(extractProfile)
	req := pipeline.Request{
		Name:       extractName,
		Profile:    profile,
		InputPath:  extractInput,
		Bounds:     bounds,
		Params:     params,
		OutputPath: extractOutput,
	}
	if req.Name == "" {
		req.Name = profile
	}
	req = req.WithOutputDir(dir, extractOverlay || cfg.Output.Overlay, extractContours || cfg.Output.Contours)

	ctx, stop := signalContext()
	defer stop()

	res, err := pipeline.NewRunner(logger).Run(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(res)
}

// resolveBounds reads the raster bounds from --bounds or from the bounding
// box of every feature in an area-of-interest file.
func resolveBounds(values []float64, aoiFile string) (geo.Bounds, error) {
	if aoiFile != "" {
		fc, err := geo.ReadFeatureCollection(aoiFile)
		if err != nil {
			return geo.Bounds{}, fmt.Errorf("failed to read area of interest: %w", err)
		}
		var coords [][]float64
		for _, f := range fc.Features {
			if f.Geometry == nil {
				continue
			}
			b := f.Geometry.Bound()
			coords = append(coords, []float64{b.Min[0], b.Min[1]}, []float64{b.Max[0], b.Max[1]})
		}
		return geo.BoundsFromCoords(coords)
	}

	if len(values) == 0 {
		return geo.Bounds{}, errors.New("either --bounds or --aoi-file is required")
	}
	if len(values) != 4 {
		return geo.Bounds{}, fmt.Errorf("%w: --bounds needs west,south,east,north, got %d values", geo.ErrInvalidBounds, len(values))
	}
	b := geo.Bounds{West: values[0], South: values[1], East: values[2], North: values[3]}
	if err := b.Validate(); err != nil {
		return geo.Bounds{}, err
	}
	return b, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// displayPath shortens paths under the working directory for log output.
func displayPath(p string) string {
	wd, err := os.Getwd()
	if err != nil {
		return p
	}
	if rel, err := filepath.Rel(wd, p); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return p
}
