package pipeline

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrInvalidParams is returned when extraction parameters are out of range or
// name an unknown profile.
var ErrInvalidParams = errors.New("invalid extraction parameters")

// Params are the per-run tuning knobs. Every run receives them explicitly;
// profiles only supply defaults.
type Params struct {
	// LowThreshold and HighThreshold are the hysteresis thresholds on the
	// 0-255 intensity scale.
	LowThreshold  int `json:"low_threshold" mapstructure:"low_threshold"`
	HighThreshold int `json:"high_threshold" mapstructure:"high_threshold"`

	// MinArea is the smallest contour area in square pixels that is kept.
	MinArea float64 `json:"min_area" mapstructure:"min_area"`

	// SimplifyToleranceFraction is multiplied by a contour's perimeter to get
	// its Douglas-Peucker tolerance.
	SimplifyToleranceFraction float64 `json:"simplify_tolerance_fraction" mapstructure:"simplify_tolerance_fraction"`
}

// Validate checks that thresholds are ordered and within 0-255, that MinArea
// is non-negative and that the simplify fraction lies in [0, 1).
func (p Params) Validate() error {
	var errs []string
	if p.LowThreshold < 0 || p.LowThreshold > 255 {
		errs = append(errs, fmt.Sprintf("low_threshold must be 0-255, got %d", p.LowThreshold))
	}
	if p.HighThreshold < 0 || p.HighThreshold > 255 {
		errs = append(errs, fmt.Sprintf("high_threshold must be 0-255, got %d", p.HighThreshold))
	}
	if p.LowThreshold > p.HighThreshold {
		errs = append(errs, fmt.Sprintf("low_threshold %d exceeds high_threshold %d", p.LowThreshold, p.HighThreshold))
	}
	if p.MinArea < 0 || math.IsNaN(p.MinArea) || math.IsInf(p.MinArea, 0) {
		errs = append(errs, fmt.Sprintf("min_area must be a non-negative number, got %v", p.MinArea))
	}
	if !(p.SimplifyToleranceFraction >= 0 && p.SimplifyToleranceFraction < 1) {
		errs = append(errs, fmt.Sprintf("simplify_tolerance_fraction must be in [0, 1), got %v", p.SimplifyToleranceFraction))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidParams, strings.Join(errs, "; "))
	}
	return nil
}

// Built-in profile names.
const (
	ProfileRGB  = "rgb"
	ProfileNDVI = "ndvi"
	ProfileNDWI = "ndwi"
)

// DefaultProfiles returns the built-in parameter sets. True-colour composites
// are noisier than index rasters and need higher thresholds and a larger
// minimum area.
func DefaultProfiles() map[string]Params {
	return map[string]Params{
		ProfileRGB: {
			LowThreshold:              100,
			HighThreshold:             200,
			MinArea:                   100,
			SimplifyToleranceFraction: 0.01,
		},
		ProfileNDVI: {
			LowThreshold:              50,
			HighThreshold:             150,
			MinArea:                   50,
			SimplifyToleranceFraction: 0.01,
		},
		ProfileNDWI: {
			LowThreshold:              50,
			HighThreshold:             150,
			MinArea:                   50,
			SimplifyToleranceFraction: 0.01,
		},
	}
}

// Profiles resolves named parameter sets, falling back to DefaultProfiles.
type Profiles map[string]Params

// Lookup returns the parameters for name (case-insensitive).
func (p Profiles) Lookup(name string) (Params, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if params, ok := p[key]; ok {
		return params, nil
	}
	if params, ok := DefaultProfiles()[key]; ok {
		return params, nil
	}
	return Params{}, fmt.Errorf("%w: unknown profile %q (known: %s)", ErrInvalidParams, name, strings.Join(p.Names(), ", "))
}

// Names lists every resolvable profile name in sorted order.
func (p Profiles) Names() []string {
	seen := map[string]bool{}
	for name := range DefaultProfiles() {
		seen[name] = true
	}
	for name := range p {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
