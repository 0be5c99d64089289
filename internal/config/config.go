// Package config loads runtime settings from an optional YAML file and
// SATPOLY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ironsheep/sat-polygons/internal/geo"
	"github.com/ironsheep/sat-polygons/internal/pipeline"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override:
// SATPOLY_LOG_LEVEL overrides log.level.
const EnvPrefix = "SATPOLY"

// Config holds all application configuration.
type Config struct {
	Log      LogConfig                  `mapstructure:"log"`
	Output   OutputConfig               `mapstructure:"output"`
	Metrics  MetricsConfig              `mapstructure:"metrics"`
	Batch    BatchConfig                `mapstructure:"batch"`
	Profiles map[string]pipeline.Params `mapstructure:"profiles"`
	Runs     []RunConfig                `mapstructure:"runs"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type OutputConfig struct {
	Dir      string `mapstructure:"dir"`
	Overlay  bool   `mapstructure:"overlay"`
	Contours bool   `mapstructure:"contours"`
}

type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables the endpoint.
	Addr string `mapstructure:"addr"`
}

type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// RunConfig declares one batch run.
type RunConfig struct {
	Name    string     `mapstructure:"name"`
	Input   string     `mapstructure:"input"`
	Profile string     `mapstructure:"profile"`
	Bounds  geo.Bounds `mapstructure:"bounds"`

	// Output overrides the default <output.dir>/<name>_polygons.geojson.
	Output string `mapstructure:"output"`

	// Overrides, when set, replace individual profile parameters.
	LowThreshold              *int     `mapstructure:"low_threshold"`
	HighThreshold             *int     `mapstructure:"high_threshold"`
	MinArea                   *float64 `mapstructure:"min_area"`
	SimplifyToleranceFraction *float64 `mapstructure:"simplify_tolerance_fraction"`
}

// Load reads configuration. When path is empty, sat-polygons.yaml is looked
// up in the working directory and ./configs and may be absent; an explicit
// path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("sat-polygons")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	// Environment variables: SATPOLY_OUTPUT_DIR -> output.dir
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("output.dir", "output")
	v.SetDefault("output.overlay", false)
	v.SetDefault("output.contours", false)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("batch.concurrency", 4)

	for name, p := range pipeline.DefaultProfiles() {
		v.SetDefault("profiles."+name+".low_threshold", p.LowThreshold)
		v.SetDefault("profiles."+name+".high_threshold", p.HighThreshold)
		v.SetDefault("profiles."+name+".min_area", p.MinArea)
		v.SetDefault("profiles."+name+".simplify_tolerance_fraction", p.SimplifyToleranceFraction)
	}
}

func (c *Config) normalize() {
	profiles := make(map[string]pipeline.Params, len(c.Profiles))
	for name, p := range c.Profiles {
		profiles[strings.ToLower(name)] = p
	}
	c.Profiles = profiles
	for i := range c.Runs {
		c.Runs[i].Profile = strings.ToLower(strings.TrimSpace(c.Runs[i].Profile))
	}
}

// ProfileSet exposes the configured profiles for lookup.
func (c *Config) ProfileSet() pipeline.Profiles {
	return pipeline.Profiles(c.Profiles)
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}
	if c.Output.Dir == "" {
		errs = append(errs, "output.dir is required")
	}
	if c.Batch.Concurrency < 1 {
		errs = append(errs, fmt.Sprintf("batch.concurrency must be at least 1, got %d", c.Batch.Concurrency))
	}
	for name, p := range c.Profiles {
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("profiles.%s: %v", name, err))
		}
	}

	names := map[string]bool{}
	for i, r := range c.Runs {
		label := fmt.Sprintf("runs[%d]", i)
		if r.Input == "" {
			errs = append(errs, label+".input is required")
		}
		if _, err := c.ProfileSet().Lookup(r.Profile); err != nil {
			errs = append(errs, fmt.Sprintf("%s.profile: %v", label, err))
		}
		if err := r.Bounds.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("%s.bounds: %v", label, err))
		}
		if name := r.RunName(); names[name] {
			errs = append(errs, fmt.Sprintf("%s.name %q is not unique", label, name))
		} else {
			names[name] = true
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// RunName is the run's name, defaulting to its profile and then to the
// input file stem.
func (r RunConfig) RunName() string {
	if r.Name != "" {
		return r.Name
	}
	if r.Profile != "" {
		return r.Profile
	}
	base := filepath.Base(r.Input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Requests turns the configured runs into pipeline requests with resolved
// parameters and output paths.
func (c *Config) Requests() ([]pipeline.Request, error) {
	reqs := make([]pipeline.Request, 0, len(c.Runs))
	for i, r := range c.Runs {
		params, err := c.ProfileSet().Lookup(r.Profile)
		if err != nil {
			return nil, fmt.Errorf("runs[%d]: %w", i, err)
		}
		if r.LowThreshold != nil {
			params.LowThreshold = *r.LowThreshold
		}
		if r.HighThreshold != nil {
			params.HighThreshold = *r.HighThreshold
		}
		if r.MinArea != nil {
			params.MinArea = *r.MinArea
		}
		if r.SimplifyToleranceFraction != nil {
			params.SimplifyToleranceFraction = *r.SimplifyToleranceFraction
		}

		req := pipeline.Request{
			Name:       r.RunName(),
			Profile:    r.Profile,
			InputPath:  r.Input,
			Bounds:     r.Bounds,
			Params:     params,
			OutputPath: r.Output,
		}
		reqs = append(reqs, req.WithOutputDir(c.Output.Dir, c.Output.Overlay, c.Output.Contours))
	}
	return reqs, nil
}
