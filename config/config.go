// Package config holds the tunable constants of a simulation run.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"
)

// Config is the full set of run options. Keys absent from a YAML file keep
// their defaults.
type Config struct {
	Input     string `yaml:"input"`
	OutputDir string `yaml:"output_dir"`

	Gravity  float64 `yaml:"gravity"`
	TimeStep float64 `yaml:"time_step"`
	Steps    int     `yaml:"steps"`

	DensityDivisor  float64 `yaml:"density_divisor"`
	StaticFriction  float64 `yaml:"static_friction"`
	DynamicFriction float64 `yaml:"dynamic_friction"`
	Restitution     float64 `yaml:"restitution"`

	WallFriction float64 `yaml:"wall_friction"`
	WallRadius   float64 `yaml:"wall_radius"`

	Iterations            int     `yaml:"iterations"`
	PenetrationAllowance  float64 `yaml:"penetration_allowance"`
	PenetrationCorrection float64 `yaml:"penetration_correction"`

	Threshold uint8 `yaml:"threshold"`
	Invert    bool  `yaml:"invert"`
	Strict    bool  `yaml:"strict"`
}

// Default returns the reference settings: 981 units/s² gravity, 15 ms steps,
// 240 frames, mass = area/50 and wall friction 1.
func Default() Config {
	return Config{
		Input:                 "shapes.jpg",
		OutputDir:             "frames",
		Gravity:               981,
		TimeStep:              0.015,
		Steps:                 240,
		DensityDivisor:        50,
		StaticFriction:        0.4,
		DynamicFriction:       0.2,
		Restitution:           0,
		WallFriction:          1,
		WallRadius:            2,
		Iterations:            20,
		PenetrationAllowance:  0.01,
		PenetrationCorrection: 0.8,
		Threshold:             128,
		Invert:                true,
	}
}

// Load reads a YAML config on top of Default. A missing file is not an
// error; Default is returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Merge copies the non-zero fields of overrides onto c.
func (c *Config) Merge(overrides Config) error {
	if err := copier.CopyWithOption(c, &overrides, copier.Option{IgnoreEmpty: true}); err != nil {
		return fmt.Errorf("config: merge: %w", err)
	}
	return nil
}

// Density is the mass per unit area implied by DensityDivisor.
func (c Config) Density() float64 {
	return 1 / c.DensityDivisor
}

// Validate rejects settings the simulation cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.TimeStep <= 0 {
		errs = append(errs, fmt.Errorf("time_step must be positive, got %v", c.TimeStep))
	}
	if c.Steps < 0 {
		errs = append(errs, fmt.Errorf("steps must not be negative, got %d", c.Steps))
	}
	if c.DensityDivisor <= 0 {
		errs = append(errs, fmt.Errorf("density_divisor must be positive, got %v", c.DensityDivisor))
	}
	if c.Restitution < 0 || c.Restitution > 1 {
		errs = append(errs, fmt.Errorf("restitution must be within [0, 1], got %v", c.Restitution))
	}
	if c.StaticFriction < 0 || c.DynamicFriction < 0 || c.WallFriction < 0 {
		errs = append(errs, errors.New("friction coefficients must not be negative"))
	}
	if c.WallRadius < 0 {
		errs = append(errs, fmt.Errorf("wall_radius must not be negative, got %v", c.WallRadius))
	}
	if c.Iterations <= 0 {
		errs = append(errs, fmt.Errorf("iterations must be positive, got %d", c.Iterations))
	}
	if c.PenetrationCorrection < 0 || c.PenetrationCorrection > 1 {
		errs = append(errs, fmt.Errorf("penetration_correction must be within [0, 1], got %v", c.PenetrationCorrection))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
