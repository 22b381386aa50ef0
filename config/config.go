// Package config provides configuration loading and access for the metaballs pipeline.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Bounds on user-facing settings. Values outside are clamped, never rejected.
const (
	MaxBalls     = 32
	MinGridSteps = 16
	MaxGridSteps = 128
	MinScale     = 1.0
	MinLimit     = 0.0
	MaxLimit     = 1.0

	// MinOpenVoxels is the starting capacity of the open-voxel list.
	MinOpenVoxels = 32
)

// Kernel names accepted in field.kernel.
const (
	KernelInverseSquare = "inverse_square"
	KernelWyvill        = "wyvill"
)

// Config holds all configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	Metaballs   MetaballsConfig   `yaml:"metaballs"`
	Field       FieldConfig       `yaml:"field"`
	Motion      MotionConfig      `yaml:"motion"`
	Propagation PropagationConfig `yaml:"propagation"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// MetaballsConfig holds the host-facing settings of the metaball actor.
type MetaballsConfig struct {
	NumBalls   int         `yaml:"num_balls"`   // 0 disables extraction
	Scale      float64     `yaml:"scale"`       // World edge length of the grid cube
	GridSteps  int         `yaml:"grid_steps"`  // Voxels per axis
	RandomSeed bool        `yaml:"random_seed"` // Random start positions, otherwise centered
	AutoMode   bool        `yaml:"auto_mode"`   // Balls fly on their own
	AutoLimit  LimitConfig `yaml:"auto_limit"`  // Per-axis flight bounds as fraction of half scale
}

// LimitConfig holds per-axis auto-fly limits in [0,1].
type LimitConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// FieldConfig holds energy field parameters.
type FieldConfig struct {
	Kernel string  `yaml:"kernel"` // inverse_square or wyvill
	Level  float64 `yaml:"level"`  // Iso level of the extracted surface
	Mass   float64 `yaml:"mass"`   // Charge of a freshly seeded ball
	Radius float64 `yaml:"radius"` // Wyvill support radius in local units
}

// MotionConfig holds auto-fly parameters. Units are local (half scale = 1) per second.
type MotionConfig struct {
	InitialSpeed     float64 `yaml:"initial_speed"`
	MaxSpeed         float64 `yaml:"max_speed"`
	MaxAccel         float64 `yaml:"max_accel"`
	RetargetInterval float64 `yaml:"retarget_interval"` // Seconds between acceleration changes
}

// PropagationConfig holds open-voxel list sizing.
type PropagationConfig struct {
	InitialOpenVoxels int `yaml:"initial_open_voxels"`
	MaxOpenVoxels     int `yaml:"max_open_voxels"` // 0 = grid volume
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"`          // Passes per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"` // Passes averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	HalfScale float64 // Metaballs.Scale / 2
	VoxelSize float64 // Metaballs.Scale / GridSteps
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.Normalize()
	return cfg, nil
}

// Normalize clamps every bounded setting into range and recomputes derived values.
func (c *Config) Normalize() {
	m := &c.Metaballs
	m.NumBalls = ClampNumBalls(m.NumBalls)
	m.Scale = ClampScale(m.Scale)
	m.GridSteps = ClampGridSteps(m.GridSteps)
	m.AutoLimit.X = ClampLimit(m.AutoLimit.X)
	m.AutoLimit.Y = ClampLimit(m.AutoLimit.Y)
	m.AutoLimit.Z = ClampLimit(m.AutoLimit.Z)

	switch c.Field.Kernel {
	case KernelInverseSquare, KernelWyvill:
	case "":
		c.Field.Kernel = KernelInverseSquare
	default:
		slog.Warn("unknown field kernel, using default", "kernel", c.Field.Kernel)
		c.Field.Kernel = KernelInverseSquare
	}
	if c.Field.Mass <= 0 {
		c.Field.Mass = 1
	}
	if c.Field.Radius <= 0 {
		c.Field.Radius = 0.5
	}
	if c.Field.Kernel == KernelWyvill && c.Field.Level >= c.Field.Mass {
		_, suggested, _ := LevelRange(c.Field.Kernel, c.Field.Mass)
		slog.Warn("field level unreachable by a lone wyvill ball",
			"level", c.Field.Level,
			"mass", c.Field.Mass,
			"suggested", suggested,
		)
	}

	if c.Propagation.InitialOpenVoxels < MinOpenVoxels {
		c.Propagation.InitialOpenVoxels = MinOpenVoxels
	}
	if c.Propagation.MaxOpenVoxels < 0 {
		c.Propagation.MaxOpenVoxels = 0
	}

	if c.Telemetry.StatsWindow < 1 {
		c.Telemetry.StatsWindow = 60
	}
	if c.Telemetry.PerfCollectorWindow < 1 {
		c.Telemetry.PerfCollectorWindow = 60
	}

	c.computeDerived()
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.HalfScale = c.Metaballs.Scale / 2
	c.Derived.VoxelSize = c.Metaballs.Scale / float64(c.Metaballs.GridSteps)
}

// ClampNumBalls clamps a ball count to [0, MaxBalls].
func ClampNumBalls(n int) int {
	return clampInt(n, 0, MaxBalls)
}

// ClampGridSteps clamps a grid step count to [MinGridSteps, MaxGridSteps].
func ClampGridSteps(n int) int {
	return clampInt(n, MinGridSteps, MaxGridSteps)
}

// ClampScale clamps the area scale to at least MinScale. Non-finite values
// fall back to MinScale.
func ClampScale(s float64) float64 {
	if s < MinScale || math.IsNaN(s) || math.IsInf(s, 0) {
		return MinScale
	}
	return s
}

// LevelRange returns the useful iso levels for kernel with charges of the
// given mass, and a starting level inside them. A Wyvill charge peaks at its
// mass, so only overlapping balls reach levels above it.
func LevelRange(kernel string, mass float64) (lo, def, hi float64) {
	if kernel == KernelWyvill {
		return 0.01 * mass, 0.3 * mass, 2 * mass
	}
	return mass, 40 * mass, 200 * mass
}

// ClampLimit clamps an auto-fly limit to [MinLimit, MaxLimit].
func ClampLimit(v float64) float64 {
	if v < MinLimit || v != v {
		return MinLimit
	}
	if v > MaxLimit {
		return MaxLimit
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
