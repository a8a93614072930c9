// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Sim       SimConfig       `yaml:"sim"`
	Loop      LoopConfig      `yaml:"loop"`
	Bridge    BridgeConfig    `yaml:"bridge"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimConfig holds the physics constants shared by every driver.
type SimConfig struct {
	Capacity        int     `yaml:"capacity"`         // spheres in the pool
	Scale           float64 `yaml:"scale"`            // sphere radius in unit-ball space
	Speed           float64 `yaml:"speed"`            // distance travelled per tick
	CollisionFactor float64 `yaml:"collision_factor"` // threshold = scale * factor
}

// LoopConfig holds interactive driver timing.
//
// MSAA is accepted from the command line and config for compatibility with
// windowed front-ends. The terminal front-end draws character cells and
// ignores it; it is only logged at startup.
type LoopConfig struct {
	LogicRate        float64 `yaml:"logic_rate"`         // fixed logic ticks per second
	MaxFPS           float64 `yaml:"max_fps"`            // render rate cap
	MSAA             int     `yaml:"msaa"`               // antialiasing samples; unused by the terminal front-end
	TitleInterval    float64 `yaml:"title_interval"`     // seconds between status line refreshes
	RatesMinInterval float64 `yaml:"rates_min_interval"` // minimum seconds between rate reports
}

// BridgeConfig holds the predictor hand-off locations.
type BridgeConfig struct {
	InputPath     string  `yaml:"input_path"`
	ResultPath    string  `yaml:"result_path"`
	FlagThreshold float64 `yaml:"flag_threshold"` // |dot(old, new)| below this marks a collision
}

// DatasetConfig holds batch generation settings.
type DatasetConfig struct {
	PrimaryPath   string `yaml:"primary_path"`
	SecondaryPath string `yaml:"secondary_path"`
	ReportPath    string `yaml:"report_path"`
	Samples       int    `yaml:"samples"` // ticks recorded before the flush
	LockAttempts  int    `yaml:"lock_attempts"`
	LockBackoffMS int    `yaml:"lock_backoff_ms"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // seconds of logic ticks per stats window
	PerfWindow  int     `yaml:"perf_window"`  // ticks averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	CollisionThreshold float64       // Sim.Scale * Sim.CollisionFactor
	InputFloats        int           // 6 per sphere
	ResultFloats       int           // 3 per sphere
	PrimaryCapacity    int           // floats held by the input-sample buffer
	SecondaryCapacity  int           // floats held by the label buffer
	TickInterval       time.Duration // 1 / LogicRate
	StatsWindowTicks   int           // StatsWindow in ticks
	LockBackoff        time.Duration
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

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults with derived values computed.
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
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
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

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.ComputeDerived()

	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Sim.Capacity < 1:
		return fmt.Errorf("sim.capacity must be positive, got %d", c.Sim.Capacity)
	case c.Sim.Speed <= 0:
		return fmt.Errorf("sim.speed must be positive, got %g", c.Sim.Speed)
	case c.Sim.Scale <= 0:
		return fmt.Errorf("sim.scale must be positive, got %g", c.Sim.Scale)
	case c.Loop.LogicRate <= 0:
		return fmt.Errorf("loop.logic_rate must be positive, got %g", c.Loop.LogicRate)
	case c.Dataset.Samples < 1:
		return fmt.Errorf("dataset.samples must be positive, got %d", c.Dataset.Samples)
	}
	return nil
}

// ComputeDerived calculates values derived from loaded config.
// Call it again after mutating fields in code.
func (c *Config) ComputeDerived() {
	c.Derived.CollisionThreshold = c.Sim.Scale * c.Sim.CollisionFactor
	c.Derived.InputFloats = 6 * c.Sim.Capacity
	c.Derived.ResultFloats = 3 * c.Sim.Capacity
	c.Derived.PrimaryCapacity = c.Dataset.Samples * c.Derived.InputFloats
	c.Derived.SecondaryCapacity = c.Dataset.Samples * c.Derived.ResultFloats
	c.Derived.TickInterval = time.Duration(float64(time.Second) / c.Loop.LogicRate)
	c.Derived.StatsWindowTicks = int(c.Telemetry.StatsWindow * c.Loop.LogicRate)
	if c.Derived.StatsWindowTicks < 1 {
		c.Derived.StatsWindowTicks = 1
	}
	c.Derived.LockBackoff = time.Duration(c.Dataset.LockBackoffMS) * time.Millisecond
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
