// Package config provides configuration loading and access for the
// prediction engine.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all engine configuration parameters.
type Config struct {
	Charging       ChargingConfig       `yaml:"charging"`
	Discretization DiscretizationConfig `yaml:"discretization"`
	Evaluation     EvaluationConfig     `yaml:"evaluation"`
	Workers        int                  `yaml:"workers"` // 0 = GOMAXPROCS
}

// ChargingConfig holds the fallbacks substituted for holes that arrive
// without charging data.
type ChargingConfig struct {
	StemmingFraction float64 `yaml:"stemming_fraction"` // uncharged collar fraction
	DefaultDensity   float64 `yaml:"default_density"`   // kg/m3
	DefaultVOD       float64 `yaml:"default_vod"`       // m/s
}

// DiscretizationConfig holds element-count and tolerance settings.
type DiscretizationConfig struct {
	ElementsPerColumn int     `yaml:"elements_per_column"`
	ElementsPerDeck   int     `yaml:"elements_per_deck"`
	SimultaneityTolMS float64 `yaml:"simultaneity_tol_ms"` // Em grouping tolerance
}

// EvaluationConfig holds the distance rules shared across site laws.
type EvaluationConfig struct {
	CutoffDistance     float64 `yaml:"cutoff_distance"`      // m, floors every division
	MaxDisplayDistance float64 `yaml:"max_display_distance"` // m, 0 = no culling
	ToeDecayLength     float64 `yaml:"toe_decay_length"`     // m, Heelan below-toe decay
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded
// defaults if path is empty. Must be called before Cfg().
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

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
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
		// Unmarshal into the same struct - only overwrites fields
		// present in the file.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return cfg, nil
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
