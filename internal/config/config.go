// Package config holds the engine configuration: source root, tier
// thresholds, and worker fan-out, loadable from a .covtree.yaml file
// with CLI flag overrides applied on top.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/unbound-force/covtree/internal/tier"
)

// DefaultFile is the config filename looked up when no explicit path
// is given.
const DefaultFile = ".covtree.yaml"

// Config is the complete engine configuration. The core consumes
// nothing else at runtime.
type Config struct {
	// SourceRoot is the path prefix file paths are grouped relative
	// to. Files outside it are bucketed under the external root.
	SourceRoot string `yaml:"source_root"`

	// PathFilter optionally restricts the report to files whose
	// (root-relative) path starts with this prefix. Filtered files
	// are skipped with a diagnostic, never silently.
	PathFilter string `yaml:"path_filter"`

	// Thresholds are the tier cut points for the renderer.
	Thresholds Thresholds `yaml:"thresholds"`

	// Workers bounds the per-file resolution fan-out. Zero means one
	// worker per CPU.
	Workers int `yaml:"workers"`
}

// Thresholds holds the two coverage-ratio cut points.
type Thresholds struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// Cuts converts the thresholds to tier cut points.
func (t Thresholds) Cuts() tier.Cuts {
	return tier.Cuts{Low: t.Low, High: t.High}
}

// Default returns the configuration used when no file or flags
// override anything.
func Default() Config {
	return Config{
		Thresholds: Thresholds{
			Low:  tier.Default.Low,
			High: tier.Default.High,
		},
	}
}

// Load reads the YAML config at path, applies it over the defaults,
// and validates. An empty path returns the defaults; a missing
// explicit file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects impossible threshold and worker settings.
func (c Config) Validate() error {
	if err := c.Thresholds.Cuts().Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers: %d is negative", c.Workers)
	}
	return nil
}
