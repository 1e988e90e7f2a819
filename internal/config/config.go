// Package config holds the tunable surface of the scoring core: storage
// backend selection, statistics thresholds, and the numeric bounds enforced
// by score validation.
//
// Resolution order is defaults, then an optional YAML file, then environment
// variables prefixed DISCSCORE_ (e.g. DISCSCORE_STATS_MIN_DATA_POINTS).
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const envPrefix = "discscore"

// Config is the full recognized option set.
type Config struct {
	Store  StoreConfig  `yaml:"store"`
	Remote RemoteConfig `yaml:"remote"`
	Stats  StatsConfig  `yaml:"stats"`
	Bounds Bounds       `yaml:"bounds"`
}

// RemoteConfig locates the remote gateway target used by the CLI. Empty
// means no remote is configured: mutations queue locally and sync reports
// them as pending.
type RemoteConfig struct {
	// Dir is the directory consumed by the built-in directory gateway.
	Dir string `yaml:"dir" envconfig:"REMOTE_DIR"`
}

// StoreConfig selects and locates the record store backend.
type StoreConfig struct {
	// Backend is "auto", "sqlite" or "file". "auto" probes sqlite and
	// falls back to the file store.
	Backend string `yaml:"backend" envconfig:"STORE_BACKEND"`
	// Path is the sqlite database file.
	Path string `yaml:"path" envconfig:"STORE_PATH"`
	// Dir is the data directory for the file backend.
	Dir string `yaml:"dir" envconfig:"STORE_DIR"`
}

// StatsConfig controls when aggregates are considered meaningful.
type StatsConfig struct {
	// MinRounds is the minimum completed rounds before any average is shown.
	MinRounds int `yaml:"min_rounds" envconfig:"STATS_MIN_ROUNDS"`
	// MinDataPoints is the minimum entries carrying a sub-value before its
	// per-hole average is surfaced as reliable.
	MinDataPoints int `yaml:"min_data_points" envconfig:"STATS_MIN_DATA_POINTS"`
}

// Bounds are the inclusive numeric limits enforced at entry time.
type Bounds struct {
	ThrowsMin    int `yaml:"throws_min" envconfig:"THROWS_MIN"`
	ThrowsMax    int `yaml:"throws_max" envconfig:"THROWS_MAX"`
	SubValueMin  int `yaml:"sub_value_min" envconfig:"SUB_VALUE_MIN"`
	SubValueMax  int `yaml:"sub_value_max" envconfig:"SUB_VALUE_MAX"`
	ParMin       int `yaml:"par_min" envconfig:"PAR_MIN"`
	ParMax       int `yaml:"par_max" envconfig:"PAR_MAX"`
	HoleCountMin int `yaml:"hole_count_min" envconfig:"HOLE_COUNT_MIN"`
	HoleCountMax int `yaml:"hole_count_max" envconfig:"HOLE_COUNT_MAX"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Store: StoreConfig{Backend: "auto", Path: "discscore.db", Dir: "discscore-data"},
		Stats: StatsConfig{MinRounds: 1, MinDataPoints: 3},
		Bounds: Bounds{
			ThrowsMin: 1, ThrowsMax: 20,
			SubValueMin: 0, SubValueMax: 19,
			ParMin: 2, ParMax: 6,
			HoleCountMin: 1, HoleCountMax: 27,
		},
	}
}

// Load resolves the configuration: defaults, then the YAML file at path if
// path is non-empty and exists, then DISCSCORE_* environment overrides.
func Load(path string) (Config, error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Missing config file is fine; defaults apply.
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &c); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	// No default tags on the struct: envconfig only touches fields whose
	// variables are actually set, so YAML values survive.
	if err := envconfig.Process(envPrefix, &c); err != nil {
		return Config{}, fmt.Errorf("process env overrides: %w", err)
	}

	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	b := c.Bounds
	if b.ThrowsMin < 1 || b.ThrowsMax < b.ThrowsMin {
		return fmt.Errorf("invalid throws bounds [%d, %d]", b.ThrowsMin, b.ThrowsMax)
	}
	if b.SubValueMin < 0 || b.SubValueMax < b.SubValueMin {
		return fmt.Errorf("invalid sub-value bounds [%d, %d]", b.SubValueMin, b.SubValueMax)
	}
	if b.ParMin < 1 || b.ParMax < b.ParMin {
		return fmt.Errorf("invalid par bounds [%d, %d]", b.ParMin, b.ParMax)
	}
	if b.HoleCountMin < 1 || b.HoleCountMax < b.HoleCountMin {
		return fmt.Errorf("invalid hole count bounds [%d, %d]", b.HoleCountMin, b.HoleCountMax)
	}
	if c.Stats.MinRounds < 1 || c.Stats.MinDataPoints < 1 {
		return fmt.Errorf("stats minimums must be >= 1")
	}
	switch c.Store.Backend {
	case "auto", "sqlite", "file":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	return nil
}
