// Package config carries pipeline configuration as an explicit value. File
// values load from YAML; environment variables layer on top, so a CI run
// can flip tracing or disable a pass without touching the config file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"
)

// Config is everything the pipeline is told from outside.
type Config struct {
	// TargetVersion is the target-language version pass constraints are
	// checked against. Empty disables version gating.
	TargetVersion string `yaml:"target_version"`

	// Trace logs every pass application with the run id.
	Trace bool `yaml:"trace"`

	// Passes force-enables or force-disables passes by name. Names absent
	// from the map keep their registered default.
	Passes map[string]bool `yaml:"passes"`
}

// Default returns the configuration used when no file or environment is
// given.
func Default() Config {
	return Config{Passes: map[string]bool{}}
}

// Load reads a YAML config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Passes == nil {
		cfg.Passes = map[string]bool{}
	}
	return cfg, nil
}

// FromEnv layers LUME_TARGET_VERSION, LUME_TRACE, and LUME_DISABLE_PASSES
// (comma-separated pass names) over cfg.
func FromEnv(cfg Config) Config {
	if cfg.Passes == nil {
		cfg.Passes = map[string]bool{}
	}

	if v := env.Str("LUME_TARGET_VERSION"); v != "" {
		cfg.TargetVersion = v
	}
	if env.Has("LUME_TRACE") {
		cfg.Trace = env.Bool("LUME_TRACE")
	}
	for _, name := range strings.Split(env.Str("LUME_DISABLE_PASSES"), ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			cfg.Passes[name] = false
		}
	}
	return cfg
}
