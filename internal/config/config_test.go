package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xyproto/env/v2"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lume.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
target_version: "1.14.0"
trace: true
passes:
  fold-constants: false
  lower-loops: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TargetVersion != "1.14.0" {
		t.Errorf("TargetVersion = %q", cfg.TargetVersion)
	}
	if !cfg.Trace {
		t.Error("Trace not read")
	}
	if enabled, ok := cfg.Passes["fold-constants"]; !ok || enabled {
		t.Errorf("Passes[fold-constants] = %v, %v", enabled, ok)
	}
	if enabled := cfg.Passes["lower-loops"]; !enabled {
		t.Error("Passes[lower-loops] should be true")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Error("loading a missing file should error")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "passes: [not, a, map]")
	if _, err := Load(path); err == nil {
		t.Error("malformed config should error")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("LUME_TARGET_VERSION", "1.15.2")
	t.Setenv("LUME_TRACE", "true")
	t.Setenv("LUME_DISABLE_PASSES", "fold-constants, drop-redundant-match")
	env.Load() // refresh the library's cached environment after Setenv
	t.Cleanup(env.Load)

	cfg := FromEnv(Default())
	if cfg.TargetVersion != "1.15.2" {
		t.Errorf("TargetVersion = %q", cfg.TargetVersion)
	}
	if !cfg.Trace {
		t.Error("Trace not overridden")
	}
	for _, name := range []string{"fold-constants", "drop-redundant-match"} {
		if enabled, ok := cfg.Passes[name]; !ok || enabled {
			t.Errorf("Passes[%s] = %v, %v; want disabled", name, enabled, ok)
		}
	}
}

func TestFromEnvKeepsFileValues(t *testing.T) {
	for _, name := range []string{"LUME_TARGET_VERSION", "LUME_TRACE", "LUME_DISABLE_PASSES"} {
		t.Setenv(name, "") // register restoration, then clear entirely
		os.Unsetenv(name)
	}
	env.Load() // refresh the library's cached environment after Unsetenv
	t.Cleanup(env.Load)

	base := Default()
	base.TargetVersion = "1.12.0"
	base.Trace = true

	cfg := FromEnv(base)
	if cfg.TargetVersion != "1.12.0" {
		t.Errorf("TargetVersion = %q, want file value kept", cfg.TargetVersion)
	}
	if !cfg.Trace {
		t.Error("Trace from file must survive an empty environment")
	}
}
