// Package config loads the runtime's tunable knobs from an optional YAML
// file, the way the teacher's own yaml library module decodes documents
// with gopkg.in/yaml.v3 rather than hand-rolling a flag-only config.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RuntimeConfig controls things a test or an operator needs to tune
// without touching the compiled project: RNG determinism, how fast
// ControlWait/LooksSayForSecs actually sleep, and where (if anywhere)
// the debug inspection service listens.
type RuntimeConfig struct {
	// Seed seeds OperatorRandom's RNG. Zero means "derive from the OS",
	// non-zero gives reproducible runs for tests.
	Seed int64 `yaml:"seed"`

	// WaitScale multiplies every ControlWait/LooksSayForSecs duration
	// before sleeping. 1.0 is real time; tests set this near 0 to run a
	// whole script's waits in milliseconds.
	WaitScale float64 `yaml:"wait_scale"`

	// DebugListenAddr, if non-empty, is the address internal/inspect's
	// gRPC VMInspector service binds to for the run's duration.
	DebugListenAddr string `yaml:"debug_listen_addr"`

	// RunDBPath, if non-empty, is the SQLite file internal/rundb records
	// one row per Run call into.
	RunDBPath string `yaml:"rundb_path"`
}

// Default returns the configuration a bare `scratchrun project.sb3`
// invocation uses: real time, a fresh random seed, no debug service, no
// history.
func Default() RuntimeConfig {
	return RuntimeConfig{
		Seed:      0,
		WaitScale: 1.0,
	}
}

// Load reads and parses a RuntimeConfig from path, applying Default()
// for any field the file omits.
func Load(path string) (RuntimeConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.WaitScale == 0 {
		cfg.WaitScale = 1.0
	}
	return cfg, nil
}
