package realmsched

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults mirror what a gateway-embedded scheduler wants out of the box:
// enough per-worker arena capacity for a busy tick, a handful of steal
// attempts before a worker parks, and a short park interval so idle
// workers do not burn CPU spinning.
const (
	DefaultWorkers           = 4
	DefaultMaxTasksPerWorker = 1024
	DefaultStealAttempts     = 8
	DefaultIdleParkInterval  = 2 * time.Millisecond
)

// SchedulerConfig holds the tunables spec.md leaves to the
// implementation: worker count, max tasks per arena, how many victims a
// worker tries before parking, and how long it parks between attempts.
type SchedulerConfig struct {
	Workers           int           `yaml:"workers"`
	MaxTasksPerWorker int           `yaml:"max_tasks_per_worker"`
	StealAttempts     int           `yaml:"steal_attempts"`
	// IdleParkInterval is written in YAML as a Go duration string such as
	// "5ms": yaml.v3 decodes time.Duration fields with time.ParseDuration
	// and rejects a bare integer for them.
	IdleParkInterval time.Duration `yaml:"idle_park_interval"`
}

// DefaultSchedulerConfig returns sensible defaults.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Workers:           DefaultWorkers,
		MaxTasksPerWorker: DefaultMaxTasksPerWorker,
		StealAttempts:     DefaultStealAttempts,
		IdleParkInterval:  DefaultIdleParkInterval,
	}
}

// LoadSchedulerConfig reads a YAML-encoded SchedulerConfig from path,
// starting from the defaults so a partial file only overrides what it
// sets.
func LoadSchedulerConfig(path string) (SchedulerConfig, error) {
	cfg := DefaultSchedulerConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("realmsched: read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("realmsched: parse config %s: %w", path, err)
	}
	return cfg, nil
}
