// Package config loads engine configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config carries every tunable the engine and its tooling read. Defaults
// are production values; RL training overrides per worker.
type Config struct {
	// CacheCapacity bounds the effect cache per engine instance.
	CacheCapacity int `env:"JOKER_CACHE_CAPACITY" envDefault:"4096"`

	// RetriggerCap bounds invocations of one joker per scoring call.
	RetriggerCap int `env:"JOKER_RETRIGGER_CAP" envDefault:"100"`

	// MaxSlots is the joker slot capacity.
	MaxSlots int `env:"JOKER_MAX_SLOTS" envDefault:"5"`

	// DBPath is the SQLite file for session snapshots. Empty disables
	// persistence.
	DBPath string `env:"JOKER_DB_PATH" envDefault:"jokersim.db"`

	// CatalogDir holds joker catalog YAML files. Empty uses built-in
	// metadata only.
	CatalogDir string `env:"JOKER_CATALOG_DIR"`

	// OpsAddr is the listen address of the operational HTTP surface.
	// Empty disables it.
	OpsAddr string `env:"JOKER_OPS_ADDR"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
