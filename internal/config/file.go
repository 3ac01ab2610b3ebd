package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML shape accepted by --config, pre-seeding flag
// defaults the same way the teacher's GlobalConfig pre-seeds its CLI
// (spec.md §6 expansion: "--config <path>"). CLI flags that were explicitly
// set always win — see cli.runSimulation.
type fileConfig struct {
	N                     *int     `yaml:"n"`
	K                     *int     `yaml:"k"`
	KClose                *int     `yaml:"k_close"`
	DurationSeconds       *float64 `yaml:"duration_seconds"`
	Speed                 *float64 `yaml:"speed"`
	Seed                  *uint64  `yaml:"seed"`
	IntervalSeconds       *float64 `yaml:"interval_seconds"`
	MaxConcurrentPatients *int     `yaml:"max_concurrent_patients"`
	LogPath               *string  `yaml:"log_path"`
}

// LoadFile reads a YAML config file and applies its fields onto cfg,
// overwriting only the fields present in the file.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if fc.N != nil {
		cfg.N = *fc.N
	}
	if fc.K != nil {
		cfg.K = *fc.K
	}
	if fc.KClose != nil {
		cfg.KClose = *fc.KClose
	}
	if fc.DurationSeconds != nil {
		cfg.Duration = durationFromSeconds(*fc.DurationSeconds)
	}
	if fc.Speed != nil {
		cfg.Speed = *fc.Speed
	}
	if fc.Seed != nil {
		cfg.Seed = *fc.Seed
	}
	if fc.IntervalSeconds != nil {
		cfg.Interval = durationFromSeconds(*fc.IntervalSeconds)
	}
	if fc.MaxConcurrentPatients != nil {
		cfg.MaxConcurrentPatients = *fc.MaxConcurrentPatients
	}
	if fc.LogPath != nil {
		cfg.LogPath = *fc.LogPath
	}

	return nil
}
