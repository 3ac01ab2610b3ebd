package config

import (
	"os"
	"strconv"
)

// envOverrides maps environment variables to config field setters, applied
// after any config file and before ApplyDefaults and Validate. Unparseable
// values are ignored rather than treated as fatal (unlike the CLI flags they
// mirror, which reject an unparseable value).
var envOverrides = []struct {
	envVar string
	apply  func(*Config, string)
}{
	{
		envVar: "SOR_N",
		apply: func(c *Config, v string) {
			if n, err := strconv.Atoi(v); err == nil {
				c.N = n
			}
		},
	},
	{
		envVar: "SOR_K",
		apply: func(c *Config, v string) {
			if k, err := strconv.Atoi(v); err == nil {
				c.K = k
			}
		},
	},
	{
		envVar: "SOR_K_CLOSE",
		apply: func(c *Config, v string) {
			if k, err := strconv.Atoi(v); err == nil {
				c.KClose = k
			}
		},
	},
	{
		envVar: "SOR_DURATION_SECONDS",
		apply: func(c *Config, v string) {
			if secs, err := strconv.ParseFloat(v, 64); err == nil {
				c.Duration = durationFromSeconds(secs)
			}
		},
	},
	{
		envVar: "SOR_SPEED",
		apply: func(c *Config, v string) {
			if speed, err := strconv.ParseFloat(v, 64); err == nil {
				c.Speed = speed
			}
		},
	},
	{
		envVar: "SOR_SEED",
		apply: func(c *Config, v string) {
			if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
				c.Seed = seed
			}
		},
	},
	{
		envVar: "SOR_INTERVAL_SECONDS",
		apply: func(c *Config, v string) {
			if secs, err := strconv.ParseFloat(v, 64); err == nil {
				c.Interval = durationFromSeconds(secs)
			}
		},
	},
	{
		envVar: "SOR_MAX_CONCURRENT_PATIENTS",
		apply: func(c *Config, v string) {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxConcurrentPatients = n
			}
		},
	},
	{
		envVar: "SOR_LOG_PATH",
		apply: func(c *Config, v string) {
			c.LogPath = v
		},
	},
}

// ApplyEnvOverrides modifies cfg in place with any matching environment
// variable values (spec.md §6 expansion: env vars take the same precedence
// slot as the teacher's RALPH_* table, above defaults and below explicit
// CLI flags).
func ApplyEnvOverrides(cfg *Config) {
	for _, override := range envOverrides {
		if val := os.Getenv(override.envVar); val != "" {
			override.apply(cfg, val)
		}
	}
}
