// Package config parses and validates the simulation's parameters
// (spec.md §6). It follows the teacher's convention of a plain struct with a
// Validate method and a defaulting pass applied before validation.
package config

import "time"

// Config holds the simulation's run parameters.
type Config struct {
	N        int           // waiting-room capacity, 1..1000
	K        int           // registration desk #2 open threshold (K_open)
	KClose   int           // desk #2 close threshold; derived if zero
	Duration time.Duration // 0 = unbounded
	Speed    float64       // simulated-time scale factor, >0
	Seed     uint64
	Interval time.Duration // mean patient inter-arrival spacing

	MaxConcurrentPatients int // 0 = unbounded (expansion, spec.md §4.9)
	LogPath               string
	ConfigPath            string // optional YAML file of the same fields
	NoTUI                 bool
}

func durationFromSeconds(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}
