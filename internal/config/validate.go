package config

import (
	"errors"
	"fmt"
)

// ValidationError contains details about what failed validation.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config.%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// Validate checks every field against the bounds in spec.md §6. Call it
// after ApplyDefaults, before any worker is started (spec.md §7: "fail fast
// with a message before any fork").
func (c *Config) Validate() error {
	var errs []error

	if c.N < 1 || c.N > 1000 {
		errs = append(errs, &ValidationError{Field: "N", Value: c.N, Message: "must be between 1 and 1000"})
	}

	minK := (c.N + 1) / 2 // ceil(N/2)
	if c.K < minK {
		errs = append(errs, &ValidationError{Field: "K", Value: c.K, Message: fmt.Sprintf("must be >= ceil(N/2) = %d", minK)})
	}

	if c.KClose >= c.K {
		errs = append(errs, &ValidationError{Field: "KClose", Value: c.KClose, Message: fmt.Sprintf("must be < K (%d) to avoid thrashing (K_open > K_close)", c.K)})
	}

	if c.Duration < 0 {
		errs = append(errs, &ValidationError{Field: "Duration", Value: c.Duration, Message: "must be >= 0 (0 = unbounded)"})
	}

	if c.Speed <= 0 {
		errs = append(errs, &ValidationError{Field: "Speed", Value: c.Speed, Message: "must be > 0"})
	}

	if c.Interval <= 0 {
		errs = append(errs, &ValidationError{Field: "Interval", Value: c.Interval, Message: "must be > 0"})
	}

	if c.MaxConcurrentPatients < 0 {
		errs = append(errs, &ValidationError{Field: "MaxConcurrentPatients", Value: c.MaxConcurrentPatients, Message: "must be >= 0 (0 = unbounded)"})
	}

	if c.LogPath == "" {
		errs = append(errs, &ValidationError{Field: "LogPath", Value: c.LogPath, Message: "must not be empty"})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
