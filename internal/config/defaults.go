package config

const (
	// DefaultN is the waiting-room capacity when --N is not given.
	DefaultN = 20
	// DefaultSpeed scales every simulated duration (spec.md §6).
	DefaultSpeed = 2.0
	// DefaultIntervalSeconds is the mean patient inter-arrival spacing.
	DefaultIntervalSeconds = 3.0
	// DefaultLogPath is the log file written when --log is not given.
	DefaultLogPath = "sor.log"
)

// ApplyDefaults fills in the N-dependent hysteresis thresholds (spec.md
// §4.4: K_open defaults to ceil(N/2), K_close to floor(N/3)) and any other
// zero-valued field, without overriding values the caller already set (e.g.
// from CLI flags or a config file).
func (c *Config) ApplyDefaults() {
	if c.N == 0 {
		c.N = DefaultN
	}
	if c.K == 0 {
		c.K = (c.N + 1) / 2 // ceil(N/2)
	}
	if c.KClose == 0 {
		c.KClose = c.N / 3 // floor(N/3)
	}
	if c.Speed == 0 {
		c.Speed = DefaultSpeed
	}
	if c.Interval == 0 {
		c.Interval = durationFromSeconds(DefaultIntervalSeconds)
	}
	if c.LogPath == "" {
		c.LogPath = DefaultLogPath
	}
}
