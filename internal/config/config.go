package config

import "time"

// Config holds every tunable of the analysis engine. The engine is a
// deterministic rule engine: rules and thresholds are configuration,
// not inference.
type Config struct {
	// LogLevel is the logging level (debug, info, warn, error)
	LogLevel string

	// CatalogPath is the optional path to a YAML pattern catalog.
	// When empty the built-in catalog is used.
	CatalogPath string

	// CorrelationWindow is the pairwise correlation window around an
	// entry's timestamp
	CorrelationWindow time.Duration

	// GlobalCorrelationWindow is the forward-scan window used by
	// batch-wide temporal clustering
	GlobalCorrelationWindow time.Duration

	// TrendWindow is the time-bucket width for trend analysis
	TrendWindow time.Duration

	// CorrelationCacheSize bounds the LRU correlation cache
	CorrelationCacheSize int

	// BatchWorkers is the number of concurrent workers for batch
	// analysis. 1 analyzes the batch sequentially.
	BatchWorkers int

	// DefaultUserBase is the affected-user base figure for components
	// missing from ComponentUserBase
	DefaultUserBase int

	// ComponentUserBase maps component names to their affected-user
	// base figures
	ComponentUserBase map[string]int
}

// Default returns the engine defaults
func Default() *Config {
	return &Config{
		LogLevel:                "info",
		CorrelationWindow:       5 * time.Minute,
		GlobalCorrelationWindow: 10 * time.Minute,
		TrendWindow:             24 * time.Hour,
		CorrelationCacheSize:    512,
		BatchWorkers:            1,
		DefaultUserBase:         100,
		ComponentUserBase: map[string]int{
			"booking":     2000,
			"payment-api": 1500,
			"search":      3000,
			"auth":        2500,
			"checkout":    1800,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.CorrelationWindow <= 0 {
		return NewConfigError("CorrelationWindow must be positive")
	}
	if c.GlobalCorrelationWindow <= 0 {
		return NewConfigError("GlobalCorrelationWindow must be positive")
	}
	if c.TrendWindow <= 0 {
		return NewConfigError("TrendWindow must be positive")
	}
	if c.CorrelationCacheSize <= 0 {
		return NewConfigError("CorrelationCacheSize must be positive")
	}
	if c.BatchWorkers < 1 {
		return NewConfigError("BatchWorkers must be at least 1")
	}
	if c.DefaultUserBase < 0 {
		return NewConfigError("DefaultUserBase must not be negative")
	}
	return nil
}
