package config

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// fileConfig is the YAML shape of an engine config file. Durations are
// Go duration strings ("5m", "24h"); zero values fall back to the
// defaults.
type fileConfig struct {
	LogLevel                string         `yaml:"logLevel"`
	CatalogPath             string         `yaml:"catalogPath"`
	CorrelationWindow       string         `yaml:"correlationWindow"`
	GlobalCorrelationWindow string         `yaml:"globalCorrelationWindow"`
	TrendWindow             string         `yaml:"trendWindow"`
	CorrelationCacheSize    int            `yaml:"correlationCacheSize"`
	BatchWorkers            int            `yaml:"batchWorkers"`
	DefaultUserBase         int            `yaml:"defaultUserBase"`
	ComponentUserBase       map[string]int `yaml:"componentUserBase"`
}

// LoadFile loads an engine configuration from a YAML file using koanf,
// layering the file's values over the defaults and validating the result.
//
// Error cases:
//   - File not found or cannot be read
//   - Invalid YAML syntax
//   - Unparseable duration strings
//   - Validation failure of the merged config
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load engine config from %q: %w", path, err)
	}

	var fc fileConfig
	if err := k.UnmarshalWithConf("", &fc, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to parse engine config from %q: %w", path, err)
	}

	cfg := Default()
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.CatalogPath != "" {
		cfg.CatalogPath = fc.CatalogPath
	}
	if fc.CorrelationCacheSize != 0 {
		cfg.CorrelationCacheSize = fc.CorrelationCacheSize
	}
	if fc.BatchWorkers != 0 {
		cfg.BatchWorkers = fc.BatchWorkers
	}
	if fc.DefaultUserBase != 0 {
		cfg.DefaultUserBase = fc.DefaultUserBase
	}
	if len(fc.ComponentUserBase) > 0 {
		cfg.ComponentUserBase = fc.ComponentUserBase
	}

	var err error
	if cfg.CorrelationWindow, err = overrideDuration(cfg.CorrelationWindow, fc.CorrelationWindow); err != nil {
		return nil, fmt.Errorf("correlationWindow: %w", err)
	}
	if cfg.GlobalCorrelationWindow, err = overrideDuration(cfg.GlobalCorrelationWindow, fc.GlobalCorrelationWindow); err != nil {
		return nil, fmt.Errorf("globalCorrelationWindow: %w", err)
	}
	if cfg.TrendWindow, err = overrideDuration(cfg.TrendWindow, fc.TrendWindow); err != nil {
		return nil, fmt.Errorf("trendWindow: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config validation failed for %q: %w", path, err)
	}
	return cfg, nil
}

func overrideDuration(current time.Duration, raw string) (time.Duration, error) {
	if raw == "" {
		return current, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	return d, nil
}
