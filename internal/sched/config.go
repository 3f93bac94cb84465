package sched

import (
	"fmt"
	"os"

	yaml "github.com/goccy/go-yaml"
)

// Config mirrors config.yml
type Config struct {
	TickMS    int    `yaml:"tick_ms"`    // 5 (by default), real-time pacer granularity
	Realtime  bool   `yaml:"realtime"`   // false (by default), pace virtual time against the wall clock
	MaxSteps  int    `yaml:"max_steps"`  // 0 (by default) = unbounded
	LogLevel  string `yaml:"log_level"`  // info (by default)
	LogFormat string `yaml:"log_format"` // text (by default)
	TraceCSV  string `yaml:"trace_csv"`  // optional CSV event log path
}

// DefaultConfig is used when no config file is found.
func DefaultConfig() Config {
	return Config{
		TickMS:    5,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads YAML and overrides defaults; empty path or unreadable file =
// defaults only.
func Load(path string) Config {
	cfg, err := LoadFile(path)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// LoadFile is Load that reports read and parse errors.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.clamp()
	return cfg, nil
}

// clamp replaces out-of-range values with defaults.
func (c *Config) clamp() {
	def := DefaultConfig()
	if c.TickMS <= 0 {
		c.TickMS = def.TickMS
	}
	if c.MaxSteps < 0 {
		c.MaxSteps = 0
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = def.LogFormat
	}
}
