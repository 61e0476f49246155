// Package config loads the lessonflow configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "lessonflow.yaml"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// HistoryConfig tunes the undo timeline.
type HistoryConfig struct {
	MaxEntries int    `yaml:"max_entries" json:"max_entries"`
	Debounce   string `yaml:"debounce" json:"debounce"`
}

// RedisConfig configures the redis store and locker.
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
	TTL      string `yaml:"ttl" json:"ttl"`
}

// StoreConfig selects where flows are persisted.
type StoreConfig struct {
	Driver string      `yaml:"driver" json:"driver"`
	Path   string      `yaml:"path" json:"path"`
	Redis  RedisConfig `yaml:"redis" json:"redis"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Port int `yaml:"port" json:"port"`
}

// MetricsConfig toggles the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Config is the root of lessonflow.yaml.
type Config struct {
	History HistoryConfig `yaml:"history" json:"history"`
	Store   StoreConfig   `yaml:"store" json:"store"`
	HTTP    HTTPConfig    `yaml:"http" json:"http"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
	Log     LogConfig     `yaml:"log" json:"log"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		History: HistoryConfig{MaxEntries: 20, Debounce: "750ms"},
		Store:   StoreConfig{Driver: DriverMemory},
		HTTP:    HTTPConfig{Port: 8080},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a configuration file (YAML or JSON by extension) over the
// defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks enumerations and durations.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverRedis, DriverSQLite:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.History.MaxEntries < 1 {
		return fmt.Errorf("history.max_entries must be positive, got %d", c.History.MaxEntries)
	}
	if _, err := c.DebounceDelay(); err != nil {
		return err
	}
	if _, err := c.RedisTTL(); err != nil {
		return err
	}
	return nil
}

// DebounceDelay parses history.debounce.
func (c Config) DebounceDelay() (time.Duration, error) {
	return parseDuration("history.debounce", c.History.Debounce)
}

// RedisTTL parses store.redis.ttl. Zero means no expiry.
func (c Config) RedisTTL() (time.Duration, error) {
	return parseDuration("store.redis.ttl", c.Store.Redis.TTL)
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: negative duration", field)
	}
	return d, nil
}
