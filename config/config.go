// Package config loads mediaplug host settings from an optional YAML file
// and MEDIAPLUG_* environment variables. Environment values win.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment variables
const (
	EnvConfig      = "MEDIAPLUG_CONFIG"
	EnvBackendPath = "MEDIAPLUG_BACKEND_PATH"
	EnvBackend     = "MEDIAPLUG_BACKEND"
	EnvStatic      = "MEDIAPLUG_STATIC"
	EnvLogLevel    = "MEDIAPLUG_LOG_LEVEL"
	EnvLogFormat   = "MEDIAPLUG_LOG_FORMAT"
	EnvProbeCache  = "MEDIAPLUG_PROBE_CACHE"
)

// Config holds the host configuration.
type Config struct {
	// SearchPaths are scanned for backend plugins, in order.
	SearchPaths []string `yaml:"search_paths"`
	// Backend is the preferred backend. Empty means auto-select.
	Backend string `yaml:"backend"`
	// Static uses the compiled-in engines instead of plugin files.
	Static bool `yaml:"static"`
	// Libraries maps engine names to native library paths.
	Libraries map[string]string `yaml:"libraries"`
	// ProbeCacheSize bounds the negative probe cache; 0 disables it.
	ProbeCacheSize int `yaml:"probe_cache_size"`

	Log   LogConfig   `yaml:"log"`
	Watch WatchConfig `yaml:"watch"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// WatchConfig holds settings for the watch command
type WatchConfig struct {
	Debounce    time.Duration `yaml:"debounce"`
	MetricsAddr string        `yaml:"metrics_addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ProbeCacheSize: 256,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Watch: WatchConfig{
			Debounce:    500 * time.Millisecond,
			MetricsAddr: ":9090",
		},
	}
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() {
	if paths := getEnv(EnvBackendPath, ""); paths != "" {
		for _, p := range strings.Split(paths, ";") {
			if p = strings.TrimSpace(p); p != "" {
				c.SearchPaths = append(c.SearchPaths, p)
			}
		}
	}
	c.Backend = getEnv(EnvBackend, c.Backend)
	c.Static = getEnvBool(EnvStatic, c.Static)
	c.Log.Level = getEnv(EnvLogLevel, c.Log.Level)
	c.Log.Format = getEnv(EnvLogFormat, c.Log.Format)
	c.ProbeCacheSize = getEnvInt(EnvProbeCache, c.ProbeCacheSize)
}

// Validate checks the configuration and normalizes names to lower case.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Log.Format)
	}
	if c.ProbeCacheSize < 0 {
		return fmt.Errorf("probe cache size must not be negative")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch debounce must not be negative")
	}

	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if len(c.Libraries) > 0 {
		libs := make(map[string]string, len(c.Libraries))
		for name, path := range c.Libraries {
			if path == "" {
				return fmt.Errorf("library path for %s is empty", name)
			}
			libs[strings.ToLower(name)] = path
		}
		c.Libraries = libs
	}
	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
