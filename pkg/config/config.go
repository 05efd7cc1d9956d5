// Package config loads the mapper configuration from a YAML file, with
// environment overrides on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when no --config is given.
const DefaultFileName = ".unimodmapper.yaml"

// Config holds the data sources and runtime settings of the mapper.
type Config struct {
	UnimodPath      string   `yaml:"unimod_path"`
	UsermodPath     string   `yaml:"usermod_path"`
	ExtraPaths      []string `yaml:"extra_paths"`
	LogLevel        string   `yaml:"log_level"`
	ApproxCacheSize int      `yaml:"approx_cache_size"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		UnimodPath:      "unimod.xml",
		LogLevel:        "info",
		ApproxCacheSize: 256,
	}
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is only an error when required is set.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			if required || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith copies the non-zero values of other into c.
func (c *Config) mergeWith(other *Config) {
	if other.UnimodPath != "" {
		c.UnimodPath = other.UnimodPath
	}
	if other.UsermodPath != "" {
		c.UsermodPath = other.UsermodPath
	}
	if len(other.ExtraPaths) > 0 {
		c.ExtraPaths = other.ExtraPaths
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.ApproxCacheSize != 0 {
		c.ApproxCacheSize = other.ApproxCacheSize
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("UNIMODMAPPER_UNIMOD_PATH"); v != "" {
		c.UnimodPath = v
	}
	if v := os.Getenv("UNIMODMAPPER_USERMOD_PATH"); v != "" {
		c.UsermodPath = v
	}
	if v := os.Getenv("UNIMODMAPPER_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("UNIMODMAPPER_APPROX_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ApproxCacheSize = n
		}
	}
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.UnimodPath) == "" {
		return errors.New("unimod_path is required")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %s", c.LogLevel)
	}

	if c.ApproxCacheSize < 0 {
		return fmt.Errorf("approx_cache_size must be non-negative, got %d", c.ApproxCacheSize)
	}
	return nil
}
