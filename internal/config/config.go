// Package config loads spanindex server settings from YAML, .env and the environment
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidPort indicates a port outside 1-65535
	ErrInvalidPort = errors.New("config: invalid port")

	// ErrInvalidLimit indicates a non-positive request limit
	ErrInvalidLimit = errors.New("config: invalid limit")
)

// Config is the server configuration
type Config struct {
	Server struct {
		Port        int `yaml:"port"`
		MetricsPort int `yaml:"metrics_port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Limits struct {
		MaxTextBytes int `yaml:"max_text_bytes"`
		MaxSpans     int `yaml:"max_spans"`
		MaxSteps     int `yaml:"max_steps"`
	} `yaml:"limits"`
}

// Default returns the built-in configuration
func Default() *Config {
	var cfg Config
	cfg.Server.Port = 50051
	cfg.Server.MetricsPort = 9090
	cfg.Log.Level = "info"
	cfg.Limits.MaxTextBytes = 4 << 20
	cfg.Limits.MaxSpans = 100000
	cfg.Limits.MaxSteps = 64
	return &cfg
}

// Load is LoadUnvalidated followed by Validate
func Load(path string) (*Config, error) {
	cfg, err := LoadUnvalidated(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadUnvalidated reads path over the defaults, then applies SPANINDEX_* environment
// overrides (a .env file in the working directory is loaded first if present).
// An empty path or a missing file keeps the defaults. Callers that apply further
// overrides, such as command-line flags, must call Validate themselves.
func LoadUnvalidated(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	ints := map[string]*int{
		"SPANINDEX_PORT":           &c.Server.Port,
		"SPANINDEX_METRICS_PORT":   &c.Server.MetricsPort,
		"SPANINDEX_MAX_TEXT_BYTES": &c.Limits.MaxTextBytes,
		"SPANINDEX_MAX_SPANS":      &c.Limits.MaxSpans,
		"SPANINDEX_MAX_STEPS":      &c.Limits.MaxSteps,
	}
	for key, dst := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = n
	}

	if level := os.Getenv("SPANINDEX_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if v := os.Getenv("SPANINDEX_LOG_PRETTY"); v != "" {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: SPANINDEX_LOG_PRETTY: %w", err)
		}
		c.Log.Pretty = pretty
	}
	return nil
}

// Validate checks ports and limits
func (c *Config) Validate() error {
	for name, port := range map[string]int{"port": c.Server.Port, "metrics_port": c.Server.MetricsPort} {
		if port < 1 || port > 65535 {
			return fmt.Errorf("%w: %s=%d", ErrInvalidPort, name, port)
		}
	}
	if c.Server.Port == c.Server.MetricsPort {
		return fmt.Errorf("%w: port and metrics_port are both %d", ErrInvalidPort, c.Server.Port)
	}
	if c.Limits.MaxTextBytes <= 0 || c.Limits.MaxSpans <= 0 || c.Limits.MaxSteps <= 0 {
		return fmt.Errorf("%w: limits must be positive", ErrInvalidLimit)
	}
	return nil
}
