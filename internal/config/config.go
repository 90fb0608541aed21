// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Bridge BridgeConfig `yaml:"bridge"`
}

type BridgeConfig struct {
	Port   PortConfig   `yaml:"port"`
	Poll   PollConfig   `yaml:"poll"`
	Framer FramerConfig `yaml:"framer"`
	Log    LogConfig    `yaml:"log"`
}

// ---- PORT ----

type PortConfig struct {
	Path          string `yaml:"path"`
	BaudRate      int    `yaml:"baud_rate"`
	ReadTimeoutMs int    `yaml:"read_timeout_ms"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs   int `yaml:"interval_ms"`
	BackoffMinMs int `yaml:"backoff_min_ms"`
	BackoffMaxMs int `yaml:"backoff_max_ms"`
}

// ---- FRAMER ----

type FramerConfig struct {
	MaxLineBytes int `yaml:"max_line_bytes"`
}

// ---- LOG ----

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads and parses a YAML config file. It does not validate.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return &cfg, nil
}
