package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	logpkg "github.com/rzbill/siphon/pkg/log"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	BufferSize   int           `json:"bufferSize" yaml:"bufferSize"`
	HTTPAddr     string        `json:"httpAddr" yaml:"httpAddr"`
	AuthToken    string        `json:"authToken" yaml:"authToken"`
	DashboardDir string        `json:"dashboardDir" yaml:"dashboardDir"`
	ReadLimit    int           `json:"readLimit" yaml:"readLimit"`
	WriteTimeout time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
	Log          logpkg.Config `json:"log" yaml:"log"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		BufferSize:   1000,
		HTTPAddr:     ":7411",
		ReadLimit:    100,
		WriteTimeout: 10 * time.Second,
		Log: logpkg.Config{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.normalize()
	return cfg, nil
}

// normalize clamps out-of-range values back to usable ones.
func (c *Config) normalize() {
	if c.BufferSize < 1 {
		c.BufferSize = 1
	}
	if c.ReadLimit < 1 {
		c.ReadLimit = Default().ReadLimit
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = Default().HTTPAddr
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = Default().WriteTimeout
	}
}
