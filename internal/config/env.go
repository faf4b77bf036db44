package config

import (
	"os"
	"strconv"
	"time"
)

// FromEnv overlays SIPHON_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("SIPHON_BUFFER_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BufferSize = n
		}
	}
	if v := os.Getenv("SIPHON_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("SIPHON_AUTH_TOKEN"); v != "" {
		cfg.AuthToken = v
	}
	if v := os.Getenv("SIPHON_DASHBOARD_DIR"); v != "" {
		cfg.DashboardDir = v
	}
	if v := os.Getenv("SIPHON_READ_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ReadLimit = n
		}
	}
	if v := os.Getenv("SIPHON_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.WriteTimeout = d
		}
	}
	if v := os.Getenv("SIPHON_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SIPHON_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("SIPHON_LOG_FILE"); v != "" {
		cfg.Log.FilePath = v
	}
	cfg.normalize()
}
