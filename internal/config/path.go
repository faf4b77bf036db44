package config

import (
	"os"
	"path/filepath"
)

// DefaultConfigPath returns the first config file that exists among the
// conventional locations, or "" when none is present.
func DefaultConfigPath() string {
	candidates := []string{}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidates = append(candidates,
			filepath.Join(xdg, "siphon", "config.yaml"),
			filepath.Join(xdg, "siphon", "config.json"),
		)
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		candidates = append(candidates,
			filepath.Join(home, ".siphon", "config.yaml"),
			filepath.Join(home, ".siphon", "config.json"),
		)
	}
	candidates = append(candidates,
		"/etc/siphon/config.yaml",
		"/etc/siphon/config.json",
	)
	for _, p := range candidates {
		if isFile(p) {
			return p
		}
	}
	return ""
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
