// Package config provides loading and environment overlay for siphon
// configuration. It exposes a Default() baseline, file loading in JSON or
// YAML, and a SIPHON_* environment overlay.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load(config.DefaultConfigPath()); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
package config
