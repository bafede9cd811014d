// Package config loads configuration from environment variables.
//
// Everything here is optional: the defaults come from host detection at
// store-resolution time. The WFM_* variables exist to pin the backend or
// redirect the store files, which is how the tool is exercised on machines
// that are not the target host.
package config

import (
	"fmt"
	"os"
)

// Config holds all tool configuration.
type Config struct {
	// Backend forces "legacy" or "modern" instead of detecting the host
	// version. Empty means detect.
	Backend string

	// Store file overrides. Empty means the host's fixed location.
	LegacyStorePath string
	ModernStorePath string

	// CacheDir overrides the cache base directory used for clone locations.
	CacheDir string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Backend:         envOr("WFM_BACKEND", ""),
		LegacyStorePath: envOr("WFM_LEGACY_STORE", ""),
		ModernStorePath: envOr("WFM_MODERN_STORE", ""),
		CacheDir:        envOr("WFM_CACHE_DIR", ""),
		LogLevel:        envOr("WFM_LOG_LEVEL", "info"),
		LogFormat:       envOr("WFM_LOG_FORMAT", "console"),
	}

	if cfg.Backend != "" && cfg.Backend != "legacy" && cfg.Backend != "modern" {
		return nil, fmt.Errorf("WFM_BACKEND must be \"legacy\" or \"modern\", got %q", cfg.Backend)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
