package config

import "strings"

// Normalize fills defaults. Call it only after Validate.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	defaults(cfg)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
}
