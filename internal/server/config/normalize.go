package config

import (
	"path/filepath"
	"strings"
)

// Normalize returns a copy of the config with cleaned values: lower-case
// log settings and an absolute snapshot path.
//
// This is used for logging the effective configuration.
func Normalize(cfg *ServerConfig) *ServerConfig {
	normalized := *cfg

	normalized.Log.Level = strings.ToLower(strings.TrimSpace(normalized.Log.Level))
	normalized.Log.Format = strings.ToLower(strings.TrimSpace(normalized.Log.Format))

	if normalized.Storage.File != "" {
		if abs, err := filepath.Abs(normalized.Storage.File); err == nil {
			normalized.Storage.File = abs
		}
	}

	return &normalized
}

// LogAttrs returns the effective configuration as slog key/value pairs.
func LogAttrs(cfg *ServerConfig) []any {
	return []any{
		"tcp_addr", cfg.Server.TCP.Addr,
		"poll_interval", cfg.Server.TCP.PollInterval,
		"rate_limit", cfg.Server.TCP.RateLimit,
		"close_on_unknown_opcode", cfg.Server.TCP.CloseOnUnknownOpcode,
		"storage_file", cfg.Storage.File,
		"max_attempts", cfg.Codes.MaxAttempts,
		"metrics_addr", cfg.Metrics.Addr,
		"log_level", cfg.Log.Level,
		"show_codes", cfg.Log.ShowCodes,
	}
}
