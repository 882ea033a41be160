// Package config provides server configuration for the discount service.
//
// This package defines the server configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Business validation (addresses, durations, paths)
//   - normalize.go: Cleaned copy of the config for logging
//
// Configuration is loaded via internal/infra/confloader and supports
// multiple sources: defaults, files and environment variables.
package config
