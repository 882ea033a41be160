// Package confloader provides configuration loading mechanism.
//
// This package implements a layered configuration loader using koanf as
// the underlying library.
//
// Features:
//
//   - Multiple Sources: defaults map, YAML file, environment variables
//   - Watch Support: fsnotify callbacks when the config file changes
//   - Type Safety: Unmarshaling into typed structs
//
// Priority (highest to lowest):
//
//  1. Environment variables (DISCOUNT_ prefix)
//  2. Configuration file
//  3. Default values
package confloader
