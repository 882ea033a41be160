// Package logger provides structured logging for the discount service.
//
// This package wraps log/slog:
//
//   - logger.go: logger configuration, dynamic level and the global default
//   - context.go: context-aware logging with connection IDs
//   - redact.go: discount code masking
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering, adjustable at runtime
//   - Discount codes masked unless explicitly enabled
//   - Component-scoped *slog.Logger values for the server and storage layers
package logger
