// Package main provides the entry point for discount-server.
//
// The server provides:
//
//   - A TCP binary protocol for generating and redeeming discount codes
//   - A JSON snapshot file rewritten after every change
//   - A Prometheus /metrics endpoint
//
// Usage:
//
//	discount-server [flags]
//	discount-server -config /path/to/config.yaml
//
// The server loads configuration, restores codes from the snapshot file,
// and serves until SIGINT or SIGTERM. On shutdown it stops accepting
// connections and drains pending snapshot writes.
package main
