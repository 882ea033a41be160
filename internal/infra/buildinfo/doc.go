// Package buildinfo provides build information for discount-server and
// discount-cli.
//
// This package exposes build-time information injected via ldflags:
//
//   - Version: Semantic version (e.g., "1.0.0")
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go runtime version
//
// Usage:
//
//	go build -ldflags "-X github.com/yndnr/discountd/internal/infra/buildinfo.Version=1.0.0"
package buildinfo
