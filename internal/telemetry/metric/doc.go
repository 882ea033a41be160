// Package metric provides Prometheus metrics for the discount service.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: metric definitions, private registry and HTTP handler
//   - collector.go: custom collector reporting code table size on scrape
//
// Metrics include:
//
//   - Generate and redeem outcomes
//   - Snapshot writes, failures and latency
//   - Persistence backlog and degraded state
//   - Active protocol connections
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
