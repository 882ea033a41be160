// Package httpserver provides the metrics and health HTTP server.
//
// Endpoints:
//
//   - GET /metrics: Prometheus text exposition
//   - GET /health: liveness, always 200 while the process serves
//   - GET /ready: 503 while snapshot persistence is degraded
//
// Every request passes through Recover, RequestID and AccessLog, plus
// NetworkACL when an allow list is configured.
package httpserver
