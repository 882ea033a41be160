// Package shutdown provides graceful shutdown for the discount service.
//
// This package handles process termination signals:
//
//   - Signal handling (SIGINT, SIGTERM)
//   - Timeout-bounded cleanup hooks, run in reverse registration order
//   - A context cancelled when shutdown begins
//
// Usage:
//
//	h := shutdown.NewHandler(30 * time.Second)
//	h.OnShutdown(srv.Shutdown)
//	go srv.Serve(h.Context())
//	err := h.Wait()
package shutdown
