package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// HealthSource reports whether the service can currently persist changes.
type HealthSource interface {
	Degraded() bool
}

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Metrics serves /metrics.
	Metrics http.Handler

	// Health backs /ready. Nil means always ready.
	Health HealthSource

	// Logger for request logging.
	Logger *slog.Logger

	// AllowList is the IP/CIDR allowlist (empty = no restriction).
	AllowList []string
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Health != nil && cfg.Health.Degraded() {
			writeStatus(w, http.StatusServiceUnavailable, "degraded")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	// Order: Recover -> RequestID -> AccessLog -> NetworkACL -> mux
	middlewares := []Middleware{
		Recover(logger),
		RequestID(),
		AccessLog(logger),
	}
	if len(cfg.AllowList) > 0 {
		middlewares = append(middlewares, NetworkACL(&NetworkACLConfig{
			AllowList: cfg.AllowList,
			Logger:    logger,
		}))
	}

	return Chain(mux, middlewares...)
}

func writeStatus(w http.ResponseWriter, status int, state string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": state,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
