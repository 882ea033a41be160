// Package metric provides Prometheus metrics for the discount service.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "discount"

// Registry holds all application metrics.
//
// Each Registry owns its prometheus.Registry, so several instances (e.g. in
// tests) never collide on registration.
type Registry struct {
	reg *prometheus.Registry

	// Code metrics
	CodesGenerated   prometheus.Counter
	GenerateRequests *prometheus.CounterVec
	Redemptions      *prometheus.CounterVec

	// Persistence metrics
	SnapshotWrites   prometheus.Counter
	SnapshotFailures prometheus.Counter
	SnapshotDuration prometheus.Histogram
	PersistPending   prometheus.Gauge
	PersistDegraded  prometheus.Gauge
	SignalsDropped   prometheus.Counter

	// Protocol metrics
	ConnectionsActive prometheus.Gauge
	ConnectionsTotal  prometheus.Counter
	UnknownOpcodes    prometheus.Counter
	RequestDuration   *prometheus.HistogramVec
}

// NewRegistry creates a registry with all metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		CodesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "codes_generated_total",
			Help:      "Number of codes inserted by generate requests.",
		}),
		GenerateRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generate_requests_total",
			Help:      "Generate requests by result (ok, rejected, exhausted).",
		}, []string{"result"}),
		Redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redemptions_total",
			Help:      "Redemption attempts by result.",
		}, []string{"result"}),

		SnapshotWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_writes_total",
			Help:      "Successful snapshot writes.",
		}),
		SnapshotFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_failures_total",
			Help:      "Failed snapshot writes.",
		}),
		SnapshotDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_duration_seconds",
			Help:      "Time spent writing a snapshot.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		PersistPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "persist_pending",
			Help:      "Persistence signals waiting for the consumer.",
		}),
		PersistDegraded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "persist_degraded",
			Help:      "1 while snapshot writes are failing and being retried.",
		}),
		SignalsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_signals_dropped_total",
			Help:      "Signals received after the persistence queue was closed.",
		}),

		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Open protocol connections.",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Accepted protocol connections.",
		}),
		UnknownOpcodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_opcodes_total",
			Help:      "Frames with an unrecognized opcode.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time spent handling a protocol request, by opcode.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 16),
		}, []string{"op"}),
	}

	r.reg.MustRegister(
		r.CodesGenerated,
		r.GenerateRequests,
		r.Redemptions,
		r.SnapshotWrites,
		r.SnapshotFailures,
		r.SnapshotDuration,
		r.PersistPending,
		r.PersistDegraded,
		r.SignalsDropped,
		r.ConnectionsActive,
		r.ConnectionsTotal,
		r.UnknownOpcodes,
		r.RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// MustRegister registers additional collectors.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.reg.MustRegister(cs...)
}

// Gatherer exposes the underlying registry for scraping and tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
