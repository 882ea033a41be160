// Package metric provides Prometheus metrics for the discount service.
package metric

import "github.com/prometheus/client_golang/prometheus"

// StatsSource reports the current size of the code table.
type StatsSource interface {
	Stats() (total, used int)
}

// Collector reports code table size at scrape time.
type Collector struct {
	src  StatsSource
	desc *prometheus.Desc
}

// NewCollector creates a collector reading from src.
func NewCollector(src StatsSource) *Collector {
	return &Collector{
		src: src,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "codes_stored"),
			"Codes in the table by state.",
			[]string{"state"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	total, used := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(used), "used")
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(total-used), "unused")
}
