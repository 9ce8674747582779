// Package metrics collects and exposes Prometheus metrics for the procedure
// router.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records per-procedure call counts and latencies. It implements
// the router transport's CallRecorder.
type Collector struct {
	callsTotal   *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sponsorhub_rpc_calls_total",
			Help: "Procedure calls by procedure name and outcome error kind (\"ok\" on success).",
		}, []string{"procedure", "outcome"}),
		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sponsorhub_rpc_call_duration_seconds",
			Help:    "Procedure call latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"procedure"}),
	}
	reg.MustRegister(c.callsTotal, c.callDuration)
	return c
}

// ObserveCall records one completed procedure call.
func (c *Collector) ObserveCall(procedure, outcome string, duration time.Duration) {
	c.callsTotal.WithLabelValues(procedure, outcome).Inc()
	c.callDuration.WithLabelValues(procedure).Observe(duration.Seconds())
}

// Handler returns the Prometheus scrape handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
