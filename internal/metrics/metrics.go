// Package metrics exposes Prometheus collectors for notification
// dispatch.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for DispatchTotal.
const (
	OutcomeDelivered      = "delivered"
	OutcomeChannelFailure = "channel_failure"
	OutcomeStoreFailure   = "store_failure"
	OutcomeRejected       = "rejected"
)

// Metrics holds the dispatch collectors.
type Metrics struct {
	DispatchTotal    *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notify_dispatch_total",
			Help: "Notification dispatch attempts by protocol and outcome",
		}, []string{"protocol", "outcome"}),
		DispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notify_dispatch_duration_seconds",
			Help:    "Time spent publishing and recording a notification",
			Buckets: prometheus.DefBuckets,
		}, []string{"protocol"}),
	}

	reg.MustRegister(m.DispatchTotal, m.DispatchDuration)

	return m
}

// Observe records one dispatch. A nil *Metrics is a no-op.
func (m *Metrics) Observe(protocol, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.DispatchTotal.WithLabelValues(protocol, outcome).Inc()
	if outcome != OutcomeRejected {
		m.DispatchDuration.WithLabelValues(protocol).Observe(elapsed.Seconds())
	}
}
