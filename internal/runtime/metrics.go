package runtime

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/arbor/pkg/domain"
)

// Metrics instruments dispatches for server-style hosts.
type Metrics struct {
	dispatches *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates and registers dispatch metrics. Pass
// prometheus.DefaultRegisterer outside of tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_dispatches_total",
				Help: "Commands dispatched, by command name and outcome.",
			},
			[]string{"command", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arbor_dispatch_duration_seconds",
				Help:    "Dispatch latency, including handler execution.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
	}
	reg.MustRegister(m.dispatches, m.duration)
	return m
}

// Observe records one dispatch.
func (m *Metrics) Observe(command string, result *domain.Result, elapsed time.Duration) {
	outcome := "success"
	if !result.OK() {
		outcome = "error"
	}
	m.dispatches.WithLabelValues(command, outcome).Inc()
	m.duration.WithLabelValues(command).Observe(elapsed.Seconds())
}
