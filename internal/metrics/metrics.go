// Package metrics exposes Prometheus metrics for email processing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "email_assistant"

// Metrics holds the collectors recorded by the assistant
type Metrics struct {
	processed          *prometheus.CounterVec
	failures           prometheus.Counter
	generationDuration prometheus.Histogram
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_processed_total",
			Help:      "Emails processed to completion, by route.",
		}, []string{"route"}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "email_processing_failures_total",
			Help:      "Workflow runs that ended in an error.",
		}),
		generationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Latency of generation service calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
		}),
	}

	for _, c := range []prometheus.Collector{m.processed, m.failures, m.generationDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveProcessed counts a completed run on the given route
func (m *Metrics) ObserveProcessed(route string) {
	if m == nil {
		return
	}
	m.processed.WithLabelValues(route).Inc()
}

// ObserveFailure counts a failed run
func (m *Metrics) ObserveFailure() {
	if m == nil {
		return
	}
	m.failures.Inc()
}

// ObserveGeneration records the latency of one generation call
func (m *Metrics) ObserveGeneration(d time.Duration) {
	if m == nil {
		return
	}
	m.generationDuration.Observe(d.Seconds())
}
