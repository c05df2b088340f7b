package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ObserveQuery records one executed statement: the counter by outcome and
// the duration histogram.
// Example: metrics.ObserveQuery("postgres", "select", "success", 12*time.Millisecond)
func (m *Metrics) ObserveQuery(backend, kind, status string, duration time.Duration) {
	m.queriesTotal.WithLabelValues(backend, kind, status).Inc()
	m.queryDuration.WithLabelValues(backend, kind).Observe(duration.Seconds())
}

// SetPoolGauges sets the pool occupancy gauges for one pool identity.
// Example: metrics.SetPoolGauges("postgres", "localhost:5432/cipdb@cipuser", 3, 2)
func (m *Metrics) SetPoolGauges(backend, identity string, available, borrowed int) {
	m.poolAvailable.WithLabelValues(backend, identity).Set(float64(available))
	m.poolBorrowed.WithLabelValues(backend, identity).Set(float64(borrowed))
}

// IncrementIngestMessages increments the consumed message counter.
// Example: metrics.IncrementIngestMessages("stored")
func (m *Metrics) IncrementIngestMessages(outcome string) {
	m.ingestMessages.WithLabelValues(outcome).Inc()
}

// CreateCounter creates a new CounterVec metric and registers it.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := createCounterVec(name, help, labels)
	m.Registry.MustRegister(counter)
	return counter
}

// CreateHistogram creates a new HistogramVec metric and registers it.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hist := createHistogramVec(name, help, labels, buckets)
	m.Registry.MustRegister(hist)
	return hist
}

// CreateGauge creates a new GaugeVec metric and registers it.
func (m *Metrics) CreateGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := createGaugeVec(name, help, labels)
	m.Registry.MustRegister(gauge)
	return gauge
}

// createCounterVec defines a new CounterVec with standard options.
// Used internally by NewMetrics to maintain consistency.
func createCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}

// createHistogramVec defines a new HistogramVec with configurable buckets.
// Used internally by NewMetrics for latency tracking.
func createHistogramVec(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		},
		labels,
	)
}

// createGaugeVec defines a new GaugeVec safely for resource monitoring.
// Used internally by NewMetrics to track resource utilization.
func createGaugeVec(name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}
