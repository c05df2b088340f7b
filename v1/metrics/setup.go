package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics encapsulates the Prometheus registry and HTTP server responsible
// for exposing application metrics.
//
// This structure provides the components needed to register metrics collectors
// and serve them via the /metrics HTTP endpoint for Prometheus scraping.
type Metrics struct {
	// Server defines the HTTP server used to expose the /metrics endpoint.
	Server *http.Server

	// Registry is the Prometheus registry where all metrics are registered.
	// Each service maintains its own isolated registry to prevent metric name collisions.
	Registry *prometheus.Registry

	// Core built-in metrics
	queriesTotal   *prometheus.CounterVec
	queryDuration  *prometheus.HistogramVec
	poolAvailable  *prometheus.GaugeVec
	poolBorrowed   *prometheus.GaugeVec
	ingestMessages *prometheus.CounterVec
}

// NewMetrics initializes and returns a new instance of the Metrics struct.
// It sets up a dedicated Prometheus registry, registers default system collectors,
// wraps all metrics with a constant `service` label, and creates an HTTP server
// exposing the /metrics endpoint.
//
// The built-in metrics cover the database and ingest pipeline:
//   - queries_total{backend, kind, status}
//   - query_duration_seconds{backend, kind}
//   - pool_available{backend, identity} and pool_borrowed{backend, identity}
//   - ingest_messages_total{outcome}
//
// Example:
//
//	cfg := metrics.Config{
//	    Address:                 ":9090",
//	    ServiceName:             "cip-ingest",
//	    EnableDefaultCollectors: true,
//	}
//	metricsInstance := metrics.NewMetrics(cfg)
//	go metricsInstance.Server.ListenAndServe()
//
// Access metrics at: http://localhost:9090/metrics
func NewMetrics(cfg Config) *Metrics {
	if cfg.Address == "" {
		cfg.Address = DefaultMetricsAddress
	}

	// Create a new isolated Prometheus registry for this service.
	// This avoids metric collisions when multiple services run in the same process.
	registry := prometheus.NewRegistry()

	// Wrap the registry with a constant label for consistent observability.
	// All metrics emitted by this service will automatically include the label:
	//   service="<cfg.ServiceName>"
	wrappedRegistry := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	// Initialize the metrics struct
	m := &Metrics{
		Registry: registry,
	}

	// Define default metrics using helpers
	m.queriesTotal = createCounterVec("queries_total", "Total number of executed database statements", []string{"backend", "kind", "status"})
	m.queryDuration = createHistogramVec("query_duration_seconds", "Duration of database statements in seconds", []string{"backend", "kind"}, prometheus.DefBuckets)
	m.poolAvailable = createGaugeVec("pool_available", "Idle connections currently held by a pool", []string{"backend", "identity"})
	m.poolBorrowed = createGaugeVec("pool_borrowed", "Connections currently borrowed from a pool", []string{"backend", "identity"})
	m.ingestMessages = createCounterVec("ingest_messages_total", "Total number of consumed broker messages", []string{"outcome"})

	// Register the metrics
	wrappedRegistry.MustRegister(
		m.queriesTotal,
		m.queryDuration,
		m.poolAvailable,
		m.poolBorrowed,
		m.ingestMessages,
	)

	// Register standard collectors if enabled.
	// These provide essential runtime metrics for Go processes:
	//   - GoCollector: Memory usage, goroutines, GC stats
	//   - ProcessCollector: CPU, file descriptors, memory stats
	//   - BuildInfoCollector: Binary version/build info
	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	// Create an HTTP handler that serves metrics from the registry.
	// The handler exposes metrics at /metrics for Prometheus scraping.
	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	// Configure the HTTP server for exposing metrics.
	server := &http.Server{
		Addr:    cfg.Address,
		Handler: handler,
	}

	// Return the fully configured metrics instance.
	m.Server = server
	return m
}
