// Package metrics provides Prometheus-based monitoring and metrics collection
// functionality for CIP services.
//
// The metrics package is designed to provide a standardized observability
// approach with features such as configurable HTTP endpoints for metrics exposure,
// automatic runtime instrumentation, and integration with the Fx dependency
// injection framework.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - MetricsCollector interface: Defines the contract for metrics operations
//   - Metrics struct: Concrete implementation of the MetricsCollector interface
//   - NewMetrics constructor: Returns *Metrics (concrete type)
//   - DatabaseObserver: Bridges database operation events into the built-in series
//   - FX module: Provides *Metrics and the observer for dependency injection
//
// Core Features:
//   - Exposes a configurable /metrics endpoint for Prometheus scraping
//   - Integration with go.uber.org/fx for automatic lifecycle management
//   - Automatic registration of Go runtime and process-level metrics
//   - Support for custom metric registration (counters, gauges, histograms)
//   - Service name labelling for multi-service observability
//   - Graceful startup and shutdown via Fx lifecycle hooks
//
// # Built-in Metrics
//
// The package ships with series covering the database client and the
// ingest pipeline:
//
//	queries_total{backend, kind, status}       counter of executed statements
//	query_duration_seconds{backend, kind}      statement latency histogram
//	pool_available{backend, identity}          idle connections per pool
//	pool_borrowed{backend, identity}           borrowed connections per pool
//	ingest_messages_total{outcome}             consumed broker messages
//
// # Direct Usage (Without FX)
//
// For simple applications or tests, create metrics directly:
//
//	import "github.com/cipworks/common/v1/metrics"
//
//	cfg := metrics.Config{
//		Address:                 ":9090",
//		EnableDefaultCollectors: true,
//		ServiceName:             "cip-ingest",
//	}
//
//	m := metrics.NewMetrics(cfg)
//	go m.Server.ListenAndServe()
//
//	m.ObserveQuery("postgres", "select", "success", 12*time.Millisecond)
//
// # Feeding From the Database Client
//
// The DatabaseObserver implements the observability.Observer contract the
// database backends report to. Attach it via the backend config:
//
//	m := metrics.NewMetrics(cfg)
//	client, err := postgres.NewClient(ctx, postgres.Config{
//		Connection: conn,
//		Observer:   metrics.NewDatabaseObserver(m),
//	})
//
// Every statement then updates the query counter, the latency histogram
// and the pool gauges, with no calls in application code.
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		metrics.FXModule, // Provides *Metrics and observability.Observer
//		fx.Provide(func() metrics.Config {
//			return metrics.Config{
//				Address:                 ":9090",
//				EnableDefaultCollectors: true,
//				ServiceName:             "cip-ingest",
//			}
//		}),
//	)
//	app.Run()
//
// # Custom Metrics
//
// Applications can register additional Prometheus metrics using the exposed
// Registry or the Create helpers:
//
//	queueDepth := m.CreateGauge("queue_depth", "Pending messages per queue", []string{"queue"})
//	queueDepth.WithLabelValues("raw").Set(12)
//
// # Thread Safety
//
// All methods on the Metrics struct and Prometheus collectors are safe for
// concurrent use by multiple goroutines.
package metrics
