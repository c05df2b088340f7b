// Package ingest consumes gateway messages from an AMQP broker and
// stores them in the database.
//
// The package has three parts:
//   - Consumer: manages the broker connection, declares the topic
//     exchange and queue, and delivers messages on a channel. The
//     connection is monitored and re-established automatically.
//   - Handler: decodes each message and writes it to the database.
//     Messages on the "gateway.status" routing key go to the
//     gateway_status table, everything else goes to raw_log. When a
//     state manager is attached, the handler also maintains the shared
//     liveness keys.
//   - Pipeline: runs a pool of workers draining the consumer channel
//     through the handler, acknowledging stored messages and rejecting
//     failed ones without requeueing.
//
// # Direct Usage (Without FX)
//
//	consumer, err := ingest.NewConsumer(ingest.Config{
//		Connection: ingest.Connection{
//			Host:     "localhost",
//			Port:     5672,
//			User:     "guest",
//			Password: "guest",
//		},
//		Channel: ingest.Channel{
//			ExchangeName: "cip.ingest",
//			QueueName:    "cip.ingest.raw",
//			RoutingKeys:  []string{"raw.#", "gateway.status"},
//		},
//		Workers: 2,
//	})
//	if err != nil {
//		return err
//	}
//	defer consumer.GracefulShutdown()
//
//	handler := ingest.NewHandler(db).
//		WithState(stateManager).
//		WithLogger(log.Named("ingest"))
//
//	wg := &sync.WaitGroup{}
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	ingest.NewPipeline(consumer, handler).Run(ctx, wg)
//	wg.Wait()
//
// # Message Formats
//
// Payloads are JSON objects. A raw data message carries arbitrary
// fields plus an optional "ts" unix timestamp (seconds or
// milliseconds); the full body is stored verbatim. A gateway status
// message carries "gwid", "is_online" and "ts":
//
//	{"gwid": "gateway1", "is_online": true, "ts": 1773480413000}
//
// Messages that are not valid JSON objects are rejected without
// requeueing.
//
// # FX Module Integration
//
// For production applications using Uber's fx, use the FXModule. The
// consumer, handler and pipeline are provided, the connection monitor
// and workers start on application start, and shutdown drains the
// workers:
//
//	app := fx.New(
//		logger.FXModule,
//		metrics.FXModule,
//		ingest.FXModule,
//		fx.Provide(
//			func(s *settings.Settings) ingest.Config {
//				return s.IngestConfig()
//			},
//		),
//	)
//	app.Run()
//
// The optional dependencies are injected automatically when another
// module provides them:
//   - Logger (ingest.Logger): lifecycle and storage failure logging
//   - Observer (observability.Observer): per-message consume tracking
//   - State (state.Manager): gateway liveness keys
//   - Recorder (ingest.Recorder): outcome counters, satisfied by
//     *metrics.Metrics
//
// # Observability
//
// When an observer is attached, every consumed delivery is reported
// with Component "ingest", Operation "consume", the queue name as
// Resource, the routing key as SubResource and the body size.
package ingest
