package ingest

import (
	"context"
	"sync"

	"github.com/cipworks/common/v1/dbclient"
	"github.com/cipworks/common/v1/observability"
	"github.com/cipworks/common/v1/state"
	"go.uber.org/fx"
)

// FXModule is an fx.Module that provides and configures the ingest consumer.
// This module registers the consumer, handler and pipeline with the Fx
// dependency injection framework, making them available to other components
// in the application.
//
// The module provides:
// 1. *Consumer for the broker connection
// 2. *Handler for message storage
// 3. *Pipeline tying the two together
// 4. Lifecycle management for graceful startup and shutdown
//
// Usage:
//
//	app := fx.New(
//	    ingest.FXModule,
//	    // other modules...
//	)
var FXModule = fx.Module("ingest",
	fx.Provide(
		NewConsumerWithDI,
		NewHandlerWithDI,
		NewPipeline,
	),
	fx.Invoke(RegisterIngestLifecycle),
)

// ConsumerParams groups the dependencies needed to create a Consumer
type ConsumerParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewConsumerWithDI creates a new ingest consumer using dependency injection.
// Dependencies are automatically provided via the ConsumerParams struct,
// which embeds fx.In. The logger and observer are optional and injected
// only when another module provides them.
func NewConsumerWithDI(params ConsumerParams) (*Consumer, error) {
	consumer, err := NewConsumer(params.Config)
	if err != nil {
		return nil, err
	}

	if params.Logger != nil {
		consumer.WithLogger(params.Logger)
	}
	if params.Observer != nil {
		consumer.WithObserver(params.Observer)
	}

	return consumer, nil
}

// HandlerParams groups the dependencies needed to create a Handler
type HandlerParams struct {
	fx.In

	DB       dbclient.Client
	State    state.Manager `optional:"true"`
	Logger   Logger        `optional:"true"`
	Recorder Recorder      `optional:"true"`
}

// NewHandlerWithDI creates a message handler using dependency injection.
// The database client is required. The state manager, logger and outcome
// recorder are optional and wired in when available.
func NewHandlerWithDI(params HandlerParams) *Handler {
	handler := NewHandler(params.DB)

	if params.State != nil {
		handler.WithState(params.State)
	}
	if params.Logger != nil {
		handler.WithLogger(params.Logger)
	}
	if params.Recorder != nil {
		handler.WithRecorder(params.Recorder)
	}

	return handler
}

// IngestLifecycleParams groups the dependencies needed for ingest lifecycle management
type IngestLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Consumer  *Consumer
	Pipeline  *Pipeline
	Config    Config
}

// RegisterIngestLifecycle registers the ingest pipeline with the fx
// lifecycle system.
//
// The function:
//  1. On application start: launches the connection monitoring goroutine
//     that keeps the broker connection alive, and starts the worker
//     pipeline consuming messages.
//  2. On application stop: triggers a graceful shutdown of the consumer
//     and waits for all workers to drain.
func RegisterIngestLifecycle(params IngestLifecycleParams) {
	wg := &sync.WaitGroup{}
	runCtx, cancel := context.WithCancel(context.Background())

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			wg.Add(1)
			go func(cfg Config) {
				defer wg.Done()
				params.Consumer.RetryConnection(cfg)
			}(params.Config)

			params.Pipeline.Run(runCtx, wg)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			params.Consumer.GracefulShutdown()

			wg.Wait()
			return nil
		},
	})
}
