package ingest

import (
	"context"
	"sync"
)

// Pipeline connects a consumer to a handler with a pool of worker
// goroutines. All workers drain the same delivery channel, so messages
// are processed at most once.
type Pipeline struct {
	consumer *Consumer
	handler  *Handler
	workers  int
	logger   Logger
}

// NewPipeline wires a consumer and handler together. The worker count
// comes from the consumer configuration.
func NewPipeline(consumer *Consumer, handler *Handler) *Pipeline {
	workers := consumer.Config().Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Pipeline{
		consumer: consumer,
		handler:  handler,
		workers:  workers,
	}
}

// WithLogger attaches a structured logger and returns the pipeline for
// chaining.
func (p *Pipeline) WithLogger(l Logger) *Pipeline {
	p.logger = l
	return p
}

// Run starts consuming and processing messages until the context is
// cancelled or the consumer shuts down. Each stored message is acked,
// each failed message is rejected without requeueing so a malformed
// payload cannot loop forever.
func (p *Pipeline) Run(ctx context.Context, wg *sync.WaitGroup) {
	msgs := p.consumer.Consume(ctx, wg)

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			p.work(ctx, worker, msgs)
		}(i)
	}
}

func (p *Pipeline) work(ctx context.Context, worker int, msgs <-chan Message) {
	for msg := range msgs {
		err := p.handler.HandleMessage(ctx, msg.RoutingKey(), msg.Body())
		if err != nil {
			if nackErr := msg.NackMsg(false); nackErr != nil {
				p.logWarn("Failed to reject message", map[string]interface{}{
					"worker": worker,
					"error":  nackErr.Error(),
				})
			}
			continue
		}
		if ackErr := msg.AckMsg(); ackErr != nil {
			p.logWarn("Failed to acknowledge message", map[string]interface{}{
				"worker": worker,
				"error":  ackErr.Error(),
			})
		}
	}
}

func (p *Pipeline) logWarn(msg string, fields map[string]interface{}) {
	if p.logger != nil {
		p.logger.Warn(msg, nil, fields)
	}
}
