package ingest

import (
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumerMessage implements the Message interface and wraps an AMQP
// delivery.
type ConsumerMessage struct {
	body     []byte         // The message payload
	delivery *amqp.Delivery // The underlying AMQP delivery object
}

// consumeQueue consumes messages from a specified queue and sends them to
// a channel. The returned channel is closed when consumption stops due to
// context cancellation, shutdown signal, or errors.
//
// The method includes:
//   - Automatic reconnection when the channel is closed
//   - Context-aware cancellation
//   - Graceful shutdown handling
//   - Buffered output channel to improve throughput
func (c *Consumer) consumeQueue(ctx context.Context, wg *sync.WaitGroup, queueName string) <-chan Message {
	outChan := make(chan Message, 100)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(outChan)
	outerLoop:
		for {
			select {
			case <-c.shutdownSignal:
				c.logInfo("Stopping consumer due to shutdown signal", map[string]interface{}{
					"queue": queueName,
				})
				return
			case <-ctx.Done():
				c.logInfo("Stopping consumer due to context cancellation", map[string]interface{}{
					"queue": queueName,
					"error": ctx.Err().Error(),
				})
				return
			default:
				c.mu.RLock()
				msgs, err := c.Channel.Consume(
					queueName,
					"",    // consumer
					false, // autoAck
					false, // exclusive
					false, // noLocal
					false, // noWait
					nil,   // args
				)
				c.mu.RUnlock()

				if err != nil {
					c.logError("Failed to establish consumer", err, map[string]interface{}{
						"queue": queueName,
					})
					time.Sleep(100 * time.Millisecond)
					continue
				}

				for {
					select {
					case <-ctx.Done():
						c.logInfo("Stopping consumer due to context cancellation", map[string]interface{}{
							"queue": queueName,
							"error": ctx.Err().Error(),
						})
						return
					case <-c.shutdownSignal:
						c.logInfo("Stopping consumer due to shutdown signal", map[string]interface{}{
							"queue": queueName,
						})
						return
					case msg, ok := <-msgs:
						if !ok {
							continue outerLoop
						}

						c.observeOperation("consume", queueName, msg.RoutingKey, 0, nil, int64(len(msg.Body)))

						outChan <- &ConsumerMessage{
							body:     msg.Body,
							delivery: &msg,
						}
					}
				}
			}
		}
	}()
	return outChan
}

// Consume starts consuming messages from the queue specified in the
// configuration.
//
// Example:
//
//	wg := &sync.WaitGroup{}
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	msgChan := consumer.Consume(ctx, wg)
//	for msg := range msgChan {
//	    if err := handler.HandleMessage(ctx, msg.RoutingKey(), msg.Body()); err != nil {
//	        msg.NackMsg(false)
//	        continue
//	    }
//	    msg.AckMsg()
//	}
func (c *Consumer) Consume(ctx context.Context, wg *sync.WaitGroup) <-chan Message {
	return c.consumeQueue(ctx, wg, c.cfg.Channel.QueueName)
}

// AckMsg acknowledges the message, informing the broker that the message
// has been successfully processed and can be removed from the queue.
func (m *ConsumerMessage) AckMsg() error {
	return m.delivery.Ack(false)
}

// NackMsg rejects the message. If requeue is true, the message will be
// returned to the queue for redelivery; otherwise, it will be discarded.
func (m *ConsumerMessage) NackMsg(requeue bool) error {
	return m.delivery.Nack(false, requeue)
}

// Body returns the message payload as a byte slice.
func (m *ConsumerMessage) Body() []byte {
	return m.body
}

// RoutingKey returns the topic the message was published under.
func (m *ConsumerMessage) RoutingKey() string {
	return m.delivery.RoutingKey
}

// Header returns the headers associated with the message.
func (m *ConsumerMessage) Header() map[string]interface{} {
	return m.delivery.Headers
}
