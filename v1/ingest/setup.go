package ingest

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cipworks/common/v1/observability"
)

// Consumer is a client for the AMQP side of the ingest pipeline.
// It manages the broker connection and channel, declares the topic
// exchange and queue, and delivers messages with automatic reconnection.
type Consumer struct {
	// cfg stores the configuration for this consumer
	cfg Config

	// Channel is the AMQP channel used for consuming messages.
	// It's exposed publicly to allow direct operations when needed.
	Channel *amqp.Channel

	// conn is the underlying AMQP connection to the broker
	conn *amqp.Connection

	// mu protects concurrent access to connection and channel
	mu sync.RWMutex

	// shutdownSignal is closed when the consumer is being shut down
	shutdownSignal chan struct{}

	closeShutdownOnce sync.Once

	logger   Logger
	observer observability.Observer
}

// NewConsumer creates and initializes a new ingest consumer with the
// provided configuration. It establishes the connection, sets up the
// channel, and declares the exchange, queue, and bindings.
//
// Example:
//
//	consumer, err := ingest.NewConsumer(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer consumer.GracefulShutdown()
func NewConsumer(config Config) (*Consumer, error) {
	config.applyDefaults()

	con, err := newConnection(config)
	if err != nil {
		log.Printf("ERROR: error in connecting to broker: %v", err)
		return nil, err
	}

	ch, err := connectToChannel(con, config)
	if ch == nil || err != nil {
		log.Printf("ERROR: error in declaring channel: %v", err)
		return nil, err
	}

	return &Consumer{
		cfg:            config,
		conn:           con,
		Channel:        ch,
		shutdownSignal: make(chan struct{}),
	}, nil
}

// WithLogger attaches a structured logger and returns the consumer for
// chaining.
func (c *Consumer) WithLogger(l Logger) *Consumer {
	c.logger = l
	return c
}

// WithObserver attaches an operation observer and returns the consumer
// for chaining.
func (c *Consumer) WithObserver(o observability.Observer) *Consumer {
	c.observer = o
	return c
}

// Config returns the effective configuration, with defaults applied.
func (c *Consumer) Config() Config {
	return c.cfg
}

// connectToChannel creates and configures the AMQP channel. It declares
// the topic exchange and the queue, binds the queue with every configured
// routing key pattern, and applies the prefetch limit.
func connectToChannel(con *amqp.Connection, cfg Config) (*amqp.Channel, error) {
	ch, err := con.Channel()
	if err != nil {
		log.Printf("ERROR: error in creating channel: %v", err)
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	// Declare the topic exchange the gateway publishes to
	err = ch.ExchangeDeclare(
		cfg.Channel.ExchangeName,
		"topic",
		true,  // Durable
		false, // AutoDelete
		false, // Internal
		false, // NoWait
		nil,   // Arguments
	)
	if err != nil {
		log.Printf("ERROR: error in declaring exchange: %v", err)
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	// Declare the consumer queue
	_, err = ch.QueueDeclare(
		cfg.Channel.QueueName,
		true,  // Durable
		false, // AutoDelete
		false, // Exclusive
		false, // NoWait
		nil,   // Arguments
	)
	if err != nil {
		log.Printf("ERROR: error in declaring queue: %v", err)
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	// Bind the queue with every routing key pattern
	for _, key := range cfg.Channel.RoutingKeys {
		err = ch.QueueBind(
			cfg.Channel.QueueName,
			key,
			cfg.Channel.ExchangeName,
			false, // NoWait
			nil,   // Arguments
		)
		if err != nil {
			log.Printf("ERROR: error in binding queue with key %q: %v", key, err)
			return nil, fmt.Errorf("failed to bind queue with key %q: %w", key, err)
		}
	}

	if cfg.Channel.PrefetchCount > 0 {
		err = ch.Qos(cfg.Channel.PrefetchCount, 0, false)
		if err != nil {
			log.Printf("ERROR: error in setting QoS: %v", err)
			return nil, fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	return ch, nil
}

// RetryConnection continuously monitors the broker connection and
// automatically re-establishes it if it fails. This method is typically
// run in a goroutine.
func (c *Consumer) RetryConnection(cfg Config) {
	cfg.applyDefaults()

	defer c.closeShutdownOnce.Do(func() {
		close(c.shutdownSignal)
	})
outerLoop:
	for {
		errChan := make(chan *amqp.Error, 1)
		c.conn.NotifyClose(errChan)

		select {
		case <-c.shutdownSignal:
			log.Println("INFO: Stopping RetryConnection loop due to shutdown signal")
			return

		case err := <-errChan:
			log.Printf("WARNING: broker connection closed, retrying... %v", err)
		reconnectLoop:
			for {
				select {
				case <-c.shutdownSignal:
					log.Println("INFO: Stopping RetryConnection loop due to shutdown signal")
					return
				default:
					newConn, err := newConnection(cfg)
					if err != nil {
						log.Printf("ERROR: broker reconnection failed: %v", err)
						time.Sleep(time.Second)
						continue reconnectLoop
					}

					c.mu.Lock()
					c.conn = newConn
					if c.Channel != nil {
						_ = c.Channel.Close()
					}
					c.Channel, err = connectToChannel(newConn, cfg)
					c.mu.Unlock()

					if err != nil {
						log.Printf("ERROR: failed to re-establish broker channel: %v", err)
						continue reconnectLoop
					}

					log.Println("INFO: Successfully reconnected to broker")
					continue outerLoop
				}
			}
		}
	}
}

// GracefulShutdown closes the consumer's connection and channel cleanly.
//
// The shutdown process:
// 1. Signals all goroutines to stop by closing the shutdownSignal channel
// 2. Acquires a lock to prevent concurrent access during shutdown
// 3. Closes the AMQP channel if it exists
// 4. Closes the AMQP connection if it exists and is not already closed
//
// Any errors during shutdown are logged but not propagated, as they
// typically cannot be handled at this stage of application shutdown.
func (c *Consumer) GracefulShutdown() {
	c.closeShutdownOnce.Do(func() {
		close(c.shutdownSignal)
	})
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logInfo("Shutting down ingest consumer", nil)

	if c.Channel != nil {
		if err := c.Channel.Close(); err != nil {
			c.logWarn("Failed to close broker channel", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
	}
	if c.conn != nil && !c.conn.IsClosed() {
		if err := c.conn.Close(); err != nil {
			c.logWarn("Failed to close broker connection", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
	}
}

// newConnection establishes a connection to the broker.
//
// The function supports three connection modes:
//   - SSL with client certificates (full TLS authentication)
//   - SSL without client certificates (server authentication only)
//   - Plain AMQP (no SSL/TLS)
//
// All connections use a 2-second heartbeat interval to detect
// disconnections quickly.
func newConnection(cfg Config) (*amqp.Connection, error) {
	if cfg.Connection.IsSSLEnabled && cfg.Connection.UseCert {
		hostURL := fmt.Sprintf("amqps://%v:%v@%v:%v", cfg.Connection.User, cfg.Connection.Password, cfg.Connection.Host, cfg.Connection.Port)
		caCert, err := os.ReadFile(cfg.Connection.CACertPath)
		if err != nil {
			log.Printf("ERROR: failed to read CA cert: %v", err)
			return nil, err
		}
		caCertPool := x509.NewCertPool()
		caCertPool.AppendCertsFromPEM(caCert)

		cert, err := tls.LoadX509KeyPair(cfg.Connection.ClientCertPath, cfg.Connection.ClientKeyPath)
		if err != nil {
			log.Printf("ERROR: failed to load client cert: %v", err)
			return nil, err
		}

		tlsConfig := &tls.Config{
			RootCAs:      caCertPool,
			Certificates: []tls.Certificate{cert},
			ServerName:   cfg.Connection.ServerName,
		}
		conn, err := amqp.DialConfig(hostURL, amqp.Config{
			Heartbeat:       2 * time.Second,
			TLSClientConfig: tlsConfig,
		})
		if err == nil {
			log.Println("INFO: Connected to broker")
			return conn, nil
		}
		log.Printf("ERROR: error in connecting to broker: %v", err)
	} else if !cfg.Connection.IsSSLEnabled {
		hostURL := fmt.Sprintf("amqp://%v:%v@%v:%v", cfg.Connection.User, cfg.Connection.Password, cfg.Connection.Host, cfg.Connection.Port)
		conn, err := amqp.DialConfig(hostURL, amqp.Config{
			Heartbeat: 2 * time.Second,
		})
		if err == nil {
			log.Println("INFO: Connected to broker")
			return conn, nil
		}
		log.Printf("ERROR: error in connecting to broker: %v", err)
	} else {
		hostURL := fmt.Sprintf("amqps://%v:%v@%v:%v", cfg.Connection.User, cfg.Connection.Password, cfg.Connection.Host, cfg.Connection.Port)
		conn, err := amqp.DialConfig(hostURL, amqp.Config{
			Heartbeat: 2 * time.Second,
		})
		if err == nil {
			log.Println("INFO: Connected to broker")
			return conn, nil
		}
		log.Printf("ERROR: error in connecting to broker: %v", err)
	}
	return nil, fmt.Errorf("failed to connect to broker")
}

func (c *Consumer) logInfo(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Info(msg, nil, fields)
		return
	}
	log.Printf("INFO: %s %v", msg, fields)
}

func (c *Consumer) logWarn(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, nil, fields)
		return
	}
	log.Printf("WARNING: %s %v", msg, fields)
}

func (c *Consumer) logError(msg string, err error, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Error(msg, err, fields)
		return
	}
	log.Printf("ERROR: %s: %v %v", msg, err, fields)
}
