package ingest

// Config defines the top-level configuration structure for the ingest
// consumer. It contains the settings for establishing a connection to the
// AMQP broker and for declaring the exchange, queue, and bindings the
// gateway publishes into.
type Config struct {
	// Connection contains the settings needed to establish a connection to the broker
	Connection Connection

	// Channel contains configuration for the exchange, queue, and message routing
	Channel Channel

	// Workers is the number of goroutines processing consumed messages
	// Default: 1
	Workers int
}

// Connection contains the configuration parameters needed to establish
// a connection to an AMQP broker, including authentication and TLS settings.
type Connection struct {
	// Host is the broker hostname or IP address
	// Default: "localhost"
	Host string

	// Port is the broker port (typically 5672 for non-SSL, 5671 for SSL)
	// Default: 5672
	Port int

	// User is the broker username for authentication
	// Default: "guest"
	User string

	// Password is the broker password for authentication
	// Default: "guest"
	Password string

	// IsSSLEnabled determines whether to use SSL/TLS for the connection
	// When true, connections will use the AMQPs protocol
	IsSSLEnabled bool

	// UseCert determines whether to use client certificate authentication
	// When true, client certificates will be sent for mutual TLS authentication
	UseCert bool

	// CACertPath is the file path to the CA certificate for verifying the server
	// Used when IsSSLEnabled is true
	CACertPath string

	// ClientCertPath is the file path to the client certificate
	// Used when both IsSSLEnabled and UseCert are true
	ClientCertPath string

	// ClientKeyPath is the file path to the client certificate's private key
	// Used when both IsSSLEnabled and UseCert are true
	ClientKeyPath string

	// ServerName is the server name to use for TLS verification
	// This should match a CN or SAN in the server's certificate
	ServerName string
}

// Channel contains configuration for the AMQP exchange, queue, and
// bindings. These settings determine which messages reach the consumer.
type Channel struct {
	// ExchangeName is the name of the topic exchange the gateway publishes to
	// Default: "cip.ingest"
	ExchangeName string

	// QueueName is the name of the queue to declare and consume from
	// Default: "cip.ingest.raw"
	QueueName string

	// RoutingKeys are the binding patterns for the queue.
	// Topic wildcards apply: "raw.#" matches every raw data topic.
	// Default: "raw.#", "gateway.status"
	RoutingKeys []string

	// PrefetchCount limits the number of unacknowledged messages that can be sent to a consumer
	// A value of 0 means no limit (not recommended for production)
	// Default: 10
	PrefetchCount int
}

// Default values for configuration
const (
	DefaultHost          = "localhost"
	DefaultPort          = 5672
	DefaultUser          = "guest"
	DefaultPassword      = "guest"
	DefaultExchange      = "cip.ingest"
	DefaultQueue         = "cip.ingest.raw"
	DefaultPrefetchCount = 10
	DefaultWorkers       = 1
)

func (c *Config) applyDefaults() {
	if c.Connection.Host == "" {
		c.Connection.Host = DefaultHost
	}
	if c.Connection.Port == 0 {
		c.Connection.Port = DefaultPort
	}
	if c.Connection.User == "" {
		c.Connection.User = DefaultUser
	}
	if c.Connection.Password == "" {
		c.Connection.Password = DefaultPassword
	}
	if c.Channel.ExchangeName == "" {
		c.Channel.ExchangeName = DefaultExchange
	}
	if c.Channel.QueueName == "" {
		c.Channel.QueueName = DefaultQueue
	}
	if len(c.Channel.RoutingKeys) == 0 {
		c.Channel.RoutingKeys = []string{"raw.#", "gateway.status"}
	}
	if c.Channel.PrefetchCount == 0 {
		c.Channel.PrefetchCount = DefaultPrefetchCount
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
}

// Logger is an interface that matches the common/v1/logger.Logger
// methods. It allows the consumer to log through the shared structured
// logger without depending on it.
type Logger interface {
	// Debug logs a debug-level message with optional error and fields.
	Debug(msg string, err error, fields ...map[string]interface{})

	// Info logs an informational message with optional error and fields.
	Info(msg string, err error, fields ...map[string]interface{})

	// Warn logs a warning message with optional error and fields.
	Warn(msg string, err error, fields ...map[string]interface{})

	// Error logs an error message with optional error and fields.
	Error(msg string, err error, fields ...map[string]interface{})
}
