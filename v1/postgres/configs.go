package postgres

import (
	"fmt"

	"github.com/cipworks/common/v1/observability"
)

// Config defines the configuration for the networked database client.
type Config struct {
	// Connection contains the settings needed to reach the server
	Connection Connection

	// Pool contains the connection pool bounds
	Pool PoolSettings

	// Debug enables statement-level logging
	// Default: false
	Debug bool

	// ForceNew bypasses the client instance registry and always builds a
	// fresh client. The identity's connection pool is still shared.
	// Default: false
	ForceNew bool

	// Observer is an optional observability hook from the observability
	// package. When set, every executed statement is reported to it.
	Observer observability.Observer
}

// Connection contains the parameters identifying a server and database.
// Host, Port, DbName and User together form the pool identity.
type Connection struct {
	// Host is the server hostname or IP address
	// Default: "localhost"
	Host string

	// Port is the server port
	// Default: 5432
	Port int

	// User is the database role to authenticate as
	User string

	// Password is the password for User
	Password string

	// DbName is the database to connect to
	DbName string

	// SSLMode is the libpq-style ssl mode ("disable", "require", ...)
	// Default: "disable"
	SSLMode string
}

// PoolSettings bounds the per-identity connection pool.
type PoolSettings struct {
	// MinConns is the number of connections dialed eagerly when the pool
	// is created. Pool creation fails if any of them cannot be dialed.
	// Default: 1
	MinConns int

	// MaxConns is the hard upper bound of live connections. Acquisition
	// beyond this bound fails fast with dbclient.ErrPoolExhausted.
	// Default: 10
	MaxConns int
}

// Default values for configuration
const (
	DefaultHost     = "localhost"
	DefaultPort     = 5432
	DefaultSSLMode  = "disable"
	DefaultMinConns = 1
	DefaultMaxConns = 10
)

func (c *Config) applyDefaults() {
	if c.Connection.Host == "" {
		c.Connection.Host = DefaultHost
	}
	if c.Connection.Port == 0 {
		c.Connection.Port = DefaultPort
	}
	if c.Connection.SSLMode == "" {
		c.Connection.SSLMode = DefaultSSLMode
	}
	if c.Pool.MinConns == 0 {
		c.Pool.MinConns = DefaultMinConns
	}
	if c.Pool.MaxConns == 0 {
		c.Pool.MaxConns = DefaultMaxConns
	}
}

// Identity returns the pool identity for this connection, in the form
// "host:port/database@user". Clients with equal identities share a pool.
func (c Connection) Identity() string {
	return fmt.Sprintf("%s:%d/%s@%s", c.Host, c.Port, c.DbName, c.User)
}

// connString renders the connection in libpq keyword form for pgx.
func (c Connection) connString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DbName, c.SSLMode)
}
