package sqlite

import "github.com/cipworks/common/v1/observability"

// Config defines the configuration for the embedded database client.
type Config struct {
	// Path is the database file path. The parent directory is created if
	// it does not exist. Clients with equal paths share one pool.
	// Default: "./data/cip_debug.db"
	Path string

	// MaxConns is the hard upper bound of open connections for the path.
	// Connections are created lazily; acquisition beyond the bound fails
	// fast with dbclient.ErrPoolExhausted.
	// Default: 5
	MaxConns int

	// BusyTimeoutMS is the per-connection busy timeout in milliseconds,
	// applied so concurrent writers back off instead of failing
	// immediately on a locked database.
	// Default: 5000
	BusyTimeoutMS int

	// Debug enables statement-level logging
	// Default: false
	Debug bool

	// Observer is an optional observability hook from the observability
	// package. When set, every executed statement is reported to it.
	Observer observability.Observer
}

// Default values for configuration
const (
	DefaultPath          = "./data/cip_debug.db"
	DefaultMaxConns      = 5
	DefaultBusyTimeoutMS = 5000
)

func (c *Config) applyDefaults() {
	if c.Path == "" {
		c.Path = DefaultPath
	}
	if c.MaxConns == 0 {
		c.MaxConns = DefaultMaxConns
	}
	if c.BusyTimeoutMS == 0 {
		c.BusyTimeoutMS = DefaultBusyTimeoutMS
	}
}
