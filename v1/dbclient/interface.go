package dbclient

import "context"

// Row is a single result row keyed by column name.
type Row map[string]interface{}

// Rows is an ordered result set.
type Rows []Row

// Client is the backend-independent database client interface.
//
// This interface is implemented by the concrete *postgres.Postgres and
// *sqlite.SQLite types. Applications should depend on this interface and
// select the implementation through the database package's Config.
//
// All methods are safe for concurrent use in automatic mode. A held
// connection (Connect/Close) serializes statements on one session and is
// intended for a single goroutine.
type Client interface {
	// Connect borrows a connection from the pool and holds it on the
	// client until Close is called. Subsequent execution calls run on
	// the held connection. Connect is idempotent while a connection is
	// held.
	//
	// Returns ErrPoolExhausted when no connection is available.
	Connect(ctx context.Context) error

	// ExecuteQuery runs a row-returning statement and materializes the
	// full result set.
	ExecuteQuery(ctx context.Context, query string, params []Param, opts ...Option) (Rows, error)

	// ExecuteNonQuery runs a statement that returns no rows and reports
	// the number of rows affected.
	ExecuteNonQuery(ctx context.Context, query string, params []Param, opts ...Option) (int64, error)

	// ExecuteNonQueryReturning runs an insert that is expected to yield a
	// generated identifier, either through a trailing RETURNING clause or
	// through the engine's last-insert-id mechanism. Returns nil when no
	// identifier was produced.
	ExecuteNonQueryReturning(ctx context.Context, query string, params []Param, opts ...Option) (interface{}, error)

	// Close releases the held connection back to the pool, if any.
	// It does not tear down the pool; pools are shared between clients.
	Close() error
}
