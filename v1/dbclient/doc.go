// Package dbclient defines the shared vocabulary for the SQL client packages
// in this module: the Client interface, the tagged parameter type, result
// shapes and the common error taxonomy.
//
// The interface is implemented by:
//   - postgres.Postgres (networked engine, pgx)
//   - sqlite.SQLite (embedded engine, modernc.org/sqlite)
//
// Applications write their queries once, in PostgreSQL syntax with %s
// positional markers, and pick the backend through configuration. The sqlite
// package translates the dialect transparently; callers never branch on the
// engine.
//
// # Query Convention
//
// Queries use %s as the positional parameter marker regardless of backend:
//
//	rows, err := db.ExecuteQuery(ctx,
//	    "SELECT id, name FROM public.run WHERE station = %s AND ts > %s",
//	    []dbclient.Param{dbclient.Text("st-01"), dbclient.Int(1700000000)})
//
// The postgres backend rewrites markers to $1..$n for the wire protocol, the
// sqlite backend rewrites them to ?. Parameter values never pass through the
// rewrite, so markers inside values are safe.
//
// # Parameters
//
// Parameters are passed as tagged Param values rather than raw interface{}.
// Each backend renders a Param into its driver representation, which keeps
// temporal formatting and boolean mapping deterministic per engine:
//
//	dbclient.Text("hello")
//	dbclient.Int(42)
//	dbclient.Bool(true)
//	dbclient.Timestamp(time.Now())
//	dbclient.Null()
//
// dbclient.Value converts an arbitrary Go value into a Param when the calling
// code holds interface{} data, for example decoded JSON.
//
// # Connection Modes
//
// Every execution method runs in automatic mode by default: a connection is
// borrowed from the pool for the single statement and released afterwards,
// even on error. For short-lived multi-statement sequences a client can hold
// a connection explicitly:
//
//	if err := db.Connect(ctx); err != nil { ... }
//	defer db.Close()
//	// statements now share one held connection
//
// Each statement still commits individually; holding a connection pins the
// session, it does not open a multi-statement transaction.
//
// # Errors
//
// The error taxonomy is shared across backends:
//   - PoolCreationError: the pool could not be established
//   - ErrPoolExhausted: all connections are borrowed (fail fast, no queue)
//   - ErrNotConnected: a held-connection call without a prior Connect
//   - QueryExecutionError: a statement failed; wraps the driver error
//
// Use the Is* helpers or errors.Is/errors.As to classify.
package dbclient
