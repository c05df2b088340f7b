// Package postgres implements the networked backend of the dbclient
// interface on top of pgx.
//
// The package manages pools of raw pgx connections itself rather than using
// a driver-level pool: connections are dialed eagerly up to the configured
// minimum, borrowed per statement (or held across statements, see below) and
// returned to the pool in a guaranteed release step. When every connection is
// borrowed, acquisition fails immediately with dbclient.ErrPoolExhausted; the
// pool never queues callers.
//
// # Pool and Client Sharing
//
// Pools live in a Registry keyed by connection identity
// ("host:port/database@user"). Two clients built for the same identity share
// one pool; the first construction creates it under a double-checked lock,
// later constructions reuse it. Client instances themselves are also
// registered by identity, so repeated construction with equal parameters
// yields the same *Postgres unless ForceNew is set. A ForceNew client is a
// distinct instance but still shares the identity's pool.
//
// The package keeps a default Registry; NewClient uses it. Tests and
// applications that need isolated pools can create their own Registry.
//
// # Usage
//
//	db, err := postgres.NewClient(ctx, postgres.Config{
//	    Connection: postgres.Connection{
//	        Host:     "localhost",
//	        Port:     5432,
//	        User:     "cipuser",
//	        Password: "secret",
//	        DbName:   "cipdb",
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//
//	rows, err := db.ExecuteQuery(ctx,
//	    "SELECT id, station FROM public.run WHERE id = %s",
//	    []dbclient.Param{dbclient.Int(7)})
//
// Queries use %s positional markers; the package rewrites them to $1..$n
// before handing the statement to pgx.
//
// # Connection Modes
//
// By default each call borrows a connection, runs the statement in its own
// transaction and releases the connection, on success and on failure alike.
// To pin several statements to one session:
//
//	if err := db.Connect(ctx); err != nil { ... }
//	defer db.Close()
//	_, err = db.ExecuteNonQuery(ctx, q1, p1, dbclient.WithHeldConnection())
//	_, err = db.ExecuteNonQuery(ctx, q2, p2, dbclient.WithHeldConnection())
//
// Each statement still commits individually.
//
// # FX Module Integration
//
//	app := fx.New(
//	    postgres.FXModule,
//	    fx.Provide(func() postgres.Config { return loadConfig() }),
//	    fx.Invoke(func(db *postgres.Postgres) { ... }),
//	)
//
// The module closes the identity's pool on application shutdown.
//
// # Observability (Observer Hook)
//
// The client reports every executed statement through the optional Observer
// from the observability package:
//   - Component: "postgres"
//   - Operations: "select", "exec", "exec_returning", "connect"
//   - Resource: the pool identity
//   - SubResource: "auto" or "held"
//   - Size: rows returned or affected
package postgres
