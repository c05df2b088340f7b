// Package sqlite implements the embedded backend of the dbclient interface
// on top of modernc.org/sqlite.
//
// The package accepts queries written for the networked engine and translates
// them best-effort into SQLite's dialect before execution: positional markers
// are rewritten, server-side column types are mapped to SQLite storage
// classes, table names are quoted, and a trailing RETURNING clause falls back
// to last-insert-rowid when the engine rejects it. Callers write one query
// and never branch on the backend.
//
// # Translation Rules
//
// Applied to the query text only; parameter values are bound separately and
// never rewritten:
//   - %s markers become ?
//   - TIMESTAMP, TIMESTAMPTZ and TIMESTAMP WITH/WITHOUT TIME ZONE become TEXT
//   - SERIAL and BIGSERIAL become INTEGER
//   - BOOLEAN becomes INTEGER
//   - table names after FROM, JOIN, INTO, UPDATE and TABLE are backtick
//     quoted, so dotted names like public.run resolve as one identifier
//
// Temporal parameters are rendered as strings ("2006-01-02 15:04:05.000000"
// for timestamps, "2006-01-02" for dates) and booleans as 0/1, matching the
// mapped column types.
//
// # Pooling
//
// Pools are keyed by database file path and shared between clients opened
// for the same path. Connections are created lazily up to the configured
// maximum; when all of them are borrowed, acquisition fails immediately with
// dbclient.ErrPoolExhausted. Unlike the networked backend there is no client
// instance registry: clients are cheap handles and every NewClient call
// returns a fresh one over the shared pool.
//
// # Usage
//
//	db, err := sqlite.NewClient(ctx, sqlite.Config{Path: "./data/cip_debug.db"})
//	if err != nil {
//	    return err
//	}
//
//	generated, err := db.ExecuteNonQueryReturning(ctx,
//	    "INSERT INTO public.run (station, ts) VALUES (%s, %s) RETURNING id",
//	    []dbclient.Param{dbclient.Text("st-01"), dbclient.Timestamp(time.Now())})
//
// Connection modes, the error taxonomy and the observer hook behave exactly
// as in the postgres package; see the dbclient package documentation.
package sqlite
