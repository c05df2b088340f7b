package postgres

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cipworks/common/v1/dbclient"
)

// stmtKind selects the fetch behavior of a statement.
type stmtKind int

const (
	kindSelect stmtKind = iota
	kindExec
	kindExecReturning
)

func (k stmtKind) String() string {
	switch k {
	case kindSelect:
		return "select"
	case kindExec:
		return "exec"
	case kindExecReturning:
		return "exec_returning"
	default:
		return "unknown"
	}
}

// Connect borrows a connection from the pool and holds it on the client.
// Subsequent execution calls run on the held connection until Close.
// Connect is idempotent while a connection is held.
func (p *Postgres) Connect(ctx context.Context) error {
	start := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.held != nil {
		return nil
	}

	c, err := p.pool.acquire(ctx)
	p.observeOperation("connect", p.identity, "", time.Since(start), err, 0, nil)
	if err != nil {
		return err
	}
	p.held = c
	return nil
}

// Close releases the held connection back to the pool, if any.
// The shared pool itself stays open; use Shutdown to close it.
func (p *Postgres) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.held == nil {
		return nil
	}
	p.pool.release(p.held)
	p.held = nil
	return nil
}

// Shutdown releases the held connection and closes this client's pool.
// Other clients sharing the identity lose the pool as well, so this belongs
// at application teardown.
func (p *Postgres) Shutdown(ctx context.Context) error {
	if err := p.Close(); err != nil {
		return err
	}
	p.pool.closeAll(ctx)
	return nil
}

// ExecuteQuery runs a row-returning statement and materializes the result.
func (p *Postgres) ExecuteQuery(ctx context.Context, query string, params []dbclient.Param, opts ...dbclient.Option) (dbclient.Rows, error) {
	rows, _, _, err := p.execute(ctx, query, params, opts, kindSelect)
	return rows, err
}

// ExecuteNonQuery runs a statement that returns no rows and reports the
// number of rows affected.
func (p *Postgres) ExecuteNonQuery(ctx context.Context, query string, params []dbclient.Param, opts ...dbclient.Option) (int64, error) {
	_, affected, _, err := p.execute(ctx, query, params, opts, kindExec)
	return affected, err
}

// ExecuteNonQueryReturning runs an insert carrying a RETURNING clause and
// returns the first column of the fetched row, or nil when the statement
// produced no row.
func (p *Postgres) ExecuteNonQueryReturning(ctx context.Context, query string, params []dbclient.Param, opts ...dbclient.Option) (interface{}, error) {
	_, _, generated, err := p.execute(ctx, query, params, opts, kindExecReturning)
	return generated, err
}

// execute is the single entry point of the execution engine. It resolves the
// connection mode, runs the statement inside its own transaction and reports
// the operation to the observer.
func (p *Postgres) execute(ctx context.Context, query string, params []dbclient.Param, opts []dbclient.Option, k stmtKind) (dbclient.Rows, int64, interface{}, error) {
	callOpts := dbclient.ApplyOptions(opts)
	sql := numberMarkers(query)
	args := bindValues(params)

	start := time.Now()
	mode := "auto"

	var rows dbclient.Rows
	var affected int64
	var generated interface{}
	var err error

	p.mu.Lock()
	held := p.held
	p.mu.Unlock()

	switch {
	case held != nil:
		// A connected client runs every statement over its held
		// connection until Close, whatever the call options say.
		mode = "held"
		rows, affected, generated, err = p.runStatement(ctx, held, query, sql, args, k)
	case callOpts.HeldConnection:
		err = dbclient.ErrNotConnected
	default:
		// Transaction scope: the connection goes back to the pool on
		// every exit path, including statement and commit failures.
		var c conn
		c, err = p.pool.acquire(ctx)
		if err == nil {
			func() {
				defer p.pool.release(c)
				rows, affected, generated, err = p.runStatement(ctx, c, query, sql, args, k)
			}()
		}
	}

	size := int64(len(rows))
	if k == kindExec {
		size = affected
	}
	available, borrowed := p.pool.counts()
	p.observeOperation(k.String(), p.identity, mode, time.Since(start), err, size, map[string]interface{}{
		"pool_available": available,
		"pool_borrowed":  borrowed,
	})

	if p.cfg.Debug {
		log.Printf("INFO: postgres %s (%s) on %s took %s err=%v", k, mode, p.identity, time.Since(start), err)
	}
	return rows, affected, generated, err
}

// runStatement executes one statement in its own transaction: commit on
// success, rollback on failure. Failures are wrapped in
// dbclient.QueryExecutionError carrying the caller's original query text.
func (p *Postgres) runStatement(ctx context.Context, c conn, original, sql string, args []interface{}, k stmtKind) (dbclient.Rows, int64, interface{}, error) {
	tx, err := c.Begin(ctx)
	if err != nil {
		return nil, 0, nil, &dbclient.QueryExecutionError{Query: original, Err: err}
	}

	rows, affected, generated, err := runInTx(ctx, tx, sql, args, k)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, 0, nil, &dbclient.QueryExecutionError{Query: original, Err: err}
	}
	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return nil, 0, nil, &dbclient.QueryExecutionError{Query: original, Err: err}
	}
	return rows, affected, generated, nil
}

func runInTx(ctx context.Context, tx pgx.Tx, sql string, args []interface{}, k stmtKind) (dbclient.Rows, int64, interface{}, error) {
	switch k {
	case kindSelect:
		pgxRows, err := tx.Query(ctx, sql, args...)
		if err != nil {
			return nil, 0, nil, err
		}
		rows, err := collectRows(pgxRows)
		return rows, 0, nil, err

	case kindExec:
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return nil, 0, nil, err
		}
		return nil, tag.RowsAffected(), nil, nil

	case kindExecReturning:
		pgxRows, err := tx.Query(ctx, sql, args...)
		if err != nil {
			return nil, 0, nil, err
		}
		generated, err := firstColumn(pgxRows)
		return nil, 0, generated, err

	default:
		return nil, 0, nil, nil
	}
}

// collectRows materializes a pgx result set into maps keyed by column name.
func collectRows(pgxRows pgx.Rows) (dbclient.Rows, error) {
	defer pgxRows.Close()

	fields := pgxRows.FieldDescriptions()
	var out dbclient.Rows
	for pgxRows.Next() {
		vals, err := pgxRows.Values()
		if err != nil {
			return nil, err
		}
		row := make(dbclient.Row, len(fields))
		for i, f := range fields {
			row[f.Name] = vals[i]
		}
		out = append(out, row)
	}
	return out, pgxRows.Err()
}

// firstColumn reads the first column of the first row, for RETURNING
// statements. Returns nil when the statement produced no row.
func firstColumn(pgxRows pgx.Rows) (interface{}, error) {
	defer pgxRows.Close()

	var generated interface{}
	if pgxRows.Next() {
		vals, err := pgxRows.Values()
		if err != nil {
			return nil, err
		}
		if len(vals) > 0 {
			generated = vals[0]
		}
	}
	return generated, pgxRows.Err()
}

// bindValues renders tagged parameters into the values pgx binds directly.
func bindValues(params []dbclient.Param) []interface{} {
	if len(params) == 0 {
		return nil
	}
	args := make([]interface{}, len(params))
	for i, p := range params {
		args[i] = p.Native()
	}
	return args
}
