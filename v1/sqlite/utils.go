package sqlite

import (
	"context"
	"database/sql"
	"log"
	"time"

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
func (s *SQLite) Connect(ctx context.Context) error {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held != nil {
		return nil
	}

	c, err := s.pool.acquire(ctx)
	s.observeOperation("connect", s.cfg.Path, "", time.Since(start), err, 0, nil)
	if err != nil {
		return err
	}
	s.held = c
	return nil
}

// Close releases the held connection back to the pool, if any.
// The shared pool itself stays open; use Shutdown to close it.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held == nil {
		return nil
	}
	s.pool.release(s.held)
	s.held = nil
	return nil
}

// Shutdown releases the held connection and closes this client's pool.
// Other clients sharing the path lose the pool as well, so this belongs at
// application teardown.
func (s *SQLite) Shutdown() error {
	if err := s.Close(); err != nil {
		return err
	}
	s.pool.closeAll()
	return nil
}

// ExecuteQuery runs a row-returning statement and materializes the result.
func (s *SQLite) ExecuteQuery(ctx context.Context, query string, params []dbclient.Param, opts ...dbclient.Option) (dbclient.Rows, error) {
	rows, _, _, err := s.execute(ctx, query, params, opts, kindSelect)
	return rows, err
}

// ExecuteNonQuery runs a statement that returns no rows and reports the
// number of rows affected.
func (s *SQLite) ExecuteNonQuery(ctx context.Context, query string, params []dbclient.Param, opts ...dbclient.Option) (int64, error) {
	_, affected, _, err := s.execute(ctx, query, params, opts, kindExec)
	return affected, err
}

// ExecuteNonQueryReturning runs an insert that is expected to yield a
// generated identifier. When the statement carries a RETURNING clause the
// engine rejects, it is re-executed without the clause and the identifier is
// read from last-insert-rowid; the caller sees the same value either way.
func (s *SQLite) ExecuteNonQueryReturning(ctx context.Context, query string, params []dbclient.Param, opts ...dbclient.Option) (interface{}, error) {
	_, _, generated, err := s.execute(ctx, query, params, opts, kindExecReturning)
	return generated, err
}

// execute is the single entry point of the execution engine. It translates
// the dialect, resolves the connection mode, runs the statement inside its
// own transaction and reports the operation to the observer.
func (s *SQLite) execute(ctx context.Context, query string, params []dbclient.Param, opts []dbclient.Option, k stmtKind) (dbclient.Rows, int64, interface{}, error) {
	callOpts := dbclient.ApplyOptions(opts)
	translated := translate(query)
	args := bindValues(params)

	start := time.Now()
	mode := "auto"

	var rows dbclient.Rows
	var affected int64
	var generated interface{}
	var err error

	s.mu.Lock()
	held := s.held
	s.mu.Unlock()

	switch {
	case held != nil:
		// A connected client runs every statement over its held
		// connection until Close, whatever the call options say.
		mode = "held"
		rows, affected, generated, err = s.runStatement(ctx, held, query, translated, args, k)
	case callOpts.HeldConnection:
		err = dbclient.ErrNotConnected
	default:
		// Transaction scope: the connection goes back to the pool on
		// every exit path, including statement and commit failures.
		var c *sql.Conn
		c, err = s.pool.acquire(ctx)
		if err == nil {
			func() {
				defer s.pool.release(c)
				rows, affected, generated, err = s.runStatement(ctx, c, query, translated, args, k)
			}()
		}
	}

	size := int64(len(rows))
	if k == kindExec {
		size = affected
	}
	available, borrowed := s.pool.counts()
	s.observeOperation(k.String(), s.cfg.Path, mode, time.Since(start), err, size, map[string]interface{}{
		"pool_available": available,
		"pool_borrowed":  borrowed,
	})

	if s.cfg.Debug {
		log.Printf("INFO: sqlite %s (%s) on %s took %s err=%v", k, mode, s.cfg.Path, time.Since(start), err)
	}
	return rows, affected, generated, err
}

// runStatement executes one translated statement in its own transaction:
// commit on success, rollback on failure. Failures are wrapped in
// dbclient.QueryExecutionError carrying the caller's original query text.
func (s *SQLite) runStatement(ctx context.Context, c *sql.Conn, original, translated string, args []interface{}, k stmtKind) (dbclient.Rows, int64, interface{}, error) {
	tx, err := c.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, nil, &dbclient.QueryExecutionError{Query: original, Err: err}
	}

	rows, affected, generated, err := runInTx(ctx, tx, translated, args, k)
	if err != nil {
		_ = tx.Rollback()
		return nil, 0, nil, &dbclient.QueryExecutionError{Query: original, Err: err}
	}
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return nil, 0, nil, &dbclient.QueryExecutionError{Query: original, Err: err}
	}
	return rows, affected, generated, nil
}

func runInTx(ctx context.Context, tx *sql.Tx, translated string, args []interface{}, k stmtKind) (dbclient.Rows, int64, interface{}, error) {
	switch k {
	case kindSelect:
		sqlRows, err := tx.QueryContext(ctx, translated, args...)
		if err != nil {
			return nil, 0, nil, err
		}
		rows, err := collectRows(sqlRows)
		return rows, 0, nil, err

	case kindExec:
		res, err := tx.ExecContext(ctx, translated, args...)
		if err != nil {
			return nil, 0, nil, err
		}
		affected, err := res.RowsAffected()
		return nil, affected, nil, err

	case kindExecReturning:
		generated, err := runReturning(ctx, tx, translated, args)
		return nil, 0, generated, err

	default:
		return nil, 0, nil, nil
	}
}

// runReturning resolves the generated identifier for an insert. A statement
// with a RETURNING clause is tried natively first; when the engine rejects
// the clause with an operational error, the clause is stripped, the
// statement is re-executed and the identifier is read from
// last-insert-rowid. Statements without the clause go straight to
// last-insert-rowid.
func runReturning(ctx context.Context, tx *sql.Tx, translated string, args []interface{}) (interface{}, error) {
	if hasReturning(translated) {
		sqlRows, err := tx.QueryContext(ctx, translated, args...)
		if err == nil {
			return firstColumn(sqlRows)
		}
		if !isOperationalError(err) {
			return nil, err
		}
		translated = stripReturning(translated)
	}

	res, err := tx.ExecContext(ctx, translated, args...)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return id, nil
}

// collectRows materializes a database/sql result set into maps keyed by
// column name. BLOB-typed text comes back as []byte and is normalized to
// string.
func collectRows(sqlRows *sql.Rows) (dbclient.Rows, error) {
	defer sqlRows.Close()

	cols, err := sqlRows.Columns()
	if err != nil {
		return nil, err
	}

	var out dbclient.Rows
	for sqlRows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := sqlRows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(dbclient.Row, len(cols))
		for i, col := range cols {
			row[col] = normalizeValue(vals[i])
		}
		out = append(out, row)
	}
	return out, sqlRows.Err()
}

// firstColumn reads the first column of the first row, for native RETURNING
// statements. Returns nil when the statement produced no row.
func firstColumn(sqlRows *sql.Rows) (interface{}, error) {
	defer sqlRows.Close()

	cols, err := sqlRows.Columns()
	if err != nil {
		return nil, err
	}

	var generated interface{}
	if sqlRows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := sqlRows.Scan(ptrs...); err != nil {
			return nil, err
		}
		if len(vals) > 0 {
			generated = normalizeValue(vals[0])
		}
	}
	return generated, sqlRows.Err()
}

func normalizeValue(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
