package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/cipworks/common/v1/dbclient"
)

// pool is a bounded set of connections over one database file. Connections
// are created lazily up to maxConns; acquisition beyond that fails fast with
// dbclient.ErrPoolExhausted instead of queueing.
type pool struct {
	path          string
	maxConns      int
	busyTimeoutMS int
	db            *sql.DB

	mu        sync.Mutex
	available []*sql.Conn
	borrowed  map[*sql.Conn]struct{}
	// dialing counts in-flight connection creations so concurrent
	// acquires cannot overshoot maxConns.
	dialing int
	closed  bool
}

// openPool opens the database file and validates it with a ping. The parent
// directory is created if missing. Failures surface as
// dbclient.PoolCreationError.
func openPool(ctx context.Context, cfg Config) (*pool, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &dbclient.PoolCreationError{Identity: cfg.Path, Err: err}
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, &dbclient.PoolCreationError{Identity: cfg.Path, Err: err}
	}
	db.SetMaxOpenConns(cfg.MaxConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &dbclient.PoolCreationError{Identity: cfg.Path, Err: err}
	}

	log.Printf("INFO: opened sqlite pool for %s (max=%d)", cfg.Path, cfg.MaxConns)
	return &pool{
		path:          cfg.Path,
		maxConns:      cfg.MaxConns,
		busyTimeoutMS: cfg.BusyTimeoutMS,
		db:            db,
		borrowed:      make(map[*sql.Conn]struct{}),
	}, nil
}

// newConn reserves a driver connection and applies the per-connection
// pragmas. Foreign key enforcement is off by default in SQLite and must be
// switched on per connection.
func (p *pool) newConn(ctx context.Context) (*sql.Conn, error) {
	c, err := p.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA busy_timeout = %d", p.busyTimeoutMS),
	}
	for _, pragma := range pragmas {
		if _, err := c.ExecContext(ctx, pragma); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("sqlite: %s failed: %w", pragma, err)
		}
	}
	return c, nil
}

// acquire returns a free connection, creating one when all pooled
// connections are borrowed and the pool is below its maximum.
func (p *pool) acquire(ctx context.Context) (*sql.Conn, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, fmt.Errorf("sqlite: pool for %s is closed", p.path)
	}

	if n := len(p.available); n > 0 {
		c := p.available[n-1]
		p.available = p.available[:n-1]
		p.borrowed[c] = struct{}{}
		p.mu.Unlock()
		return c, nil
	}

	if len(p.borrowed)+p.dialing >= p.maxConns {
		p.mu.Unlock()
		return nil, dbclient.ErrPoolExhausted
	}

	p.dialing++
	p.mu.Unlock()

	c, err := p.newConn(ctx)

	p.mu.Lock()
	p.dialing--
	if err != nil {
		p.mu.Unlock()
		return nil, fmt.Errorf("sqlite: failed to grow pool for %s: %w", p.path, err)
	}
	p.borrowed[c] = struct{}{}
	closed := p.closed
	p.mu.Unlock()

	if closed {
		_ = c.Close()
		return nil, fmt.Errorf("sqlite: pool for %s is closed", p.path)
	}
	return c, nil
}

// release returns a borrowed connection to the pool. Connections released
// after closeAll are closed instead of being re-pooled.
func (p *pool) release(c *sql.Conn) {
	if c == nil {
		return
	}

	p.mu.Lock()
	delete(p.borrowed, c)
	if p.closed {
		p.mu.Unlock()
		_ = c.Close()
		return
	}
	p.available = append(p.available, c)
	p.mu.Unlock()
}

// counts reports the pool occupancy for introspection and metrics.
func (p *pool) counts() (available, borrowed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.available), len(p.borrowed)
}

// closeAll closes every idle connection, marks the pool closed and closes
// the underlying database handle. Borrowed connections are closed as they
// are released.
func (p *pool) closeAll() {
	p.mu.Lock()
	p.closed = true
	idle := p.available
	p.available = nil
	p.mu.Unlock()

	for _, c := range idle {
		if err := c.Close(); err != nil {
			log.Printf("ERROR: failed to close sqlite connection for %s: %v", p.path, err)
		}
	}
	if err := p.db.Close(); err != nil {
		log.Printf("ERROR: failed to close sqlite database %s: %v", p.path, err)
	}
}
