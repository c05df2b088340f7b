package postgres

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/cipworks/common/v1/dbclient"
)

// conn is the pooled connection surface the execution engine needs.
// *pgx.Conn satisfies it; unit tests substitute fakes through the pool's
// dial function.
type conn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// pool is a bounded set of connections for one identity. Connections up to
// the minimum are dialed at creation; further connections are dialed lazily
// on demand up to the maximum. Acquisition beyond the maximum fails fast
// with dbclient.ErrPoolExhausted instead of queueing.
type pool struct {
	identity string
	maxConns int
	dial     func(ctx context.Context) (conn, error)

	mu        sync.Mutex
	available []conn
	borrowed  map[conn]struct{}
	// dialing counts in-flight lazy dials so concurrent acquires cannot
	// overshoot maxConns while a dial is in progress.
	dialing int
	closed  bool
}

// newPool dials minConns connections eagerly. If any dial fails, the
// already-dialed connections are closed and a dbclient.PoolCreationError is
// returned.
func newPool(ctx context.Context, identity string, minConns, maxConns int, dial func(ctx context.Context) (conn, error)) (*pool, error) {
	p := &pool{
		identity: identity,
		maxConns: maxConns,
		dial:     dial,
		borrowed: make(map[conn]struct{}),
	}

	for i := 0; i < minConns; i++ {
		c, err := dial(ctx)
		if err != nil {
			p.closeAll(ctx)
			return nil, &dbclient.PoolCreationError{Identity: identity, Err: err}
		}
		p.available = append(p.available, c)
	}

	log.Printf("INFO: created connection pool for %s (min=%d max=%d)", identity, minConns, maxConns)
	return p, nil
}

// acquire returns a free connection, dialing a new one when all pooled
// connections are borrowed and the pool is below its maximum.
func (p *pool) acquire(ctx context.Context) (conn, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, fmt.Errorf("postgres: pool for %s is closed", p.identity)
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

	// Reserve the slot, then dial without holding the lock.
	p.dialing++
	p.mu.Unlock()

	c, err := p.dial(ctx)

	p.mu.Lock()
	p.dialing--
	if err != nil {
		p.mu.Unlock()
		return nil, fmt.Errorf("postgres: failed to grow pool for %s: %w", p.identity, err)
	}
	p.borrowed[c] = struct{}{}
	closed := p.closed
	p.mu.Unlock()

	if closed {
		_ = c.Close(ctx)
		return nil, fmt.Errorf("postgres: pool for %s is closed", p.identity)
	}
	return c, nil
}

// release returns a borrowed connection to the pool. Connections released
// after closeAll are closed instead of being re-pooled.
func (p *pool) release(c conn) {
	if c == nil {
		return
	}

	p.mu.Lock()
	delete(p.borrowed, c)
	if p.closed {
		p.mu.Unlock()
		_ = c.Close(context.Background())
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

// closeAll closes every idle connection and marks the pool closed.
// Borrowed connections are closed as they are released.
func (p *pool) closeAll(ctx context.Context) {
	p.mu.Lock()
	p.closed = true
	idle := p.available
	p.available = nil
	p.mu.Unlock()

	for _, c := range idle {
		if err := c.Close(ctx); err != nil {
			log.Printf("ERROR: failed to close connection for %s: %v", p.identity, err)
		}
	}
}
