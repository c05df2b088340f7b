package sqlite

import (
	"context"
	"database/sql"
	"log"
	"sort"
	"sync"

	"github.com/cipworks/common/v1/observability"
)

// SQLite is the embedded implementation of the dbclient.Client interface.
// Clients are cheap handles; every NewClient call returns a fresh one over
// the path's shared pool.
//
// SQLite implements the dbclient.Client interface.
type SQLite struct {
	// cfg stores the configuration for this client
	cfg Config

	// pool is the shared connection pool for cfg.Path
	pool *pool

	// observer provides optional observability hooks
	observer observability.Observer

	// mu protects the held connection
	mu sync.Mutex

	// held is the connection borrowed by Connect, nil otherwise
	held *sql.Conn
}

// PoolStats reports the occupancy of one path's pool.
type PoolStats struct {
	Available int
	Borrowed  int
}

// Registry owns the connection pools, keyed by database file path. The
// package keeps a default Registry used by NewClient; create a separate
// Registry when isolated pools are needed, for example in tests.
//
// All Registry methods are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	pools map[string]*pool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{pools: make(map[string]*pool)}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the registry used by NewClient.
func DefaultRegistry() *Registry { return defaultRegistry }

// NewClient creates a client in the default registry.
//
// Returns *SQLite concrete type (following Go best practice: "accept
// interfaces, return structs").
func NewClient(ctx context.Context, cfg Config) (*SQLite, error) {
	return defaultRegistry.NewClient(ctx, cfg)
}

// NewClient creates a client for the configured path within this registry.
// The path's pool is created under a double-checked lock on first use and
// shared by every later client for the same path.
func (r *Registry) NewClient(ctx context.Context, cfg Config) (*SQLite, error) {
	cfg.applyDefaults()

	pl, err := r.getOrCreatePool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &SQLite{
		cfg:      cfg,
		pool:     pl,
		observer: cfg.Observer,
	}, nil
}

func (r *Registry) getOrCreatePool(ctx context.Context, cfg Config) (*pool, error) {
	r.mu.RLock()
	pl := r.pools[cfg.Path]
	r.mu.RUnlock()
	if pl != nil {
		return pl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if pl := r.pools[cfg.Path]; pl != nil {
		return pl, nil
	}

	pl, err := openPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	r.pools[cfg.Path] = pl
	return pl, nil
}

// Stats returns the occupancy of every pool in the registry.
func (r *Registry) Stats() map[string]PoolStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make(map[string]PoolStats, len(r.pools))
	for path, pl := range r.pools {
		available, borrowed := pl.counts()
		stats[path] = PoolStats{Available: available, Borrowed: borrowed}
	}
	return stats
}

// InstanceInfo is a diagnostic snapshot of the registry contents. Clients
// are not cached per path, so Instances mirrors Pools.
type InstanceInfo struct {
	Instances     []string
	Pools         []string
	InstanceCount int
	PoolCount     int
}

// InstanceInfo lists the open pool paths.
func (r *Registry) InstanceInfo() InstanceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var info InstanceInfo
	for path := range r.pools {
		info.Pools = append(info.Pools, path)
	}
	sort.Strings(info.Pools)
	info.Instances = info.Pools
	info.InstanceCount = len(info.Pools)
	info.PoolCount = len(info.Pools)
	return info
}

// ClosePool closes the pool for one path and forgets it. Borrowed
// connections are closed as they are released.
func (r *Registry) ClosePool(path string) {
	r.mu.Lock()
	pl := r.pools[path]
	delete(r.pools, path)
	r.mu.Unlock()

	if pl != nil {
		pl.closeAll()
		log.Printf("INFO: closed sqlite pool for %s", path)
	}
}

// CloseAll closes every pool in the registry. Borrowed connections are
// closed as they are released.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	pools := r.pools
	r.pools = make(map[string]*pool)
	r.mu.Unlock()

	for path, pl := range pools {
		pl.closeAll()
		log.Printf("INFO: closed sqlite pool for %s", path)
	}
}

// Path returns the database file path this client operates on.
func (s *SQLite) Path() string { return s.cfg.Path }

// Stats returns the occupancy of this client's pool.
func (s *SQLite) Stats() PoolStats {
	available, borrowed := s.pool.counts()
	return PoolStats{Available: available, Borrowed: borrowed}
}

// WithObserver sets the observer and returns the client for chaining.
func (s *SQLite) WithObserver(observer observability.Observer) *SQLite {
	s.observer = observer
	return s
}
