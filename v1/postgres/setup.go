package postgres

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/cipworks/common/v1/observability"
)

// Postgres is the networked implementation of the dbclient.Client interface.
// Instances are cheap handles over a shared per-identity connection pool.
//
// Postgres implements the dbclient.Client interface.
type Postgres struct {
	// cfg stores the configuration for this client
	cfg Config

	// identity is the pool identity ("host:port/database@user")
	identity string

	// reg is the registry this client was created from
	reg *Registry

	// pool is the shared connection pool for identity
	pool *pool

	// observer provides optional observability hooks
	observer observability.Observer

	// mu protects the held connection
	mu sync.Mutex

	// held is the connection borrowed by Connect, nil otherwise
	held conn
}

// PoolStats reports the occupancy of one identity's pool.
type PoolStats struct {
	Available int
	Borrowed  int
}

// Registry owns the connection pools and client instances for a set of
// identities. The package keeps a default Registry used by NewClient; create
// a separate Registry when isolated pools are needed, for example in tests.
//
// All Registry methods are safe for concurrent use.
type Registry struct {
	poolsMu sync.RWMutex
	pools   map[string]*pool

	instancesMu sync.RWMutex
	instances   map[string]*Postgres

	// dial creates one connection for a Connection. Overridden in tests.
	dial func(ctx context.Context, c Connection) (conn, error)
}

// NewRegistry creates an empty Registry that dials real pgx connections.
func NewRegistry() *Registry {
	return &Registry{
		pools:     make(map[string]*pool),
		instances: make(map[string]*Postgres),
		dial:      pgxDial,
	}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the registry used by NewClient.
func DefaultRegistry() *Registry { return defaultRegistry }

// pgxDial establishes a single raw pgx connection.
func pgxDial(ctx context.Context, c Connection) (conn, error) {
	pgConn, err := pgx.Connect(ctx, c.connString())
	if err != nil {
		return nil, err
	}
	return pgConn, nil
}

// NewClient creates a client in the default registry.
//
// Clients with equal connection identities are shared: the first call builds
// the client and its pool, later calls return the same *Postgres. Set
// Config.ForceNew to obtain a distinct instance; it still shares the
// identity's pool.
//
// Returns *Postgres concrete type (following Go best practice: "accept
// interfaces, return structs").
func NewClient(ctx context.Context, cfg Config) (*Postgres, error) {
	return defaultRegistry.NewClient(ctx, cfg)
}

// NewClient creates (or returns the registered) client for the configured
// identity within this registry.
func (r *Registry) NewClient(ctx context.Context, cfg Config) (*Postgres, error) {
	cfg.applyDefaults()
	identity := cfg.Connection.Identity()

	if !cfg.ForceNew {
		r.instancesMu.RLock()
		inst := r.instances[identity]
		r.instancesMu.RUnlock()
		if inst != nil {
			return inst, nil
		}
	}

	pl, err := r.getOrCreatePool(ctx, identity, cfg)
	if err != nil {
		return nil, err
	}

	db := &Postgres{
		cfg:      cfg,
		identity: identity,
		reg:      r,
		pool:     pl,
		observer: cfg.Observer,
	}

	if cfg.ForceNew {
		return db, nil
	}

	r.instancesMu.Lock()
	defer r.instancesMu.Unlock()
	// Another goroutine may have registered an instance while the pool was
	// being created; the first registration wins.
	if inst := r.instances[identity]; inst != nil {
		return inst, nil
	}
	r.instances[identity] = db
	return db, nil
}

// getOrCreatePool returns the pool for identity, creating it under a
// double-checked lock on first use.
func (r *Registry) getOrCreatePool(ctx context.Context, identity string, cfg Config) (*pool, error) {
	r.poolsMu.RLock()
	pl := r.pools[identity]
	r.poolsMu.RUnlock()
	if pl != nil {
		return pl, nil
	}

	r.poolsMu.Lock()
	defer r.poolsMu.Unlock()
	if pl := r.pools[identity]; pl != nil {
		return pl, nil
	}

	connCfg := cfg.Connection
	pl, err := newPool(ctx, identity, cfg.Pool.MinConns, cfg.Pool.MaxConns,
		func(ctx context.Context) (conn, error) { return r.dial(ctx, connCfg) })
	if err != nil {
		return nil, err
	}
	r.pools[identity] = pl
	return pl, nil
}

// Stats returns the occupancy of every pool in the registry.
func (r *Registry) Stats() map[string]PoolStats {
	r.poolsMu.RLock()
	defer r.poolsMu.RUnlock()

	stats := make(map[string]PoolStats, len(r.pools))
	for identity, pl := range r.pools {
		available, borrowed := pl.counts()
		stats[identity] = PoolStats{Available: available, Borrowed: borrowed}
	}
	return stats
}

// InstanceInfo is a diagnostic snapshot of the registry contents.
type InstanceInfo struct {
	Instances     []string
	Pools         []string
	InstanceCount int
	PoolCount     int
}

// InstanceInfo lists the registered client identities and pool identities.
func (r *Registry) InstanceInfo() InstanceInfo {
	var info InstanceInfo

	r.instancesMu.RLock()
	for identity := range r.instances {
		info.Instances = append(info.Instances, identity)
	}
	r.instancesMu.RUnlock()

	r.poolsMu.RLock()
	for identity := range r.pools {
		info.Pools = append(info.Pools, identity)
	}
	r.poolsMu.RUnlock()

	sort.Strings(info.Instances)
	sort.Strings(info.Pools)
	info.InstanceCount = len(info.Instances)
	info.PoolCount = len(info.Pools)
	return info
}

// Remove evicts the cached client for identity. The identity's pool is left
// in place for other handles; use ClosePool to tear it down as well.
func (r *Registry) Remove(identity string) {
	r.instancesMu.Lock()
	delete(r.instances, identity)
	r.instancesMu.Unlock()
}

// ClosePool closes the pool for one identity and evicts its cached client.
// Borrowed connections are closed as they are released.
func (r *Registry) ClosePool(ctx context.Context, identity string) {
	r.poolsMu.Lock()
	pl := r.pools[identity]
	delete(r.pools, identity)
	r.poolsMu.Unlock()

	r.Remove(identity)

	if pl != nil {
		pl.closeAll(ctx)
		log.Printf("INFO: closed connection pool for %s", identity)
	}
}

// CloseAll closes every pool in the registry and forgets all registered
// client instances. Borrowed connections are closed as they are released.
func (r *Registry) CloseAll(ctx context.Context) {
	r.poolsMu.Lock()
	pools := r.pools
	r.pools = make(map[string]*pool)
	r.poolsMu.Unlock()

	r.instancesMu.Lock()
	r.instances = make(map[string]*Postgres)
	r.instancesMu.Unlock()

	for identity, pl := range pools {
		pl.closeAll(ctx)
		log.Printf("INFO: closed connection pool for %s", identity)
	}
}

// Identity returns this client's pool identity.
func (p *Postgres) Identity() string { return p.identity }

// Stats returns the occupancy of this client's pool.
func (p *Postgres) Stats() PoolStats {
	available, borrowed := p.pool.counts()
	return PoolStats{Available: available, Borrowed: borrowed}
}

// WithObserver sets the observer and returns the client for chaining.
func (p *Postgres) WithObserver(observer observability.Observer) *Postgres {
	p.observer = observer
	return p
}
