// Package state provides a small key-value state store for pipeline
// components: current run markers, gateway liveness, ingest cursors and
// similar coordination values.
//
// Two implementations of the Manager interface are provided:
//   - MemoryManager: an in-process map, for single-process deployments and
//     tests
//   - RedisManager: a Redis-backed store with a shared key namespace, for
//     multi-process deployments
//
// Both implement the same contract; components depend on the Manager
// interface and the deployment picks the backing through configuration.
//
// # Namespacing
//
// The Redis implementation prefixes every key with a namespace (default
// "cip"), so several applications can share one Redis database. Clear and
// GetAll are namespace-scoped: they SCAN the namespace pattern and never
// touch foreign keys. The memory implementation has a private map and needs
// no prefix.
//
// # Usage
//
//	st := state.NewMemoryManager()
//	err := st.Set(ctx, state.KeyActiveRunID, "42", 0)
//	id, err := st.Get(ctx, state.KeyActiveRunID)
//
// Or Redis-backed:
//
//	st, err := state.NewRedisManager(state.RedisConfig{
//	    Host: "localhost",
//	    Port: 6379,
//	})
//
// # Queue
//
// The package also provides Queue, a Redis-backed FIFO used to hand work
// between processes (LPUSH/RPOP). See NewQueue.
//
// # FX Module Integration
//
//	app := fx.New(
//	    state.FXModule,
//	    fx.Provide(func() state.RedisConfig { return loadConfig() }),
//	    fx.Invoke(func(st state.Manager) { ... }),
//	)
package state
