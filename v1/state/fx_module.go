package state

import (
	"context"
	"log"

	"go.uber.org/fx"

	"github.com/cipworks/common/v1/observability"
)

// FXModule provides the Redis-backed state manager via dependency
// injection. Applications that want the in-process implementation can
// provide state.Manager themselves with fx.Provide and NewMemoryManager.
//
// This module provides both *RedisManager and the Manager interface.
var FXModule = fx.Module("state",
	fx.Provide(
		NewRedisManagerWithDI, // Returns *RedisManager for internal lifecycle
		fx.Annotate(
			ProvideManager,      // Returns Manager interface
			fx.As(new(Manager)), // Expose as Manager interface
		),
	),
	fx.Invoke(RegisterStateLifecycle),
)

// ProvideManager wraps the concrete *RedisManager and returns it as the
// Manager interface.
func ProvideManager(m *RedisManager) Manager {
	return m
}

// StateParams groups the dependencies needed to create a state manager via
// dependency injection.
type StateParams struct {
	fx.In

	Config   RedisConfig
	Observer observability.Observer `optional:"true"`
}

// NewRedisManagerWithDI creates a new Redis-backed manager using dependency
// injection. The observer is optional and attached when another module
// provides one.
func NewRedisManagerWithDI(params StateParams) (*RedisManager, error) {
	m, err := NewRedisManager(params.Config)
	if err != nil {
		return nil, err
	}
	if params.Observer != nil {
		m.WithObserver(params.Observer)
	}
	return m, nil
}

// RegisterStateLifecycle registers the manager with the fx lifecycle
// system, closing the Redis client on shutdown.
func RegisterStateLifecycle(lc fx.Lifecycle, m *RedisManager) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Println("INFO: state manager initialized")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("INFO: shutting down state manager")
			return m.Close()
		},
	})
}
