package postgres

import (
	"context"
	"log"

	"go.uber.org/fx"

	"github.com/cipworks/common/v1/dbclient"
)

// FXModule is an fx module that provides the networked database client.
// It registers the constructor for dependency injection and sets up
// lifecycle hooks to shut down the client's pool on application stop.
//
// This module provides both *Postgres and the dbclient.Client interface.
var FXModule = fx.Module("postgres",
	fx.Provide(
		NewPostgresClientWithDI, // Returns *Postgres for internal lifecycle
		fx.Annotate(
			ProvideClient,               // Returns dbclient.Client interface
			fx.As(new(dbclient.Client)), // Expose as interface
		),
	),
	fx.Invoke(RegisterPostgresLifecycle),
)

// ProvideClient wraps the concrete *Postgres and returns it as the
// dbclient.Client interface. This enables applications to depend on the
// interface rather than the concrete type.
func ProvideClient(pg *Postgres) dbclient.Client {
	return pg
}

// PostgresParams groups the dependencies needed to create a client via
// dependency injection.
//
// The embedded fx.In marker enables automatic injection of the struct fields
// from the dependency container.
type PostgresParams struct {
	fx.In

	Config Config
}

// NewPostgresClientWithDI creates a new client using dependency injection.
// The Config dependency is automatically provided via PostgresParams.
func NewPostgresClientWithDI(params PostgresParams) (*Postgres, error) {
	return NewClient(context.Background(), params.Config)
}

// RegisterPostgresLifecycle registers the client with the fx lifecycle
// system, ensuring the shared pool is closed on shutdown.
func RegisterPostgresLifecycle(lc fx.Lifecycle, client *Postgres) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Printf("INFO: postgres client ready for %s", client.Identity())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Printf("INFO: shutting down postgres client for %s", client.Identity())
			return client.Shutdown(ctx)
		},
	})
}
