package database

import (
	"context"
	"log"

	"go.uber.org/fx"

	"github.com/cipworks/common/v1/dbclient"
	"github.com/cipworks/common/v1/postgres"
	"github.com/cipworks/common/v1/sqlite"
)

// FXModule provides dbclient.Client via dependency injection.
// It selects the implementation (postgres or sqlite) based on the provided
// Config.
//
// Usage:
//
//	app := fx.New(
//	    database.FXModule,
//	    fx.Provide(func() database.Config {
//	        return database.PostgresConfig(postgres.Config{...})
//	    }),
//	    fx.Invoke(func(db dbclient.Client) {
//	        // backend-agnostic code
//	    }),
//	)
var FXModule = fx.Module("database",
	fx.Provide(NewClientWithDI),
	fx.Invoke(RegisterDatabaseLifecycle),
)

// DatabaseParams groups the dependencies needed to create a database client
type DatabaseParams struct {
	fx.In

	Config Config
}

// DatabaseLifecycleParams groups the dependencies needed for database
// lifecycle management
type DatabaseLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    dbclient.Client
}

// NewClientWithDI creates a database client using dependency injection.
// The concrete implementation is selected based on Config.Type.
func NewClientWithDI(params DatabaseParams) (dbclient.Client, error) {
	return NewClient(context.Background(), params.Config)
}

// RegisterDatabaseLifecycle registers the database client with the fx
// lifecycle system. On shutdown the selected backend's pool is closed.
func RegisterDatabaseLifecycle(params DatabaseLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Println("INFO: Database client initialized")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("INFO: Shutting down database client")
			switch c := params.Client.(type) {
			case *postgres.Postgres:
				return c.Shutdown(ctx)
			case *sqlite.SQLite:
				return c.Shutdown()
			default:
				return c.Close()
			}
		},
	})
}
