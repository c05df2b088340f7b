package sqlite

import (
	"context"
	"log"

	"go.uber.org/fx"

	"github.com/cipworks/common/v1/dbclient"
)

// FXModule is an fx module that provides the embedded database client.
// It registers the constructor for dependency injection and sets up
// lifecycle hooks to shut down the client's pool on application stop.
//
// This module provides both *SQLite and the dbclient.Client interface.
var FXModule = fx.Module("sqlite",
	fx.Provide(
		NewSQLiteClientWithDI, // Returns *SQLite for internal lifecycle
		fx.Annotate(
			ProvideClient,               // Returns dbclient.Client interface
			fx.As(new(dbclient.Client)), // Expose as interface
		),
	),
	fx.Invoke(RegisterSQLiteLifecycle),
)

// ProvideClient wraps the concrete *SQLite and returns it as the
// dbclient.Client interface.
func ProvideClient(db *SQLite) dbclient.Client {
	return db
}

// SQLiteParams groups the dependencies needed to create a client via
// dependency injection.
type SQLiteParams struct {
	fx.In

	Config Config
}

// NewSQLiteClientWithDI creates a new client using dependency injection.
// The Config dependency is automatically provided via SQLiteParams.
func NewSQLiteClientWithDI(params SQLiteParams) (*SQLite, error) {
	return NewClient(context.Background(), params.Config)
}

// RegisterSQLiteLifecycle registers the client with the fx lifecycle
// system, ensuring the shared pool is closed on shutdown.
func RegisterSQLiteLifecycle(lc fx.Lifecycle, client *SQLite) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Printf("INFO: sqlite client ready for %s", client.Path())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Printf("INFO: shutting down sqlite client for %s", client.Path())
			return client.Shutdown()
		},
	})
}
