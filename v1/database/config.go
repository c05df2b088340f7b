package database

import (
	"context"
	"fmt"

	"github.com/cipworks/common/v1/dbclient"
	"github.com/cipworks/common/v1/postgres"
	"github.com/cipworks/common/v1/sqlite"
)

// Config contains configuration for database client creation.
// Use one of the helper functions (PostgresConfig, SQLiteConfig) to create it.
type Config struct {
	// Type is the database type ("postgres" or "sqlite")
	Type string

	// Postgres configuration (used when Type = "postgres")
	Postgres *postgres.Config

	// SQLite configuration (used when Type = "sqlite")
	SQLite *sqlite.Config
}

// PostgresConfig creates a database.Config for the networked backend.
//
// Example:
//
//	fx.Provide(func() database.Config {
//	    return database.PostgresConfig(postgres.Config{
//	        Connection: postgres.Connection{
//	            Host: "localhost",
//	            Port: 5432,
//	            // ...
//	        },
//	    })
//	})
func PostgresConfig(cfg postgres.Config) Config {
	return Config{
		Type:     "postgres",
		Postgres: &cfg,
	}
}

// SQLiteConfig creates a database.Config for the embedded backend.
//
// Example:
//
//	fx.Provide(func() database.Config {
//	    return database.SQLiteConfig(sqlite.Config{
//	        Path: "./data/cip_debug.db",
//	    })
//	})
func SQLiteConfig(cfg sqlite.Config) Config {
	return Config{
		Type:   "sqlite",
		SQLite: &cfg,
	}
}

// NewClient creates the backend the Config selects.
func NewClient(ctx context.Context, cfg Config) (dbclient.Client, error) {
	switch cfg.Type {
	case "postgres":
		if cfg.Postgres == nil {
			return nil, fmt.Errorf("database: postgres config is required when type=postgres")
		}
		return postgres.NewClient(ctx, *cfg.Postgres)

	case "sqlite":
		if cfg.SQLite == nil {
			return nil, fmt.Errorf("database: sqlite config is required when type=sqlite")
		}
		return sqlite.NewClient(ctx, *cfg.SQLite)

	default:
		return nil, fmt.Errorf("database: unsupported type: %q (must be 'postgres' or 'sqlite')", cfg.Type)
	}
}
