// Package database selects a concrete dbclient.Client implementation from
// configuration.
//
// The shared interface and value types live in the dbclient package; the
// implementations live in the postgres and sqlite packages. This package
// only wires them together, so applications can switch backends without code
// changes:
//
//	var client dbclient.Client
//	switch cfg.Type {
//	case "postgres":
//	    client, err = postgres.NewClient(ctx, *cfg.Postgres)
//	case "sqlite":
//	    client, err = sqlite.NewClient(ctx, *cfg.SQLite)
//	}
//
// which is exactly what NewClient does.
//
// # FX Module Integration
//
//	app := fx.New(
//	    database.FXModule,
//	    fx.Provide(func() database.Config {
//	        return database.SQLiteConfig(sqlite.Config{Path: "./data/cip_debug.db"})
//	    }),
//	    fx.Invoke(func(db dbclient.Client) { ... }),
//	)
//
// The module provides dbclient.Client and shuts the selected backend down on
// application stop.
//
// # Backend-Specific Behavior
//
// While the interface is unified, two behaviors differ by construction:
//   - postgres keys pools and client instances by "host:port/database@user";
//     sqlite keys pools by file path and never shares client instances.
//   - sqlite translates the query dialect before execution; postgres only
//     rewrites positional markers.
//
// See the individual backend packages for details.
package database
