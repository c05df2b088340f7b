// Package settings loads the shared application configuration for CIP
// services.
//
// Configuration is resolved in three layers, each overriding the one
// before it:
//
//  1. Built-in defaults (a working local development setup).
//  2. An optional YAML file.
//  3. Environment variables.
//
// # Usage
//
//	cfg, err := settings.Load("config.yaml")
//	if err != nil {
//		log.Fatalf("ERROR: invalid configuration: %v", err)
//	}
//	fmt.Println(cfg.Display())
//
// Passing an empty path skips the file layer, so services that are
// configured purely through the environment can call Load("").
//
// # Environment Variables
//
// Every field carries an envconfig tag naming its variable. The main
// groups are DB_* (PostgreSQL), SQLITE_*, REDIS_*, AMQP_*, QUEUE_* and
// LOG_*, plus APP_ENV for the environment selector.
//
// # Derived Configurations
//
// The Settings struct knows how to project itself onto the config types
// of the other packages in this module: DatabaseConfig picks the
// embedded SQLite backend in development and networked PostgreSQL
// otherwise, RedisConfig feeds v1/state, LoggerConfig feeds v1/logger
// and IngestConfig feeds v1/ingest. The fx module provides all of them,
// so an application only has to provide the Settings value itself.
package settings
