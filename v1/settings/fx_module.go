package settings

import (
	"go.uber.org/fx"

	"github.com/cipworks/common/v1/database"
	"github.com/cipworks/common/v1/ingest"
	"github.com/cipworks/common/v1/logger"
	"github.com/cipworks/common/v1/state"
)

// FXModule derives the per-package configurations from a provided
// *Settings value. The application supplies the Settings itself, usually
// via fx.Provide(func() (*Settings, error) { return settings.Load(path) }).
var FXModule = fx.Module("settings",
	fx.Provide(
		ProvideDatabaseConfig,
		ProvideRedisConfig,
		ProvideLoggerConfig,
		ProvideIngestConfig,
	),
)

// ProvideDatabaseConfig derives the database selector config.
func ProvideDatabaseConfig(s *Settings) database.Config {
	return s.DatabaseConfig()
}

// ProvideRedisConfig derives the state manager config.
func ProvideRedisConfig(s *Settings) state.RedisConfig {
	return s.RedisConfig()
}

// ProvideLoggerConfig derives the logger config.
func ProvideLoggerConfig(s *Settings) logger.Config {
	return s.LoggerConfig()
}

// ProvideIngestConfig derives the ingest consumer config.
func ProvideIngestConfig(s *Settings) ingest.Config {
	return s.IngestConfig()
}
