package settings

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/cipworks/common/v1/database"
	"github.com/cipworks/common/v1/ingest"
	"github.com/cipworks/common/v1/logger"
	"github.com/cipworks/common/v1/postgres"
	"github.com/cipworks/common/v1/sqlite"
	"github.com/cipworks/common/v1/state"
)

// Load resolves the configuration from defaults, an optional YAML file
// and environment variables, in that order. An empty path skips the
// file layer. The result is validated before it is returned.
func Load(path string) (*Settings, error) {
	s := &Settings{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("settings: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("settings: parsing %s: %w", path, err)
		}
	}

	if err := envconfig.Process("", s); err != nil {
		return nil, fmt.Errorf("settings: reading environment: %w", err)
	}

	s.applyDefaults()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

var validLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warning": true,
	"error":   true,
}

// Validate checks cross-field constraints. Load calls it, so manual
// calls are only needed for hand-built Settings values.
func (s *Settings) Validate() error {
	switch s.Env {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		return fmt.Errorf("settings: unknown environment %q", s.Env)
	}

	if s.DB.Port < 1 || s.DB.Port > 65535 {
		return fmt.Errorf("settings: db port %d out of range", s.DB.Port)
	}
	if s.Redis.Port < 1 || s.Redis.Port > 65535 {
		return fmt.Errorf("settings: redis port %d out of range", s.Redis.Port)
	}
	if s.AMQP.Port < 1 || s.AMQP.Port > 65535 {
		return fmt.Errorf("settings: amqp port %d out of range", s.AMQP.Port)
	}
	if s.DB.PoolMin < 1 {
		return fmt.Errorf("settings: db pool_min must be at least 1, got %d", s.DB.PoolMin)
	}
	if s.DB.PoolMax < s.DB.PoolMin {
		return fmt.Errorf("settings: db pool_max (%d) must be >= pool_min (%d)", s.DB.PoolMax, s.DB.PoolMin)
	}
	if s.SQLite.PoolMax < 1 {
		return fmt.Errorf("settings: sqlite pool_max must be at least 1, got %d", s.SQLite.PoolMax)
	}

	for name, level := range map[string]string{
		"level":         s.Logging.Level,
		"db_level":      s.Logging.DBLevel,
		"process_level": s.Logging.ProcessLevel,
	} {
		if level == "" {
			continue
		}
		if !validLevels[strings.ToLower(level)] {
			return fmt.Errorf("settings: invalid log %s %q", name, level)
		}
	}

	switch s.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("settings: invalid log format %q", s.Logging.Format)
	}
	switch s.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("settings: invalid log output %q", s.Logging.Output)
	}

	return nil
}

// IsDevelopment reports whether the development environment is active.
func (s *Settings) IsDevelopment() bool { return s.Env == EnvDevelopment }

// IsProduction reports whether the production environment is active.
func (s *Settings) IsProduction() bool { return s.Env == EnvProduction }

// DatabaseConfig projects the settings onto the database selector.
// Development uses the embedded SQLite backend, every other environment
// uses networked PostgreSQL.
func (s *Settings) DatabaseConfig() database.Config {
	if s.IsDevelopment() {
		return database.SQLiteConfig(sqlite.Config{
			Path:          s.SQLite.Path,
			MaxConns:      s.SQLite.PoolMax,
			BusyTimeoutMS: s.SQLite.BusyTimeoutMS,
		})
	}
	return database.PostgresConfig(postgres.Config{
		Connection: postgres.Connection{
			Host:     s.DB.Host,
			Port:     s.DB.Port,
			User:     s.DB.User,
			Password: s.DB.Password,
			DbName:   s.DB.Name,
			SSLMode:  s.DB.SSLMode,
		},
		Pool: postgres.PoolSettings{
			MinConns: s.DB.PoolMin,
			MaxConns: s.DB.PoolMax,
		},
	})
}

// RedisConfig projects the settings onto the state manager config.
func (s *Settings) RedisConfig() state.RedisConfig {
	return state.RedisConfig{
		Host:      s.Redis.Host,
		Port:      s.Redis.Port,
		Password:  s.Redis.Password,
		DB:        s.Redis.DB,
		Namespace: s.Redis.Namespace,
	}
}

// LoggerConfig projects the settings onto the logger config.
func (s *Settings) LoggerConfig() logger.Config {
	moduleLevels := map[string]string{}
	if s.Logging.DBLevel != "" {
		moduleLevels["db"] = strings.ToLower(s.Logging.DBLevel)
	}
	if s.Logging.ProcessLevel != "" {
		moduleLevels["process"] = strings.ToLower(s.Logging.ProcessLevel)
	}
	return logger.Config{
		Level:        strings.ToLower(s.Logging.Level),
		Format:       s.Logging.Format,
		Output:       s.Logging.Output,
		FilePath:     s.Logging.FilePath,
		MaxSizeMB:    s.Logging.MaxSizeMB,
		Backups:      s.Logging.Backups,
		ModuleLevels: moduleLevels,
	}
}

// IngestConfig projects the settings onto the ingest consumer config.
func (s *Settings) IngestConfig() ingest.Config {
	return ingest.Config{
		Connection: ingest.Connection{
			Host:         s.AMQP.Host,
			Port:         s.AMQP.Port,
			User:         s.AMQP.User,
			Password:     s.AMQP.Password,
			IsSSLEnabled: s.AMQP.SSLEnabled,
		},
		Channel: ingest.Channel{
			ExchangeName: s.AMQP.Exchange,
			QueueName:    s.AMQP.QueueName,
			RoutingKeys:  s.AMQP.RoutingKeys,
		},
		Workers: s.Queue.Workers,
	}
}

func mask(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	return "***"
}

// Display renders the configuration with secrets masked, for logging at
// startup.
func (s *Settings) Display() string {
	var b strings.Builder
	fmt.Fprintf(&b, "======== CIP Processing Configuration ========\n")
	fmt.Fprintf(&b, "Environment: %s\n", s.Env)
	fmt.Fprintf(&b, "Database:\n")
	fmt.Fprintf(&b, "    Host: %s\n", s.DB.Host)
	fmt.Fprintf(&b, "    Name: %s\n", s.DB.Name)
	fmt.Fprintf(&b, "    User: %s\n", s.DB.User)
	fmt.Fprintf(&b, "    Password: %s\n", mask(s.DB.Password))
	fmt.Fprintf(&b, "    Port: %d\n", s.DB.Port)
	fmt.Fprintf(&b, "    Pool: %d..%d\n", s.DB.PoolMin, s.DB.PoolMax)
	fmt.Fprintf(&b, "SQLite:\n")
	fmt.Fprintf(&b, "    Path: %s\n", s.SQLite.Path)
	fmt.Fprintf(&b, "    Pool Max: %d\n", s.SQLite.PoolMax)
	fmt.Fprintf(&b, "Redis:\n")
	fmt.Fprintf(&b, "    Host: %s\n", s.Redis.Host)
	fmt.Fprintf(&b, "    Port: %d\n", s.Redis.Port)
	fmt.Fprintf(&b, "    Password: %s\n", mask(s.Redis.Password))
	fmt.Fprintf(&b, "    DB: %d\n", s.Redis.DB)
	fmt.Fprintf(&b, "    Namespace: %s\n", s.Redis.Namespace)
	fmt.Fprintf(&b, "AMQP:\n")
	fmt.Fprintf(&b, "    Host: %s\n", s.AMQP.Host)
	fmt.Fprintf(&b, "    Port: %d\n", s.AMQP.Port)
	fmt.Fprintf(&b, "    User: %s\n", s.AMQP.User)
	fmt.Fprintf(&b, "    Password: %s\n", mask(s.AMQP.Password))
	fmt.Fprintf(&b, "    Exchange: %s\n", s.AMQP.Exchange)
	fmt.Fprintf(&b, "    Queue: %s\n", s.AMQP.QueueName)
	fmt.Fprintf(&b, "    Routing Keys: %s\n", strings.Join(s.AMQP.RoutingKeys, ", "))
	fmt.Fprintf(&b, "Queue:\n")
	fmt.Fprintf(&b, "    Workers: %d\n", s.Queue.Workers)
	fmt.Fprintf(&b, "    Receive Timeout: %ds\n", s.Queue.ReceiveTimeout)
	fmt.Fprintf(&b, "    Warn Depth: %d\n", s.Queue.WarnDepth)
	fmt.Fprintf(&b, "Logging:\n")
	fmt.Fprintf(&b, "    Level: %s\n", s.Logging.Level)
	fmt.Fprintf(&b, "    Format: %s\n", s.Logging.Format)
	fmt.Fprintf(&b, "    Output: %s\n", s.Logging.Output)
	fmt.Fprintf(&b, "    File Path: %s\n", s.Logging.FilePath)
	fmt.Fprintf(&b, "=============================================")
	return b.String()
}

// ReceiveTimeoutDuration returns the auto-finish timeout as a Duration.
func (s *Settings) ReceiveTimeoutDuration() time.Duration {
	return time.Duration(s.Queue.ReceiveTimeout) * time.Second
}
