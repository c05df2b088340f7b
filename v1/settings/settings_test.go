package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if s.Env != EnvDevelopment {
		t.Errorf("Env = %q, want development", s.Env)
	}
	if s.DB.Host != "localhost" || s.DB.Port != 5432 || s.DB.Name != "cipdb" || s.DB.User != "cipuser" {
		t.Errorf("DB defaults = %+v", s.DB)
	}
	if s.DB.PoolMin != 1 || s.DB.PoolMax != 10 {
		t.Errorf("pool defaults = %d..%d, want 1..10", s.DB.PoolMin, s.DB.PoolMax)
	}
	if s.SQLite.Path != "./data/cip_debug.db" || s.SQLite.PoolMax != 5 {
		t.Errorf("SQLite defaults = %+v", s.SQLite)
	}
	if s.Logging.Level != "info" || s.Logging.Format != "console" {
		t.Errorf("Logging defaults = %+v", s.Logging)
	}
	if len(s.AMQP.RoutingKeys) != 2 {
		t.Errorf("AMQP routing key defaults = %v", s.AMQP.RoutingKeys)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
env: production
db:
  host: db.internal
  port: 5433
  password: secret
  pool_min: 2
  pool_max: 20
logging:
  level: warning
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if s.Env != EnvProduction {
		t.Errorf("Env = %q, want production", s.Env)
	}
	if s.DB.Host != "db.internal" || s.DB.Port != 5433 {
		t.Errorf("DB = %+v", s.DB)
	}
	if s.DB.PoolMin != 2 || s.DB.PoolMax != 20 {
		t.Errorf("pool = %d..%d, want 2..20", s.DB.PoolMin, s.DB.PoolMax)
	}
	if s.Logging.Level != "warning" || s.Logging.Format != "json" {
		t.Errorf("Logging = %+v", s.Logging)
	}
	// Untouched sections keep their defaults.
	if s.Redis.Host != "localhost" || s.Redis.Namespace != "cip" {
		t.Errorf("Redis = %+v", s.Redis)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("db:\n  host: from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("DB_HOST", "from-env")
	t.Setenv("DB_POOL_MAX", "30")
	t.Setenv("REDIS_NAMESPACE", "cip_test")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if s.DB.Host != "from-env" {
		t.Errorf("DB.Host = %q, want from-env", s.DB.Host)
	}
	if s.DB.PoolMax != 30 {
		t.Errorf("DB.PoolMax = %d, want 30", s.DB.PoolMax)
	}
	if s.Redis.Namespace != "cip_test" {
		t.Errorf("Redis.Namespace = %q, want cip_test", s.Redis.Namespace)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load with a missing file should fail")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Settings {
		s := &Settings{}
		s.applyDefaults()
		return s
	}

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"pool max below min", func(s *Settings) { s.DB.PoolMin = 5; s.DB.PoolMax = 2 }},
		{"unknown environment", func(s *Settings) { s.Env = "test" }},
		{"db port out of range", func(s *Settings) { s.DB.Port = 70000 }},
		{"bad log level", func(s *Settings) { s.Logging.Level = "verbose" }},
		{"bad log format", func(s *Settings) { s.Logging.Format = "xml" }},
		{"bad log output", func(s *Settings) { s.Logging.Output = "syslog" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			if err := s.Validate(); err == nil {
				t.Error("Validate should fail")
			}
		})
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("Validate on defaults: %v", err)
	}
}

func TestDatabaseConfigSelectsBackend(t *testing.T) {
	s := &Settings{}
	s.applyDefaults()

	cfg := s.DatabaseConfig()
	if cfg.Type != "sqlite" || cfg.SQLite == nil {
		t.Errorf("development config = %+v, want sqlite", cfg)
	}
	if cfg.SQLite.Path != s.SQLite.Path {
		t.Errorf("sqlite path = %q, want %q", cfg.SQLite.Path, s.SQLite.Path)
	}

	s.Env = EnvProduction
	cfg = s.DatabaseConfig()
	if cfg.Type != "postgres" || cfg.Postgres == nil {
		t.Errorf("production config = %+v, want postgres", cfg)
	}
	if cfg.Postgres.Connection.DbName != "cipdb" {
		t.Errorf("postgres db = %q, want cipdb", cfg.Postgres.Connection.DbName)
	}
	if cfg.Postgres.Pool.MinConns != 1 || cfg.Postgres.Pool.MaxConns != 10 {
		t.Errorf("postgres pool = %+v", cfg.Postgres.Pool)
	}
}

func TestLoggerConfigModuleLevels(t *testing.T) {
	s := &Settings{}
	s.applyDefaults()
	s.Logging.DBLevel = "DEBUG"

	cfg := s.LoggerConfig()
	if cfg.ModuleLevels["db"] != "debug" {
		t.Errorf("ModuleLevels = %v", cfg.ModuleLevels)
	}
	if _, ok := cfg.ModuleLevels["process"]; ok {
		t.Error("unset process level should not appear")
	}
}

func TestDisplayMasksSecrets(t *testing.T) {
	s := &Settings{}
	s.applyDefaults()
	s.DB.Password = "hunter2"

	out := s.Display()
	if strings.Contains(out, "hunter2") {
		t.Error("Display leaked the database password")
	}
	if !strings.Contains(out, "Password: ***") {
		t.Error("Display should mask a set password")
	}
	if !strings.Contains(out, "Environment: development") {
		t.Errorf("Display output:\n%s", out)
	}
}
