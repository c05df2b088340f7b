package settings

// Application environments. Development selects the embedded SQLite
// database backend, staging and production select PostgreSQL.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Settings combines all configuration sections of a CIP service.
type Settings struct {
	// Env is the application environment.
	// One of "development", "staging" or "production".
	// Default: "development"
	Env string `yaml:"env" envconfig:"APP_ENV"`

	DB      Database `yaml:"db"`
	SQLite  SQLite   `yaml:"sqlite"`
	Redis   Redis    `yaml:"redis"`
	AMQP    AMQP     `yaml:"amqp"`
	Queue   Queue    `yaml:"queue"`
	Logging Logging  `yaml:"logging"`
}

// Database holds the PostgreSQL connection and pool settings.
type Database struct {
	// Default: "localhost"
	Host string `yaml:"host" envconfig:"DB_HOST"`

	// Default: 5432
	Port int `yaml:"port" envconfig:"DB_PORT"`

	// Default: "cipdb"
	Name string `yaml:"name" envconfig:"DB_NAME"`

	// Default: "cipuser"
	User string `yaml:"user" envconfig:"DB_USER"`

	// Default: "" (no password)
	Password string `yaml:"password" envconfig:"DB_PASSWORD"`

	// Default: "disable"
	SSLMode string `yaml:"ssl_mode" envconfig:"DB_SSL_MODE"`

	// Connections opened eagerly per pool.
	// Default: 1
	PoolMin int `yaml:"pool_min" envconfig:"DB_POOL_MIN"`

	// Upper bound of connections per pool.
	// Default: 10
	PoolMax int `yaml:"pool_max" envconfig:"DB_POOL_MAX"`
}

// SQLite holds the settings for the embedded database backend used in
// development.
type SQLite struct {
	// Default: "./data/cip_debug.db"
	Path string `yaml:"path" envconfig:"SQLITE_DB_PATH"`

	// Default: 5
	PoolMax int `yaml:"pool_max" envconfig:"SQLITE_POOL_MAX"`

	// Default: 5000
	BusyTimeoutMS int `yaml:"busy_timeout_ms" envconfig:"SQLITE_BUSY_TIMEOUT_MS"`
}

// Redis holds the connection settings for the state manager.
type Redis struct {
	// Default: "localhost"
	Host string `yaml:"host" envconfig:"REDIS_HOST"`

	// Default: 6379
	Port int `yaml:"port" envconfig:"REDIS_PORT"`

	// Default: "" (no password)
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`

	// Redis database index.
	// Default: 0
	DB int `yaml:"db" envconfig:"REDIS_DB"`

	// Key prefix shared by all state entries.
	// Default: "cip"
	Namespace string `yaml:"namespace" envconfig:"REDIS_NAMESPACE"`
}

// AMQP holds the broker settings for the ingest consumer.
type AMQP struct {
	// Default: "localhost"
	Host string `yaml:"host" envconfig:"AMQP_HOST"`

	// Default: 5672
	Port int `yaml:"port" envconfig:"AMQP_PORT"`

	// Default: "guest"
	User string `yaml:"user" envconfig:"AMQP_USER"`

	// Default: "guest"
	Password string `yaml:"password" envconfig:"AMQP_PASSWORD"`

	// Topic exchange the gateway publishes to.
	// Default: "cip.ingest"
	Exchange string `yaml:"exchange" envconfig:"AMQP_EXCHANGE"`

	// Queue bound to the exchange for this service.
	// Default: "cip.ingest.raw"
	QueueName string `yaml:"queue" envconfig:"AMQP_QUEUE"`

	// Routing key patterns the queue is bound with.
	// Default: "raw.#", "gateway.status"
	RoutingKeys []string `yaml:"routing_keys" envconfig:"AMQP_ROUTING_KEYS"`

	// Default: false
	SSLEnabled bool `yaml:"ssl_enabled" envconfig:"AMQP_SSL_ENABLED"`
}

// Queue holds the consumer tuning settings.
type Queue struct {
	// Number of consumer workers.
	// Default: 1
	Workers int `yaml:"workers" envconfig:"QUEUE_WORKERS"`

	// Seconds of silence after which an active run is auto-finished.
	// Default: 120
	ReceiveTimeout int `yaml:"receive_timeout" envconfig:"QUEUE_RECEIVE_TIMEOUT"`

	// Queue depth that triggers a backlog warning.
	// Default: 1000
	WarnDepth int `yaml:"warn_depth" envconfig:"QUEUE_WARN_DEPTH"`
}

// Logging holds the logger settings.
type Logging struct {
	// One of "debug", "info", "warning", "error".
	// Default: "info"
	Level string `yaml:"level" envconfig:"LOG_LEVEL"`

	// One of "console", "json".
	// Default: "console"
	Format string `yaml:"format" envconfig:"LOG_FORMAT"`

	// One of "console", "file", "both".
	// Default: "console"
	Output string `yaml:"output" envconfig:"LOG_OUTPUT"`

	// Used when Output is "file" or "both".
	// Default: "./logs/cip_app.log"
	FilePath string `yaml:"file_path" envconfig:"LOG_FILE_PATH"`

	// Default: 10
	MaxSizeMB int `yaml:"max_size_mb" envconfig:"LOG_MAX_SIZE_MB"`

	// Rotated files kept on disk.
	// Default: 5
	Backups int `yaml:"backups" envconfig:"LOG_BACKUPS"`

	// Level override for the database packages.
	// Default: "" (inherit Level)
	DBLevel string `yaml:"db_level" envconfig:"LOG_DB_LEVEL"`

	// Level override for the ingest pipeline.
	// Default: "" (inherit Level)
	ProcessLevel string `yaml:"process_level" envconfig:"LOG_PROCESS_LEVEL"`
}

func (s *Settings) applyDefaults() {
	if s.Env == "" {
		s.Env = EnvDevelopment
	}
	if s.DB.Host == "" {
		s.DB.Host = "localhost"
	}
	if s.DB.Port == 0 {
		s.DB.Port = 5432
	}
	if s.DB.Name == "" {
		s.DB.Name = "cipdb"
	}
	if s.DB.User == "" {
		s.DB.User = "cipuser"
	}
	if s.DB.SSLMode == "" {
		s.DB.SSLMode = "disable"
	}
	if s.DB.PoolMin == 0 {
		s.DB.PoolMin = 1
	}
	if s.DB.PoolMax == 0 {
		s.DB.PoolMax = 10
	}
	if s.SQLite.Path == "" {
		s.SQLite.Path = "./data/cip_debug.db"
	}
	if s.SQLite.PoolMax == 0 {
		s.SQLite.PoolMax = 5
	}
	if s.SQLite.BusyTimeoutMS == 0 {
		s.SQLite.BusyTimeoutMS = 5000
	}
	if s.Redis.Host == "" {
		s.Redis.Host = "localhost"
	}
	if s.Redis.Port == 0 {
		s.Redis.Port = 6379
	}
	if s.Redis.Namespace == "" {
		s.Redis.Namespace = "cip"
	}
	if s.AMQP.Host == "" {
		s.AMQP.Host = "localhost"
	}
	if s.AMQP.Port == 0 {
		s.AMQP.Port = 5672
	}
	if s.AMQP.User == "" {
		s.AMQP.User = "guest"
	}
	if s.AMQP.Password == "" {
		s.AMQP.Password = "guest"
	}
	if s.AMQP.Exchange == "" {
		s.AMQP.Exchange = "cip.ingest"
	}
	if s.AMQP.QueueName == "" {
		s.AMQP.QueueName = "cip.ingest.raw"
	}
	if len(s.AMQP.RoutingKeys) == 0 {
		s.AMQP.RoutingKeys = []string{"raw.#", "gateway.status"}
	}
	if s.Queue.Workers == 0 {
		s.Queue.Workers = 1
	}
	if s.Queue.ReceiveTimeout == 0 {
		s.Queue.ReceiveTimeout = 120
	}
	if s.Queue.WarnDepth == 0 {
		s.Queue.WarnDepth = 1000
	}
	if s.Logging.Level == "" {
		s.Logging.Level = "info"
	}
	if s.Logging.Format == "" {
		s.Logging.Format = "console"
	}
	if s.Logging.Output == "" {
		s.Logging.Output = "console"
	}
	if s.Logging.FilePath == "" {
		s.Logging.FilePath = "./logs/cip_app.log"
	}
	if s.Logging.MaxSizeMB == 0 {
		s.Logging.MaxSizeMB = 10
	}
	if s.Logging.Backups == 0 {
		s.Logging.Backups = 5
	}
}
