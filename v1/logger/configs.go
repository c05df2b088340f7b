package logger

// Log levels accepted by Config.Level and Config.ModuleLevels.
const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Log output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Log output destinations.
const (
	OutputConsole = "console"
	OutputFile    = "file"
	OutputBoth    = "both"
)

// Config defines the configuration structure for the logger.
type Config struct {
	// Level is the root log level.
	// One of "debug", "info", "warning", "error".
	// Default: "info"
	Level string `yaml:"level" envconfig:"LOG_LEVEL"`

	// Format selects the encoding, "console" or "json".
	// Default: "console"
	Format string `yaml:"format" envconfig:"LOG_FORMAT"`

	// Output selects the destination, "console", "file" or "both".
	// Default: "console"
	Output string `yaml:"output" envconfig:"LOG_OUTPUT"`

	// FilePath is the log file written when Output is "file" or "both".
	// The file is rotated by size.
	// Default: "./logs/cip_app.log"
	FilePath string `yaml:"file_path" envconfig:"LOG_FILE_PATH"`

	// MaxSizeMB is the size at which the log file is rotated.
	// Default: 10
	MaxSizeMB int `yaml:"max_size_mb" envconfig:"LOG_MAX_SIZE_MB"`

	// Backups is the number of rotated files kept on disk.
	// Default: 5
	Backups int `yaml:"backups" envconfig:"LOG_BACKUPS"`

	// ServiceName is attached to every entry as the "service" field.
	// Default: "cip-common"
	ServiceName string `yaml:"service_name" envconfig:"LOG_SERVICE_NAME"`

	// ModuleLevels overrides the root level for named child loggers,
	// keyed by the name passed to Named. Known names are "db" for the
	// database packages and "process" for the ingest pipeline.
	ModuleLevels map[string]string `yaml:"module_levels"`
}

func (c *Config) applyDefaults() {
	if c.Level == "" {
		c.Level = Info
	}
	if c.Format == "" {
		c.Format = FormatConsole
	}
	if c.Output == "" {
		c.Output = OutputConsole
	}
	if c.FilePath == "" {
		c.FilePath = "./logs/cip_app.log"
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
	if c.Backups == 0 {
		c.Backups = 5
	}
	if c.ServiceName == "" {
		c.ServiceName = "cip-common"
	}
}
