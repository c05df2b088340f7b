package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a wrapper around Uber's Zap logger.
// It provides a simplified interface to the underlying Zap logger, with
// named child loggers that can run at their own levels.
type Logger struct {
	// Zap is the underlying zap.Logger instance
	// This is exposed to allow direct access to Zap-specific functionality
	// when needed, but most logging should go through the wrapper methods.
	Zap *zap.Logger

	// base is the unfiltered logger Named children are derived from
	base *zap.Logger

	cfg Config
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case Debug:
		return zap.DebugLevel
	case Info:
		return zap.InfoLevel
	case Warning:
		return zap.WarnLevel
	case Error:
		return zap.ErrorLevel
	}
	return zap.InfoLevel
}

// NewLoggerClient initializes and returns a new instance of the logger
// based on configuration.
//
// The logger is configured with:
//   - Console or JSON encoding per Config.Format
//   - ISO8601 timestamp format
//   - Capital letter level encoding, colored on a console sink
//   - Process ID and service name as default fields
//   - Caller information (file and line) included in log entries
//   - Output to stderr, a rotated file, or both, per Config.Output
//
// Example:
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:  logger.Info,
//		Format: logger.FormatConsole,
//	})
//	log.Info("Application started", nil, nil)
func NewLoggerClient(cfg Config) *Logger {
	cfg.applyDefaults()

	toConsole := cfg.Output == OutputConsole || cfg.Output == OutputBoth
	toFile := cfg.Output == OutputFile || cfg.Output == OutputBoth

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeDuration = zapcore.MillisDurationEncoder

	var encoder zapcore.Encoder
	if cfg.Format == FormatJSON {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		// Color codes would end up in the file, so only a pure console
		// setup gets them.
		if toConsole && !toFile {
			encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	var sinks []zapcore.WriteSyncer
	if toConsole {
		sinks = append(sinks, zapcore.Lock(os.Stderr))
	}
	if toFile {
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.Backups,
		}))
	}

	// The core runs at the lowest level any module needs. The root and
	// every Named child then raise it to their own effective level.
	floor := parseLevel(cfg.Level)
	for _, level := range cfg.ModuleLevels {
		if l := parseLevel(level); l < floor {
			floor = l
		}
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), floor)

	base := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.Fields(
			zap.Int("pid", os.Getpid()),
			zap.String("service", cfg.ServiceName),
		),
	)

	return &Logger{
		Zap:  base.WithOptions(zap.IncreaseLevel(parseLevel(cfg.Level))),
		base: base,
		cfg:  cfg,
	}
}

// Named returns a child logger for the given module. When the module has
// an entry in Config.ModuleLevels it runs at that level, otherwise it
// inherits the root level.
func (l *Logger) Named(module string) *Logger {
	level := l.cfg.Level
	if override, ok := l.cfg.ModuleLevels[module]; ok {
		level = override
	}
	return &Logger{
		Zap:  l.base.Named(module).WithOptions(zap.IncreaseLevel(parseLevel(level))),
		base: l.base,
		cfg:  l.cfg,
	}
}
