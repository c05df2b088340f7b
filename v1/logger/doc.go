// Package logger provides structured logging functionality for CIP
// services.
//
// The logger package wraps Uber's Zap with a standardized setup: log
// levels, console or JSON encoding, an optional size-rotated log file,
// and named child loggers that run at their own levels. It integrates
// with the fx dependency injection framework for easy incorporation
// into applications.
//
// # Direct Usage (Without FX)
//
// For simple applications or tests, create a logger directly:
//
//	import "github.com/cipworks/common/v1/logger"
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:  logger.Info,
//		Format: logger.FormatConsole,
//	})
//
//	log.Info("run started", nil, map[string]interface{}{
//		"run_id":  42,
//		"station": "st-01",
//	})
//
// # Module Levels
//
// Named returns a child logger for a subsystem. When the module has an
// entry in Config.ModuleLevels it filters at that level instead of the
// root level, so a single service can run its database layer at debug
// while everything else stays at info:
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level: logger.Info,
//		ModuleLevels: map[string]string{
//			"db": logger.Debug,
//		},
//	})
//	dbLog := log.Named("db")
//
// # File Output
//
// With Output set to "file" or "both" entries are also written to
// Config.FilePath. The file is rotated once it reaches MaxSizeMB, and
// at most Backups rotated files are kept.
//
// # FX Integration
//
//	app := fx.New(
//	    logger.FXModule,
//	    fx.Provide(func() logger.Config {
//	        return logger.Config{Level: logger.Info}
//	    }),
//	)
//
// The module provides *Logger and registers a shutdown hook that
// flushes buffered entries.
package logger
