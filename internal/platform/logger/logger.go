package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/taskflow/entrypoint/internal/config"
)

// Setup initializes and configures the logging system based on the provided
// configuration. It creates a structured JSON logger with the appropriate
// log level and sets it as the default logger for the process.
//
// It accepts a ServerConfig containing the log level setting and returns
// the configured logger.
func Setup(cfg config.ServerConfig) *slog.Logger {
	return setupWithWriter(cfg, os.Stderr)
}

// setupWithWriter is the testable core of Setup.
func setupWithWriter(cfg config.ServerConfig, w io.Writer) *slog.Logger {
	// Parse the log level from configuration (case-insensitive).
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		// Invalid levels fall back to info with a warning rather than
		// blocking startup over a cosmetic setting.
		level = slog.LevelInfo

		tmpLogger := slog.New(slog.NewTextHandler(w, nil))
		tmpLogger.Warn("invalid log level configured, using default level",
			"configured_level", cfg.LogLevel,
			"default_level", "info")
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	logger := slog.New(slog.NewJSONHandler(w, opts))

	// Set this logger as the default so the slog package functions
	// (slog.Info, slog.Error, etc.) can be used directly.
	slog.SetDefault(logger)

	return logger
}
