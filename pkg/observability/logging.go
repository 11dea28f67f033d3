package observability

import (
	"log/slog"
	"os"
	"strings"
)

// LogConfig holds logging configuration. Format defaults to JSON; "text" is
// for local development.
type LogConfig struct {
	Service string
	Level   string // "debug", "info", "warn", "error"
	Format  string // "json", "text"
}

var logLevels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// InitLogger builds the process-wide structured logger and installs it as
// the slog default. Every record is stamped with the service name so log
// lines stay attributable after aggregation. An unknown level falls back
// to info.
func InitLogger(cfg LogConfig) *slog.Logger {
	level, ok := logLevels[strings.ToLower(cfg.Level)]
	if !ok {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	if cfg.Service != "" {
		logger = logger.With("service", cfg.Service)
	}
	slog.SetDefault(logger)
	return logger
}
