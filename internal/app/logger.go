package app

import (
	"io"
	"log/slog"
)

// NewLogger builds the logger described by cfg, writing to outW. The global
// logger is left untouched.
func NewLogger(cfg *Config, outW io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
