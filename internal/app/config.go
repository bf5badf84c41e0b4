package app

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/specialistvlad/taskflow/internal/value"
)

// LogFormat selects the slog handler used by the application logger.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Flags holds the raw persistent flag values, before validation.
type Flags struct {
	LogLevel    string
	LogFormat   string
	Output      string
	OptionsFile string
}

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	LogLevel  slog.Level
	LogFormat LogFormat

	Output      value.Format
	OptionsFile string // hcl attributes
}

// NewConfig validates the raw flag values and fills in defaults.
func NewConfig(flags Flags) (*Config, error) {
	cfg := &Config{LogLevel: slog.LevelInfo, LogFormat: LogFormatText, OptionsFile: flags.OptionsFile}

	switch strings.ToLower(flags.LogLevel) {
	case "":
	case "debug", "info", "warn", "error":
		if err := cfg.LogLevel.UnmarshalText([]byte(flags.LogLevel)); err != nil {
			return nil, fmt.Errorf("invalid log-level %q: %w", flags.LogLevel, err)
		}
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", flags.LogLevel)
	}

	switch format := LogFormat(strings.ToLower(flags.LogFormat)); format {
	case "":
	case LogFormatText, LogFormatJSON:
		cfg.LogFormat = format
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", flags.LogFormat)
	}

	cfg.Output = value.FormatText
	if flags.Output != "" {
		format, err := value.ParseFormat(strings.ToLower(flags.Output))
		if err != nil {
			return nil, err
		}
		cfg.Output = format
	}
	return cfg, nil
}
