// Package logger builds the slog logger of the service.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options select level, output and format of the logger.
type Options struct {
	Level  string // debug, info, warn or error; empty means info
	File   string // append to this file; empty or "-" means stdout
	Format string // text or json
}

func level(option string) (slog.Level, bool) {
	switch strings.ToLower(option) {
	case "", "info":
		return slog.LevelInfo, true
	case "debug":
		return slog.LevelDebug, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// New returns a logger for the options. Options that cannot be used fall back to their default,
// and the returned logger reports that as a warning.
func New(options Options) *slog.Logger {
	var warnings []string

	lvl, ok := level(options.Level)
	if !ok {
		warnings = append(warnings, "could not parse logger level")
	}
	opts := slog.HandlerOptions{Level: lvl}

	var output io.Writer
	switch options.File {
	case "", "-":
		output = os.Stdout
	case os.DevNull:
		return slog.New(slog.DiscardHandler)
	default:
		file, err := os.OpenFile(options.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			warnings = append(warnings, "could not open logger file: "+err.Error())
			output = os.Stdout
		} else {
			output = file
		}
	}

	var logger *slog.Logger
	switch strings.ToLower(options.Format) {
	case "json":
		logger = slog.New(slog.NewJSONHandler(output, &opts))
	case "", "text":
		logger = slog.New(slog.NewTextHandler(output, &opts))
	default:
		warnings = append(warnings, "could not parse logger format")
		logger = slog.New(slog.NewTextHandler(output, &opts))
	}
	for _, warning := range warnings {
		logger.Warn(warning)
	}
	return logger
}
