// Package logging builds charmbracelet loggers and manages session log files.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todolist-go/internal/config"
)

// Options configures a logger.
type Options struct {
	Level      string
	Format     string
	Timestamps bool
	Caller     bool
	Prefix     string
}

// OptionsFromConfig returns the logging options in cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		Timestamps: cfg.LogTimestamps,
		Caller:     cfg.LogCaller,
	}
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(opts.Level),
		Formatter:       ParseFormatter(opts.Format),
		ReportTimestamp: opts.Timestamps,
		ReportCaller:    opts.Caller,
		Prefix:          opts.Prefix,
	})
}

// ParseLevel parses a level name. Unknown names yield info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// ParseFormatter parses a formatter name. Unknown names yield text.
func ParseFormatter(format string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
