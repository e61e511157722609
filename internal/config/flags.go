package config

import (
	"flag"
	"strings"

	"github.com/nibzard/todolist-go/internal/utils"
)

// parseFlags defines and parses the global CLI flags. Flags default to the
// values already loaded, so only flags that are set change the config.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("todolist", flag.ContinueOnError)
	}

	// Storage
	fs.StringVar(&cfg.DataFile, "data", cfg.DataFile, "Path to the task file (file backend)")
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "Storage backend (file, redis, postgres, mysql, memory)")
	fs.StringVar(&cfg.Redis.URL, "redis-url", cfg.Redis.URL, "Redis URL for the redis backend")
	fs.StringVar(&cfg.Redis.Key, "redis-key", cfg.Redis.Key, "Redis key holding the snapshot")
	fs.StringVar(&cfg.SQL.DSN, "sql-dsn", cfg.SQL.DSN, "DSN for the postgres or mysql backend")
	fs.StringVar(&cfg.SQL.Table, "sql-table", cfg.SQL.Table, "Snapshots table name")
	fs.StringVar(&cfg.SQL.Name, "sql-name", cfg.SQL.Name, "Snapshot row name")

	// Defaults
	fs.StringVar(&cfg.DefaultSort, "default-sort", cfg.DefaultSort, "Default sort (date-created, due-date, priority, alphabetical)")
	fs.StringVar(&cfg.DefaultPriority, "default-priority", cfg.DefaultPriority, "Default priority for new tasks (High, Medium, Low)")

	// Hooks
	fs.StringVar(&cfg.HookCommand, "hook", cfg.HookCommand, "Hook command to run after each change")

	// HTTP API
	fs.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "Listen address for serve")
	corsOrigins := strings.Join(cfg.CORSOrigins, ",")
	fs.StringVar(&corsOrigins, "cors-origins", corsOrigins, "Comma-separated allowed CORS origins for serve")

	// Logging
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Log directory")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Map flag names to source field names
	flagToSource := map[string]string{
		"data":             "data_file",
		"backend":          "backend",
		"redis-url":        "redis.url",
		"redis-key":        "redis.key",
		"sql-dsn":          "sql.dsn",
		"sql-table":        "sql.table",
		"sql-name":         "sql.name",
		"default-sort":     "default_sort",
		"default-priority": "default_priority",
		"hook":             "hook_command",
		"listen":           "listen_addr",
		"cors-origins":     "cors_origins",
		"log-dir":          "log_dir",
		"log-level":        "log_level",
		"log-format":       "log_format",
		"log-timestamps":   "log_timestamps",
		"log-caller":       "log_caller",
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "cors-origins" {
			cfg.CORSOrigins = utils.SplitAndTrim(corsOrigins, ",")
		}
		if sources == nil {
			return
		}
		if fieldName, ok := flagToSource[f.Name]; ok {
			sources[fieldName] = SourceFlag
		}
	})

	return nil
}
