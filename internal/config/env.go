package config

import (
	"os"

	"github.com/nibzard/todolist-go/internal/utils"
)

// envBinding maps one TODOLIST_* variable to a config field.
type envBinding struct {
	env   string
	field string
	apply func(cfg *Config, value string)
}

func envBindings() []envBinding {
	return []envBinding{
		{"TODOLIST_DATA_FILE", "data_file", func(c *Config, v string) { c.DataFile = v }},
		{"TODOLIST_BACKEND", "backend", func(c *Config, v string) { c.Backend = v }},
		{"TODOLIST_REDIS_URL", "redis.url", func(c *Config, v string) { c.Redis.URL = v }},
		{"TODOLIST_REDIS_KEY", "redis.key", func(c *Config, v string) { c.Redis.Key = v }},
		{"TODOLIST_SQL_DSN", "sql.dsn", func(c *Config, v string) { c.SQL.DSN = v }},
		{"TODOLIST_SQL_TABLE", "sql.table", func(c *Config, v string) { c.SQL.Table = v }},
		{"TODOLIST_SQL_NAME", "sql.name", func(c *Config, v string) { c.SQL.Name = v }},
		{"TODOLIST_SORT", "default_sort", func(c *Config, v string) { c.DefaultSort = v }},
		{"TODOLIST_PRIORITY", "default_priority", func(c *Config, v string) { c.DefaultPriority = v }},
		{"TODOLIST_HOOK", "hook_command", func(c *Config, v string) { c.HookCommand = v }},
		{"TODOLIST_LISTEN_ADDR", "listen_addr", func(c *Config, v string) { c.ListenAddr = v }},
		{"TODOLIST_CORS_ORIGINS", "cors_origins", func(c *Config, v string) { c.CORSOrigins = utils.SplitAndTrim(v, ",") }},
		{"TODOLIST_LOG_DIR", "log_dir", func(c *Config, v string) { c.LogDir = v }},
		{"TODOLIST_LOG_LEVEL", "log_level", func(c *Config, v string) { c.LogLevel = v }},
		{"TODOLIST_LOG_FORMAT", "log_format", func(c *Config, v string) { c.LogFormat = v }},
		{"TODOLIST_LOG_TIMESTAMPS", "log_timestamps", func(c *Config, v string) { c.LogTimestamps = boolFromString(v) }},
		{"TODOLIST_LOG_CALLER", "log_caller", func(c *Config, v string) { c.LogCaller = boolFromString(v) }},
	}
}

// loadFromEnv overrides config from environment variables. If sources is
// non-nil, it tracks the source of each value.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	for _, b := range envBindings() {
		v := os.Getenv(b.env)
		if v == "" {
			continue
		}
		b.apply(cfg, v)
		if sources != nil {
			sources[b.field] = SourceEnv
		}
	}
}

// EnvVars returns the environment variable names that configure todolist.
func EnvVars() []string {
	bindings := envBindings()
	names := make([]string, 0, len(bindings))
	for _, b := range bindings {
		names = append(names, b.env)
	}
	return names
}
