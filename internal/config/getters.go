package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/nibzard/todolist-go/internal/todo"
	"github.com/nibzard/todolist-go/internal/view"
)

// Validate reports configuration values that cannot be used.
func (c *Config) Validate() error {
	if !slices.Contains(Backends(), c.Backend) {
		return fmt.Errorf("unknown backend %q (want one of %s)", c.Backend, strings.Join(Backends(), ", "))
	}
	switch c.Backend {
	case BackendFile:
		if c.DataFile == "" {
			return fmt.Errorf("data_file is required for the file backend")
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("redis.url is required for the redis backend")
		}
	case BackendPostgres, BackendMySQL:
		if c.SQL.DSN == "" {
			return fmt.Errorf("sql.dsn is required for the %s backend", c.Backend)
		}
	}
	if _, err := todo.ParsePriority(c.DefaultPriority); err != nil {
		return fmt.Errorf("default_priority: %w", err)
	}
	if _, err := view.ParseSortOption(c.DefaultSort); err != nil {
		return fmt.Errorf("default_sort: %w", err)
	}
	return nil
}

// Priority returns the default priority for new tasks.
func (c *Config) Priority() todo.Priority {
	p, err := todo.ParsePriority(c.DefaultPriority)
	if err != nil {
		return todo.PriorityMedium
	}
	return p
}

// Sort returns the default sort option.
func (c *Config) Sort() view.SortOption {
	s, err := view.ParseSortOption(c.DefaultSort)
	if err != nil {
		return view.SortDateCreated
	}
	return s
}

// Value returns the display value of a field named as in configFields.
// Secrets in DSNs and URLs are not masked; callers printing values should
// use DisplayValue.
func (c *Config) Value(field string) string {
	switch field {
	case "data_file":
		return c.DataFile
	case "backend":
		return c.Backend
	case "redis.url":
		return c.Redis.URL
	case "redis.key":
		return c.Redis.Key
	case "sql.dsn":
		return c.SQL.DSN
	case "sql.table":
		return c.SQL.Table
	case "sql.name":
		return c.SQL.Name
	case "default_sort":
		return c.DefaultSort
	case "default_priority":
		return c.DefaultPriority
	case "hook_command":
		return c.HookCommand
	case "listen_addr":
		return c.ListenAddr
	case "cors_origins":
		return strings.Join(c.CORSOrigins, ",")
	case "log_dir":
		return c.LogDir
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return strconv.FormatBool(c.LogTimestamps)
	case "log_caller":
		return strconv.FormatBool(c.LogCaller)
	}
	return ""
}

// DisplayValue is Value with connection secrets hidden.
func (c *Config) DisplayValue(field string) string {
	v := c.Value(field)
	if v == "" {
		return v
	}
	switch field {
	case "redis.url", "sql.dsn":
		return "(set)"
	}
	return v
}

// Fields returns the configurable field names in display order.
func Fields() []string {
	return configFields()
}
