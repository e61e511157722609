package config

import "github.com/nibzard/todolist-go/internal/appdir"

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files maps file sources to the path that was read.
	Files map[ConfigSource]string
	// Unknown lists keys found in config files that no field consumes.
	Unknown []string
}

// Backend names.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
	BackendMemory   = "memory"
)

// Backends returns the supported backend names.
func Backends() []string {
	return []string{BackendFile, BackendRedis, BackendPostgres, BackendMySQL, BackendMemory}
}

// Default paths, relative to the home directory.
var (
	DefaultDataFile = appdir.DataPath("~")
	DefaultLogDir   = appdir.LogPath("~")
)

// Default values.
const (
	DefaultBackend    = BackendFile
	DefaultListenAddr = "127.0.0.1:8080"
	DefaultSort       = "date-created"
	DefaultPriority   = "Medium"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultRedisKey   = "todolist:snapshot"
	DefaultSQLTable   = "todolist_snapshots"
	DefaultSQLName    = "default"
)

// Config holds the full configuration for todolist.
type Config struct {
	// Storage
	DataFile string      `toml:"data_file"`
	Backend  string      `toml:"backend"`
	Redis    RedisConfig `toml:"redis"`
	SQL      SQLConfig   `toml:"sql"`

	// Defaults applied by the CLI and TUI
	DefaultSort     string `toml:"default_sort"`
	DefaultPriority string `toml:"default_priority"`

	// Hooks
	HookCommand string `toml:"hook_command"`

	// HTTP API
	ListenAddr  string   `toml:"listen_addr"`
	CORSOrigins []string `toml:"cors_origins"`

	// Logging configuration
	LogDir        string `toml:"log_dir"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	// URL is a redis:// URL or an "addr,password=...,ssl=true" string.
	URL string `toml:"url"`
	Key string `toml:"key"`
}

// SQLConfig configures the postgres and mysql backends.
type SQLConfig struct {
	DSN   string `toml:"dsn"`
	Table string `toml:"table"`
	// Name is the row holding the collection.
	Name string `toml:"name"`
}
