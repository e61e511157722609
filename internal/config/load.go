package config

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/todolist-go/internal/utils"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.todolist/todolist.toml or OS-specific config dir)
// 3. Project config file (todolist.toml or .todolist.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
// Returns ConfigWithSources containing the config and a map of field names to their sources.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	cws := &ConfigWithSources{
		Config:  &Config{},
		Sources: make(map[string]ConfigSource),
		Files:   make(map[ConfigSource]string),
	}
	cfg := cws.Config

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, field := range configFields() {
		cws.Sources[field] = SourceDefault
	}

	// 2. Try to load from user config file
	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := cws.loadFile(userConfigFile, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
	}

	// 3. Try to load from project config file (overrides user config)
	if projectConfigFile := findProjectConfigFile(); projectConfigFile != "" {
		if err := cws.loadFile(projectConfigFile, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
	}

	// 4. Override from environment
	loadFromEnv(cfg, cws.Sources)

	// 5. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args, cws.Sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cws, nil
}

// configFields returns the list of configurable field names for source tracking.
// Nested fields use their dotted TOML key.
func configFields() []string {
	return []string{
		"data_file",
		"backend",
		"redis.url",
		"redis.key",
		"sql.dsn",
		"sql.table",
		"sql.name",
		"default_sort",
		"default_priority",
		"hook_command",
		"listen_addr",
		"cors_origins",
		"log_dir",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// loadFile decodes a TOML file over the current config. Keys present in the
// file are attributed to source.
func (cws *ConfigWithSources) loadFile(path string, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cws.Config)
	if err != nil {
		return err
	}
	cws.Files[source] = path

	known := configFields()
	for _, key := range md.Keys() {
		name := key.String()
		if slices.Contains(known, name) {
			cws.Sources[name] = source
		}
	}
	for _, key := range md.Undecoded() {
		cws.Unknown = append(cws.Unknown, fmt.Sprintf("%s: %s", path, key.String()))
	}
	return nil
}

// finalizeConfig computes derived values and validates the result.
func finalizeConfig(cfg *Config) error {
	cfg.Backend = utils.NormalizeName(cfg.Backend)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	resolvePaths(cfg)
	if cfg.Redis.Key == "" {
		cfg.Redis.Key = DefaultRedisKey
	}
	if cfg.SQL.Table == "" {
		cfg.SQL.Table = DefaultSQLTable
	}
	if cfg.SQL.Name == "" {
		cfg.SQL.Name = DefaultSQLName
	}

	return cfg.Validate()
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
