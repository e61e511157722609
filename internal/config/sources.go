package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/nibzard/todolist-go/internal/appdir"
)

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	names := []string{appdir.ConfigFile, "." + appdir.ConfigFile}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file.
// Checks ~/.todolist/todolist.toml first, then falls back to OS-specific
// config directories.
func findUserConfigFile() string {
	home, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := appdir.ConfigPath(home)
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	if cfgDir := osUserConfigDir(); cfgDir != "" {
		userConfigPath := filepath.Join(cfgDir, "todolist", appdir.ConfigFile)
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	return ""
}

// osUserConfigDir returns the OS-specific user config directory.
// Returns empty string if the directory cannot be determined.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "linux", "openbsd", "freebsd", "netbsd":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.DataFile = DefaultDataFile
	cfg.Backend = DefaultBackend
	cfg.Redis = RedisConfig{Key: DefaultRedisKey}
	cfg.SQL = SQLConfig{Table: DefaultSQLTable, Name: DefaultSQLName}
	cfg.DefaultSort = DefaultSort
	cfg.DefaultPriority = DefaultPriority
	cfg.ListenAddr = DefaultListenAddr
	cfg.LogDir = DefaultLogDir
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// GetConfigFile returns the active config file path (project or user).
func (cws *ConfigWithSources) GetConfigFile() string {
	if path := cws.Files[SourceProjFile]; path != "" {
		return path
	}
	return cws.Files[SourceUserFile]
}

// SourceOf returns where field came from, defaulting to SourceDefault.
func (cws *ConfigWithSources) SourceOf(field string) ConfigSource {
	if s, ok := cws.Sources[field]; ok {
		return s
	}
	return SourceDefault
}
