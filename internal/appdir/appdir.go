// Package appdir provides names and paths for the .todolist directory.
package appdir

import "path/filepath"

const (
	// Dir is the name of the todolist state directory.
	Dir = ".todolist"

	// DataFile is the snapshot file name inside Dir.
	DataFile = "todos.json"

	// ConfigFile is the config file name, both inside Dir and in a project.
	ConfigFile = "todolist.toml"

	// LogsDir holds session logs inside Dir.
	LogsDir = "logs"
)

// DirPath returns the .todolist directory under base.
func DirPath(base string) string {
	if base == "." || base == "" {
		return Dir
	}
	return filepath.Join(base, Dir)
}

// DataPath returns the snapshot file path under base.
func DataPath(base string) string {
	return filepath.Join(DirPath(base), DataFile)
}

// ConfigPath returns the config file path under base.
func ConfigPath(base string) string {
	return filepath.Join(DirPath(base), ConfigFile)
}

// LogPath returns the session log directory under base.
func LogPath(base string) string {
	return filepath.Join(DirPath(base), LogsDir)
}
