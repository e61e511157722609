package config

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/nibzard/todolist-go/internal/appdir"
)

// windowsVar matches %NAME% references.
var windowsVar = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_()]*)%`)

// resolvePaths turns DataFile and LogDir into absolute paths. A data_file that
// ends in a separator, or names an existing directory, gets the default
// snapshot name appended.
func resolvePaths(cfg *Config) {
	if cfg.DataFile != "" {
		dirLike := strings.HasSuffix(cfg.DataFile, "/") || strings.HasSuffix(cfg.DataFile, string(filepath.Separator))
		cfg.DataFile = resolvePath(cfg.DataFile, cfg.ProjectRoot)
		if !dirLike {
			if info, err := os.Stat(cfg.DataFile); err == nil && info.IsDir() {
				dirLike = true
			}
		}
		if dirLike {
			cfg.DataFile = filepath.Join(cfg.DataFile, appdir.DataFile)
		}
	}
	if cfg.LogDir != "" {
		cfg.LogDir = resolvePath(cfg.LogDir, cfg.ProjectRoot)
	}
}

// resolvePath expands environment references and a leading ~, then anchors
// relative results at root. An empty root leaves relative paths alone.
func resolvePath(p, root string) string {
	p = os.ExpandEnv(p)
	if runtime.GOOS == "windows" {
		p = windowsVar.ReplaceAllStringFunc(p, func(ref string) string {
			if val, ok := os.LookupEnv(ref[1 : len(ref)-1]); ok {
				return val
			}
			return ref
		})
	}

	if rest, ok := homeRelative(p); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
		return p
	}
	if root != "" && !filepath.IsAbs(p) {
		return filepath.Join(root, p)
	}
	return filepath.Clean(p)
}

// homeRelative reports whether p starts at the home directory and returns
// the remainder.
func homeRelative(p string) (string, bool) {
	switch {
	case p == "~":
		return "", true
	case strings.HasPrefix(p, "~/"):
		return p[2:], true
	case runtime.GOOS == "windows" && strings.HasPrefix(p, `~\`):
		return p[2:], true
	}
	return "", false
}
