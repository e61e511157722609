package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// WindowsExecutableExtensions returns lowercase executable extensions (with
// leading dot) parsed from PATHEXT, or a default set if PATHEXT is unset.
func WindowsExecutableExtensions() map[string]bool {
	exts := map[string]bool{}
	pathext := os.Getenv("PATHEXT")
	if pathext == "" {
		pathext = ".COM;.EXE;.BAT;.CMD"
	}
	for _, ext := range strings.Split(pathext, ";") {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[strings.ToLower(ext)] = true
	}
	return exts
}

// ResolveCommand finds an executable by name or path. Names without a path
// separator are looked up in PATH.
func ResolveCommand(command string) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "", fmt.Errorf("command is empty")
	}
	if !strings.ContainsAny(command, `/\`) {
		path, err := exec.LookPath(command)
		if err != nil {
			return "", fmt.Errorf("%s not found in PATH", command)
		}
		return path, nil
	}

	info, err := os.Stat(command)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", command, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", command)
	}
	if runtime.GOOS == "windows" {
		if !WindowsExecutableExtensions()[strings.ToLower(filepath.Ext(command))] {
			return "", fmt.Errorf("%s is not executable", command)
		}
		return command, nil
	}
	if info.Mode()&0111 == 0 {
		return "", fmt.Errorf("%s is not executable", command)
	}
	return command, nil
}
