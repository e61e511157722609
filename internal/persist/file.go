package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileBackend keeps the snapshot in a single file.
type FileBackend struct {
	path string
}

// NewFile returns a backend writing to path. The parent directory is created
// on the first save.
func NewFile(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Path returns the snapshot file path.
func (f *FileBackend) Path() string {
	return f.path
}

// SaveSnapshot writes data to a temporary file next to the target and renames
// it into place, so readers never observe a partial snapshot.
func (f *FileBackend) SaveSnapshot(_ context.Context, data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		cleanup()
		return fmt.Errorf("replace snapshot file: %w", err)
	}
	return nil
}

// LoadSnapshot reads the snapshot file.
func (f *FileBackend) LoadSnapshot(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	return data, nil
}

func (f *FileBackend) Describe() string {
	return "file " + f.path
}

func (f *FileBackend) Close() error {
	return nil
}
