package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// sessionExt is the file extension of session logs.
const sessionExt = ".log"

// Session is a log file for one interactive or server session.
type Session struct {
	Dir  string
	ID   string
	Path string
	file *os.File
}

// NewSession creates dir if needed and opens <timestamp>-<pid>.log in it.
func NewSession(dir string) (*Session, error) {
	if dir == "" {
		return nil, fmt.Errorf("log dir is empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	id := sessionID()
	path := filepath.Join(dir, id+sessionExt)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	return &Session{Dir: dir, ID: id, Path: path, file: file}, nil
}

// Writer returns the session log file.
func (s *Session) Writer() io.Writer {
	return s.file
}

// Close closes the log file.
func (s *Session) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	return s.file.Close()
}

func sessionID() string {
	return fmt.Sprintf("%s-%d", time.Now().UTC().Format("20060102-150405"), os.Getpid())
}

// sessionLogs returns the session logs in dir, newest first.
func sessionLogs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read log dir: %w", err)
	}

	type logFile struct {
		path    string
		modTime time.Time
	}
	var logs []logFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), sessionExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		logs = append(logs, logFile{filepath.Join(dir, entry.Name()), info.ModTime()})
	}

	slices.SortFunc(logs, func(a, b logFile) int {
		if c := b.modTime.Compare(a.modTime); c != 0 {
			return c
		}
		return strings.Compare(b.path, a.path)
	})
	paths := make([]string, len(logs))
	for i, l := range logs {
		paths[i] = l.path
	}
	return paths, nil
}

// FindLatestLog returns the newest session log in dir, or "" if none.
func FindLatestLog(dir string) (string, error) {
	logs, err := sessionLogs(dir)
	if err != nil || len(logs) == 0 {
		return "", err
	}
	return logs[0], nil
}

// PruneSessions removes all but the keep newest session logs in dir.
func PruneSessions(dir string, keep int) (int, error) {
	logs, err := sessionLogs(dir)
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}
	removed := 0
	for _, path := range logs[min(keep, len(logs)):] {
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("remove %s: %w", path, err)
		}
		removed++
	}
	return removed, nil
}

// TailLog writes the last n lines of path to w (all lines when n <= 0). With
// follow set it keeps copying appended data until ctx is done.
func TailLog(ctx context.Context, w io.Writer, path string, n int, follow bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if n > 0 {
		if err := tailSeek(file, n); err != nil {
			return fmt.Errorf("seek to tail position: %w", err)
		}
	}

	if _, err := io.Copy(w, file); err != nil {
		return err
	}
	if !follow {
		return nil
	}
	return tailFollow(ctx, w, file)
}

// tailSeek positions file at the start of its last n lines.
func tailSeek(file *os.File, n int) error {
	const chunk = 4096

	stat, err := file.Stat()
	if err != nil {
		return err
	}
	size := stat.Size()

	// A trailing newline terminates the last line rather than starting a new one.
	end := size
	if end > 0 {
		last := make([]byte, 1)
		if _, err := file.ReadAt(last, end-1); err != nil {
			return err
		}
		if last[0] == '\n' {
			end--
		}
	}

	buf := make([]byte, chunk)
	newlines := 0
	for pos := end; pos > 0; {
		readSize := int64(chunk)
		if pos < readSize {
			readSize = pos
		}
		pos -= readSize
		if _, err := file.ReadAt(buf[:readSize], pos); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		for i := readSize - 1; i >= 0; i-- {
			if buf[i] != '\n' {
				continue
			}
			newlines++
			if newlines == n {
				_, err := file.Seek(pos+i+1, io.SeekStart)
				return err
			}
		}
	}

	_, err = file.Seek(0, io.SeekStart)
	return err
}

// tailFollow polls file for appended data like tail -f.
func tailFollow(ctx context.Context, w io.Writer, file *os.File) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := io.Copy(w, file); err != nil {
				return err
			}
		}
	}
}
