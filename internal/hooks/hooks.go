// Package hooks runs an external command after each change to the collection.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todolist-go/internal/store"
	"github.com/nibzard/todolist-go/internal/utils"
)

// DefaultTimeout bounds a single hook run.
const DefaultTimeout = 10 * time.Second

// Options configures hook invocations.
type Options struct {
	Command  string
	DataFile string
	WorkDir  string
	Timeout  time.Duration
	// Stdout and Stderr receive the hook output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

// Result captures the outcome of a hook invocation.
type Result struct {
	Ran      bool
	Command  []string
	ExitCode int
}

// Invoke runs the hook command for one change. The command receives the
// change kind, task id and version as arguments.
func Invoke(ctx context.Context, opts Options, c store.Change) (Result, error) {
	if opts.Command == "" {
		return Result{}, nil
	}

	path, err := utils.ResolveCommand(opts.Command)
	if err != nil {
		return Result{}, fmt.Errorf("resolve hook command: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{string(c.Kind), c.TaskID, strconv.FormatUint(c.Version, 10)}
	cmd := exec.CommandContext(ctx, path, args...)
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}
	cmd.Env = append(os.Environ(),
		"TODOLIST_DATA_FILE="+opts.DataFile,
		"TODOLIST_CHANGE="+string(c.Kind),
	)
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	err = cmd.Run()
	result := Result{
		Ran:      true,
		Command:  cmd.Args,
		ExitCode: exitCodeFromError(err),
	}
	if err != nil {
		return result, fmt.Errorf("hook command failed: %w", err)
	}
	return result, nil
}

// Attach subscribes a hook runner to s. Failures are logged and never
// reach the store. The returned function detaches the runner.
func Attach(ctx context.Context, s *store.Store, opts Options, logger *log.Logger) func() {
	if opts.Command == "" {
		return func() {}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return s.Subscribe(func(c store.Change) {
		if c.Kind == store.ChangeLoaded {
			return
		}
		result, err := Invoke(ctx, opts, c)
		if err != nil {
			logger.Warn("hook failed", "command", opts.Command, "change", c.Kind, "exit", result.ExitCode, "err", err)
			return
		}
		logger.Debug("hook ran", "command", opts.Command, "change", c.Kind, "task", c.TaskID)
	})
}

func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
