// Package cmd implements the todolist command line.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todolist-go/internal/config"
	"github.com/nibzard/todolist-go/internal/hooks"
	"github.com/nibzard/todolist-go/internal/logging"
	"github.com/nibzard/todolist-go/internal/persist"
	"github.com/nibzard/todolist-go/internal/store"
)

// Version is set via ldflags at build time.
var Version = "dev"

// app carries the output streams shared by all commands.
type app struct {
	stdout io.Writer
	stderr io.Writer
}

// Run executes the todolist CLI.
func Run(ctx context.Context, args []string) error {
	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	return a.run(ctx, args)
}

func (a *app) run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todolist", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		a.printUsage(fs, a.stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		a.printUsage(fs, a.stdout)
		return nil
	}
	if *showVersion {
		return a.versionCommand()
	}

	subcommand := "ls"
	remaining := fs.Args()
	if len(remaining) > 0 {
		subcommand = remaining[0]
		remaining = remaining[1:]
	}

	switch subcommand {
	case "add":
		return a.addCommand(ctx, cfg, remaining)
	case "ls", "list":
		return a.lsCommand(ctx, cfg, remaining)
	case "toggle", "done":
		return a.toggleCommand(ctx, cfg, remaining)
	case "edit":
		return a.editCommand(ctx, cfg, remaining)
	case "rm", "delete":
		return a.rmCommand(ctx, cfg, remaining)
	case "categories":
		return a.categoriesCommand(ctx, cfg, remaining)
	case "tui":
		return a.tuiCommand(ctx, cfg, remaining)
	case "serve":
		return a.serveCommand(ctx, cfg, remaining)
	case "export":
		return a.exportCommand(ctx, cfg, remaining)
	case "doctor":
		return a.doctorCommand(ctx, cws, remaining)
	case "config":
		return a.configCommand(cws, remaining)
	case "init":
		return a.initCommand(cfg, remaining)
	case "tail":
		return a.tailCommand(ctx, cfg, remaining)
	case "version":
		return a.versionCommand()
	case "help":
		a.printUsage(fs, a.stdout)
		return nil
	default:
		fmt.Fprintf(a.stderr, "Unknown command: %s\n", subcommand)
		a.printUsage(fs, a.stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// logger returns a console logger for CLI commands.
func (a *app) logger(cfg *config.Config) *log.Logger {
	return logging.New(a.stderr, logging.OptionsFromConfig(cfg))
}

// session bundles an opened store with its backend and cleanup.
type session struct {
	store   *store.Store
	backend persist.Backend
	detach  func()
	logger  *log.Logger
}

func (s *session) Close() {
	s.detach()
	if err := s.backend.Close(); err != nil {
		s.logger.Warn("close backend", "err", err)
	}
}

// openMode says how openStore treats a snapshot that exists but cannot be
// read.
type openMode int

const (
	// openRead starts on an empty collection.
	openRead openMode = iota
	// openMutate refuses to run, so the snapshot is never overwritten.
	openMutate
	// openInteractive copies the snapshot aside, then starts empty.
	openInteractive
)

// openStore opens the configured backend, loads the snapshot and attaches the
// hook command. Store.Load has already logged any load failure by the time
// mode is applied.
func (a *app) openStore(ctx context.Context, cfg *config.Config, logger *log.Logger, mode openMode) (*session, error) {
	backend, err := persist.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s backend: %w", cfg.Backend, err)
	}
	s := store.New(backend, store.WithLogger(logger))
	s.Load(ctx)
	if loadErr := s.LoadErr(); loadErr != nil {
		switch mode {
		case openMutate:
			_ = backend.Close()
			return nil, fmt.Errorf("loading tasks from %s: %w", backend.Describe(), loadErr)
		case openInteractive:
			if path, err := preserveSnapshot(ctx, cfg, backend); err != nil {
				logger.Warn("could not keep a copy of the unreadable snapshot", "err", err)
			} else if path != "" {
				logger.Warn("unreadable snapshot copied", "path", path)
			}
		}
		logger.Warn("continuing with an empty task list", "backend", backend.Describe())
	}
	detach := hooks.Attach(ctx, s, hooks.Options{
		Command:  cfg.HookCommand,
		DataFile: cfg.DataFile,
		WorkDir:  cfg.ProjectRoot,
		Stdout:   a.stderr,
		Stderr:   a.stderr,
	}, logger)
	return &session{store: s, backend: backend, detach: detach, logger: logger}, nil
}

// preserveSnapshot writes the raw snapshot bytes next to the data file (file
// backend) or into the log directory, and returns the copy's path. It returns
// "" when the backend has nothing to copy.
func preserveSnapshot(ctx context.Context, cfg *config.Config, backend persist.Backend) (string, error) {
	data, err := backend.LoadSnapshot(ctx)
	if err != nil {
		if errors.Is(err, persist.ErrNoSnapshot) {
			return "", nil
		}
		return "", err
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(cfg.LogDir, "snapshot-"+stamp+".corrupt.json")
	if cfg.Backend == config.BackendFile {
		path = cfg.DataFile + ".corrupt-" + stamp
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing snapshot copy: %w", err)
	}
	return path, nil
}

// checkPersisted turns a swallowed save failure into a command error.
func checkPersisted(s *store.Store) error {
	if err := s.PersistErr(); err != nil {
		return fmt.Errorf("saving tasks: %w", err)
	}
	return nil
}

// parseInterspersed parses fs allowing flags after positional arguments.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func (a *app) versionCommand() error {
	fmt.Fprintf(a.stdout, "todolist version %s\n", Version)
	return nil
}

func (a *app) printUsage(fs *flag.FlagSet, w io.Writer) {
	lines := []string{
		"todolist - a small personal task tracker",
		"",
		"Usage:",
		"  todolist [global options] [command] [options]",
		"",
		"Commands:",
		"  add [-due D] [-priority P] [-category C] <title...>   Add a task",
		"  ls [-search S] [-category C] [-sort M] [-v]           List tasks (default command)",
		"  toggle <id>                                           Toggle completion (alias: done)",
		"  edit <id> [-title T] [-due D|-no-due] [-priority P] [-category C]",
		"                                                        Edit a task",
		"  rm <id>                                               Delete a task",
		"  categories                                            List categories",
		"  tui                                                   Interactive terminal UI",
		"  serve [-addr A]                                       Serve the HTTP API",
		"  export [-format json|csv|pdf] [-o FILE] [view flags]  Export tasks",
		"  doctor                                                Check config and storage",
		"  config                                                Show effective configuration",
		"  init [-force]                                         Write an example todolist.toml",
		"  tail [-f] [-n N]                                      Show the latest session log",
		"  version                                               Show version information",
		"  help                                                  Show this help message",
		"",
		"Ids may be shortened to any unique prefix. Due dates are YYYY-MM-DD or RFC 3339.",
		"Sort modes: date-created, due-date, priority, alphabetical.",
		"",
		"Global Options:",
	}
	fmt.Fprintln(w, strings.Join(lines, "\n"))
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(a.stderr)
}
