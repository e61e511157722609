package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nibzard/todolist-go/internal/appdir"
	"github.com/nibzard/todolist-go/internal/config"
	"github.com/nibzard/todolist-go/internal/logging"
	"github.com/nibzard/todolist-go/internal/persist"
	"github.com/nibzard/todolist-go/internal/todo"
	"github.com/nibzard/todolist-go/internal/utils"
)

// doctorCommand checks configuration, the storage backend and the snapshot.
func (a *app) doctorCommand(ctx context.Context, cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("todolist doctor", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg := cws.Config
	w := a.stdout

	fmt.Fprintln(w, "Todolist Doctor")
	fmt.Fprintln(w, "===============")
	fmt.Fprintln(w)

	allOK := true

	fmt.Fprintln(w, "Config:")
	if path := cws.GetConfigFile(); path != "" {
		fmt.Fprintf(w, "  File: %s\n", path)
	} else {
		fmt.Fprintln(w, "  File: (none, using defaults)")
	}
	for _, key := range cws.Unknown {
		fmt.Fprintf(w, "  ⚠️  Unknown key: %s\n", key)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(w, "  ❌ %v\n", err)
		allOK = false
	} else {
		fmt.Fprintln(w, "  ✅ OK")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Storage (%s):\n", cfg.Backend)
	backend, err := persist.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(w, "  ❌ %v\n", err)
		allOK = false
	} else {
		defer backend.Close()
		fmt.Fprintf(w, "  %s\n", backend.Describe())
		if !a.checkSnapshot(ctx, backend, *verbose) {
			allOK = false
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Hook:")
	if cfg.HookCommand == "" {
		fmt.Fprintln(w, "  (not configured)")
	} else if path, err := utils.ResolveCommand(cfg.HookCommand); err != nil {
		fmt.Fprintf(w, "  ❌ %s: %v\n", cfg.HookCommand, err)
		allOK = false
	} else {
		fmt.Fprintf(w, "  ✅ %s\n", path)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Log directory: %s\n", cfg.LogDir)
	if info, err := os.Stat(cfg.LogDir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(w, "  ⚠️  Not found (created on first tui or serve session)")
		} else {
			fmt.Fprintf(w, "  ❌ Error: %v\n", err)
			allOK = false
		}
	} else if !info.IsDir() {
		fmt.Fprintln(w, "  ❌ Error: path is not a directory")
		allOK = false
	} else {
		fmt.Fprintln(w, "  ✅ OK")
	}
	fmt.Fprintln(w)

	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

func (a *app) checkSnapshot(ctx context.Context, backend persist.Backend, verbose bool) bool {
	w := a.stdout
	data, err := backend.LoadSnapshot(ctx)
	if errors.Is(err, persist.ErrNoSnapshot) {
		fmt.Fprintln(w, "  ⚠️  No snapshot yet (created on first change)")
		return true
	}
	if err != nil {
		fmt.Fprintf(w, "  ❌ Load error: %v\n", err)
		return false
	}
	result := todo.Validate(data)
	if !result.Valid {
		fmt.Fprintln(w, "  ❌ Validation failed:")
		for _, e := range result.Errors {
			fmt.Fprintf(w, "     - %v\n", e)
		}
		return false
	}
	tasks, err := todo.Decode(data)
	if err != nil {
		fmt.Fprintf(w, "  ❌ Decode error: %v\n", err)
		return false
	}
	if result.Legacy {
		fmt.Fprintln(w, "  ⚠️  Legacy snapshot (bare task array), rewritten on next change")
	}
	fmt.Fprintf(w, "  ✅ Valid snapshot, %d tasks\n", len(tasks))
	if verbose {
		for _, t := range tasks {
			state := " "
			if t.IsCompleted {
				state = "x"
			}
			fmt.Fprintf(w, "    - [%s] %s %s\n", state, t.ID, t.Title)
		}
	}
	return true
}

// configCommand prints the effective configuration and where each value came from.
func (a *app) configCommand(cws *config.ConfigWithSources, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	w := a.stdout
	for _, source := range []config.ConfigSource{config.SourceUserFile, config.SourceProjFile} {
		if path := cws.Files[source]; path != "" {
			fmt.Fprintf(w, "# %s: %s\n", source, path)
		}
	}
	for _, field := range config.Fields() {
		fmt.Fprintf(w, "%-18s %-40s (%s)\n", field, cws.Config.DisplayValue(field), cws.SourceOf(field))
	}
	for _, key := range cws.Unknown {
		fmt.Fprintf(w, "# unknown key ignored: %s\n", key)
	}
	return nil
}

// initCommand writes an example config file to the project or user directory.
func (a *app) initCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todolist init", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	force := fs.Bool("force", false, "Overwrite an existing config file")
	user := fs.Bool("user", false, "Write the user config (~/.todolist/todolist.toml) instead of the project one")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := filepath.Join(cfg.ProjectRoot, appdir.ConfigFile)
	if *user {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		path = appdir.ConfigPath(home)
	}

	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(config.ExampleConfig()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(a.stdout, "wrote %s\n", path)
	return nil
}

// tailCommand prints the latest session log.
func (a *app) tailCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todolist tail", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logPath, err := logging.FindLatestLog(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(a.stdout, "No log files found.")
		return nil
	}

	fmt.Fprintf(a.stderr, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(a.stderr, "(Ctrl+C to stop)")
	}
	return logging.TailLog(ctx, a.stdout, logPath, *n, *follow)
}
