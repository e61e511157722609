package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nibzard/todolist-go/internal/config"
	"github.com/nibzard/todolist-go/internal/export"
	"github.com/nibzard/todolist-go/internal/httpapi"
	"github.com/nibzard/todolist-go/internal/logging"
	"github.com/nibzard/todolist-go/internal/ui"
)

// keepSessions is how many session logs survive pruning.
const keepSessions = 20

// openSessionLog starts a session log in the configured log directory and
// prunes old ones.
func (a *app) openSessionLog(cfg *config.Config) (*logging.Session, error) {
	sess, err := logging.NewSession(cfg.LogDir)
	if err != nil {
		return nil, fmt.Errorf("opening session log: %w", err)
	}
	if _, err := logging.PruneSessions(cfg.LogDir, keepSessions); err != nil {
		fmt.Fprintf(a.stderr, "warning: pruning session logs: %v\n", err)
	}
	return sess, nil
}

func (a *app) tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	if !ui.IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	logSess, err := a.openSessionLog(cfg)
	if err != nil {
		return err
	}
	defer logSess.Close()
	logger := logging.New(logSess.Writer(), logging.OptionsFromConfig(cfg))
	logger.Info("tui session started", "backend", cfg.Backend, "version", Version)

	// Hook output would corrupt the screen.
	quiet := &app{stdout: io.Discard, stderr: io.Discard}
	sess, err := quiet.openStore(ctx, cfg, logger, openInteractive)
	if err != nil {
		return err
	}
	defer sess.Close()

	return ui.Run(ctx, sess.store, ui.Options{
		DefaultSort:     cfg.Sort(),
		DefaultPriority: cfg.Priority(),
		Logger:          logger,
	})
}

func (a *app) serveCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todolist serve", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	addr := fs.String("addr", cfg.ListenAddr, "Listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	logSess, err := a.openSessionLog(cfg)
	if err != nil {
		return err
	}
	defer logSess.Close()
	logger := logging.New(io.MultiWriter(a.stderr, logSess.Writer()), logging.OptionsFromConfig(cfg))

	sess, err := a.openStore(ctx, cfg, logger, openInteractive)
	if err != nil {
		return err
	}
	defer sess.Close()

	srv := httpapi.New(sess.store, httpapi.Options{
		Logger:          logger,
		CORSOrigins:     cfg.CORSOrigins,
		DefaultSort:     cfg.Sort(),
		DefaultPriority: cfg.Priority(),
	})
	logger.Info("serving tasks", "backend", sess.backend.Describe(), "tasks", sess.store.Len())
	return srv.ListenAndServe(ctx, *addr)
}

func (a *app) exportCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todolist export", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	format := fs.String("format", "", "Output format (json, csv, pdf); defaults to the -o extension or json")
	out := fs.String("o", "", "Output file (default stdout)")
	vf := addViewFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if *format == "" && *out != "" {
		if ext := filepath.Ext(*out); ext != "" {
			*format = ext[1:]
		}
	}
	f, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}
	p, err := vf.params()
	if err != nil {
		return err
	}

	sess, err := a.openStore(ctx, cfg, a.logger(cfg), openRead)
	if err != nil {
		return err
	}
	defer sess.Close()

	var buf bytes.Buffer
	if err := export.Write(&buf, f, sess.store.View(p), export.Options{Title: "Tasks", Now: time.Now()}); err != nil {
		return fmt.Errorf("exporting %s: %w", f, err)
	}
	if *out == "" {
		_, err := a.stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(*out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	fmt.Fprintf(a.stderr, "exported %d bytes to %s\n", buf.Len(), *out)
	return nil
}
