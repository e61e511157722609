package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nibzard/todolist-go/internal/config"
	"github.com/nibzard/todolist-go/internal/store"
	"github.com/nibzard/todolist-go/internal/todo"
	"github.com/nibzard/todolist-go/internal/view"
)

// shortIDLen is how many id characters ls prints without -v.
const shortIDLen = 8

func (a *app) addCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todolist add", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	due := fs.String("due", "", "Due date (YYYY-MM-DD or RFC 3339)")
	priority := fs.String("priority", "", "Priority (High, Medium, Low)")
	category := fs.String("category", "", "Category")

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	title, err := todo.ValidateTitle(strings.Join(positional, " "))
	if err != nil {
		return err
	}
	d, err := draftFromFlags(cfg, title, *due, *priority, *category)
	if err != nil {
		return err
	}

	logger := a.logger(cfg)
	sess, err := a.openStore(ctx, cfg, logger, openMutate)
	if err != nil {
		return err
	}
	defer sess.Close()

	t := sess.store.Create(ctx, d)
	if err := checkPersisted(sess.store); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, t.ID)
	return nil
}

func draftFromFlags(cfg *config.Config, title, due, priority, category string) (todo.Draft, error) {
	dueDate, err := todo.ParseDueDate(due, time.Local)
	if err != nil {
		return todo.Draft{}, err
	}
	p := cfg.Priority()
	if strings.TrimSpace(priority) != "" {
		if p, err = todo.ParsePriority(priority); err != nil {
			return todo.Draft{}, err
		}
	}
	return todo.Draft{
		Title:    title,
		DueDate:  dueDate,
		Priority: p,
		Category: strings.TrimSpace(category),
	}, nil
}

// viewFlags registers the filter and sort flags shared by ls and export.
type viewFlags struct {
	search   *string
	category *string
	sort     *string
	fs       *flag.FlagSet
}

func addViewFlags(fs *flag.FlagSet, cfg *config.Config) *viewFlags {
	return &viewFlags{
		search:   fs.String("search", "", "Only tasks whose title contains this text"),
		category: fs.String("category", "", "Only tasks in this category"),
		sort:     fs.String("sort", cfg.DefaultSort, "Sort mode (date-created, due-date, priority, alphabetical)"),
		fs:       fs,
	}
}

// params builds view parameters. The category filter applies only when the
// flag was given, so -category "" selects uncategorized tasks.
func (v *viewFlags) params() (view.Params, error) {
	sortOpt, err := view.ParseSortOption(*v.sort)
	if err != nil {
		return view.Params{}, err
	}
	p := view.Params{Search: *v.search, Sort: sortOpt}
	v.fs.Visit(func(f *flag.Flag) {
		if f.Name == "category" {
			cat := *v.category
			p.Category = &cat
		}
	})
	return p, nil
}

func (a *app) lsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todolist ls", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	vf := addViewFlags(fs, cfg)
	verbose := fs.Bool("v", false, "Show full ids and creation times")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
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

	tasks := sess.store.View(p)
	if len(tasks) == 0 {
		if sess.store.Len() == 0 {
			fmt.Fprintln(a.stdout, "No tasks yet. Add one with: todolist add <title>")
		} else {
			fmt.Fprintln(a.stdout, "No tasks match.")
		}
		return nil
	}
	now := time.Now()
	for _, t := range tasks {
		printTask(a.stdout, t, now, *verbose)
	}
	return nil
}

// printTask prints one task line, plus a detail line when verbose.
func printTask(w io.Writer, t todo.Task, now time.Time, verbose bool) {
	check := "[ ]"
	if t.IsCompleted {
		check = "[x]"
	}
	id := t.ID
	if !verbose && len(id) > shortIDLen {
		id = id[:shortIDLen]
	}
	line := fmt.Sprintf("%s %-*s %s", check, shortIDLen, id, t.Title)
	if t.DueDate != nil {
		line += "  due " + t.DueDate.Local().Format(todo.DateLayout)
		if !t.IsCompleted && t.IsOverdue(now) {
			line += " (overdue)"
		}
	}
	line += fmt.Sprintf("  [%s] [%s]", t.Priority, t.Category)
	fmt.Fprintln(w, line)
	if verbose {
		fmt.Fprintf(w, "    created %s\n", t.DateCreated.Local().Format(time.RFC3339))
	}
}

// resolveID maps an id or unique prefix to a task id.
func resolveID(s *store.Store, ref string) (string, error) {
	id, err := s.Resolve(ref)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "", fmt.Errorf("no task matches %q", ref)
	case errors.Is(err, store.ErrAmbiguous):
		return "", fmt.Errorf("%q matches more than one task, use a longer prefix", ref)
	case err != nil:
		return "", err
	}
	return id, nil
}

func singleID(args []string, command string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: todolist %s <id>", command)
	}
	return args[0], nil
}

func (a *app) toggleCommand(ctx context.Context, cfg *config.Config, args []string) error {
	ref, err := singleID(args, "toggle")
	if err != nil {
		return err
	}
	sess, err := a.openStore(ctx, cfg, a.logger(cfg), openMutate)
	if err != nil {
		return err
	}
	defer sess.Close()

	id, err := resolveID(sess.store, ref)
	if err != nil {
		return err
	}
	sess.store.Toggle(ctx, id)
	if err := checkPersisted(sess.store); err != nil {
		return err
	}
	t, _ := sess.store.Get(id)
	state := "open"
	if t.IsCompleted {
		state = "done"
	}
	fmt.Fprintf(a.stdout, "%s %s\n", state, t.Title)
	return nil
}

func (a *app) editCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todolist edit", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	title := fs.String("title", "", "New title")
	due := fs.String("due", "", "New due date (YYYY-MM-DD or RFC 3339)")
	noDue := fs.Bool("no-due", false, "Clear the due date")
	priority := fs.String("priority", "", "New priority (High, Medium, Low)")
	category := fs.String("category", "", "New category")

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	ref, err := singleID(positional, "edit")
	if err != nil {
		return err
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if len(set) == 0 {
		return fmt.Errorf("nothing to change, pass at least one of -title, -due, -no-due, -priority, -category")
	}
	if set["due"] && *noDue {
		return fmt.Errorf("-due and -no-due are mutually exclusive")
	}

	sess, err := a.openStore(ctx, cfg, a.logger(cfg), openMutate)
	if err != nil {
		return err
	}
	defer sess.Close()

	id, err := resolveID(sess.store, ref)
	if err != nil {
		return err
	}
	current, _ := sess.store.Get(id)
	d := todo.Draft{
		Title:    current.Title,
		DueDate:  current.DueDate,
		Priority: current.Priority,
		Category: current.Category,
	}
	if set["title"] {
		if d.Title, err = todo.ValidateTitle(*title); err != nil {
			return err
		}
	}
	if set["due"] {
		if d.DueDate, err = todo.ParseDueDate(*due, time.Local); err != nil {
			return err
		}
	}
	if *noDue {
		d.DueDate = nil
	}
	if set["priority"] {
		if d.Priority, err = todo.ParsePriority(*priority); err != nil {
			return err
		}
	}
	if set["category"] {
		d.Category = strings.TrimSpace(*category)
	}

	sess.store.Update(ctx, id, d)
	if err := checkPersisted(sess.store); err != nil {
		return err
	}
	updated, _ := sess.store.Get(id)
	printTask(a.stdout, updated, time.Now(), false)
	return nil
}

func (a *app) rmCommand(ctx context.Context, cfg *config.Config, args []string) error {
	ref, err := singleID(args, "rm")
	if err != nil {
		return err
	}
	sess, err := a.openStore(ctx, cfg, a.logger(cfg), openMutate)
	if err != nil {
		return err
	}
	defer sess.Close()

	id, err := resolveID(sess.store, ref)
	if err != nil {
		return err
	}
	t, _ := sess.store.Get(id)
	sess.store.Delete(ctx, id)
	if err := checkPersisted(sess.store); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "deleted %s\n", t.Title)
	return nil
}

func (a *app) categoriesCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	sess, err := a.openStore(ctx, cfg, a.logger(cfg), openRead)
	if err != nil {
		return err
	}
	defer sess.Close()

	for _, c := range sess.store.Categories() {
		fmt.Fprintln(a.stdout, c)
	}
	return nil
}
