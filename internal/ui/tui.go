// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nibzard/todolist-go/internal/store"
	"github.com/nibzard/todolist-go/internal/todo"
	"github.com/nibzard/todolist-go/internal/view"
)

// Options configures the TUI.
type Options struct {
	DefaultSort     view.SortOption
	DefaultPriority todo.Priority
	// Logger must not write to the terminal; the program owns the screen.
	Logger   *log.Logger
	Location *time.Location
	Now      func() time.Time
}

// Run starts the TUI on s and blocks until the user quits or ctx is done.
func Run(ctx context.Context, s *store.Store, opts Options) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	m := newModel(s, opts)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

type mode int

const (
	modeList mode = iota
	modeSearch
	modeForm
	modeConfirmDelete
	modeHelp
)

// refreshInterval re-renders so overdue markers follow the clock.
const refreshInterval = time.Minute

type tickMsg time.Time

type model struct {
	store  *store.Store
	opts   Options
	logger *log.Logger

	params view.Params
	tasks  []todo.Task
	cursor int

	mode      mode
	search    textinput.Model
	form      *taskForm
	pendingID string
	status    string
	width     int
}

func newModel(s *store.Store, opts Options) *model {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.DefaultPriority == "" {
		opts.DefaultPriority = todo.PriorityMedium
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "search titles"
	search.CharLimit = 128
	search.Width = 40

	m := &model{
		store:  s,
		opts:   opts,
		logger: opts.Logger,
		params: view.Params{Sort: opts.DefaultSort},
		search: search,
	}
	m.refresh()
	return m
}

func (m *model) Init() tea.Cmd {
	return tickCmd(refreshInterval)
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		return m, tickCmd(refreshInterval)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case modeHelp:
			m.mode = modeList
			return m, nil
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m *model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.mode = modeHelp
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(len(m.tasks)-1, 0)
	case "/":
		m.mode = modeSearch
		m.status = ""
		return m, m.search.Focus()
	case "esc":
		if m.params.Search != "" {
			m.search.SetValue("")
			m.params.Search = ""
			m.refresh()
		}
	case "c":
		m.cycleCategory()
	case "s":
		m.params.Sort = m.params.Sort.Next()
		m.refresh()
		m.status = "Sorted by " + m.params.Sort.Label()
	case " ":
		if t, ok := m.selected(); ok {
			m.store.Toggle(context.Background(), t.ID)
			m.afterMutation(fmt.Sprintf("Toggled %q", t.Title))
		}
	case "a":
		m.form = newTaskForm(m.opts.DefaultPriority)
		m.mode = modeForm
		m.status = ""
		return m, textinput.Blink
	case "e", "enter":
		if t, ok := m.selected(); ok {
			m.form = editTaskForm(t, m.opts.Location)
			m.mode = modeForm
			m.status = ""
			return m, textinput.Blink
		}
	case "d":
		if t, ok := m.selected(); ok {
			m.pendingID = t.ID
			m.mode = modeConfirmDelete
			m.status = fmt.Sprintf("Delete %q? y/n", t.Title)
		}
	}
	return m, nil
}

func (m *model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.search.Blur()
		m.mode = modeList
		return m, nil
	case "esc":
		m.search.SetValue("")
		m.search.Blur()
		m.params.Search = ""
		m.mode = modeList
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.params.Search {
		m.params.Search = m.search.Value()
		m.cursor = 0
		m.refresh()
	}
	return m, cmd
}

func (m *model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.form = nil
		m.mode = modeList
		m.status = "Cancelled"
		return m, nil
	case "tab", "down":
		return m, m.form.move(1)
	case "shift+tab", "up":
		return m, m.form.move(-1)
	case "enter":
		if !m.form.last() {
			return m, m.form.move(1)
		}
		return m, m.submitForm()
	case "ctrl+s":
		return m, m.submitForm()
	}
	return m, m.form.update(msg)
}

func (m *model) submitForm() tea.Cmd {
	d, err := m.form.draft(m.opts.DefaultPriority, m.opts.Location)
	if err != nil {
		m.form.err = err
		return nil
	}
	ctx := context.Background()
	if m.form.editing() {
		m.store.Update(ctx, m.form.editID, d)
		m.afterMutation(fmt.Sprintf("Updated %q", d.Title))
	} else {
		t := m.store.Create(ctx, d)
		m.afterMutation(fmt.Sprintf("Added %q", t.Title))
		m.selectID(t.ID)
	}
	m.form = nil
	m.mode = modeList
	return nil
}

func (m *model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.store.Delete(context.Background(), m.pendingID)
		m.afterMutation("Deleted task")
	case "n", "N", "esc":
		m.status = "Delete cancelled"
	default:
		return m, nil
	}
	m.pendingID = ""
	m.mode = modeList
	return m, nil
}

// cycleCategory steps the filter through all, then each category in order.
func (m *model) cycleCategory() {
	cats := m.store.Categories()
	switch {
	case len(cats) == 0:
		m.params.Category = nil
	case m.params.Category == nil:
		m.params.Category = &cats[0]
	default:
		next := -1
		for i, c := range cats {
			if c == *m.params.Category {
				next = i + 1
				break
			}
		}
		if next < 0 {
			next = 0
		}
		if next >= len(cats) {
			m.params.Category = nil
		} else {
			m.params.Category = &cats[next]
		}
	}
	m.cursor = 0
	m.refresh()
	m.status = "Category: " + m.categoryLabel()
}

func (m *model) categoryLabel() string {
	if m.params.Category == nil {
		return "All"
	}
	return *m.params.Category
}

func (m *model) afterMutation(msg string) {
	if err := m.store.PersistErr(); err != nil {
		m.status = "Not saved: " + err.Error()
		m.logger.Warn("tui change not persisted", "err", err)
	} else {
		m.status = msg
	}
	m.refresh()
}

// refresh re-derives the visible tasks, keeping the cursor on the same task
// when it is still visible.
func (m *model) refresh() {
	var current string
	if t, ok := m.selected(); ok {
		current = t.ID
	}
	m.tasks = m.store.View(m.params)
	if current != "" {
		m.selectID(current)
	}
	m.cursor = min(m.cursor, max(len(m.tasks)-1, 0))
}

func (m *model) selectID(id string) {
	for i, t := range m.tasks {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m *model) selected() (todo.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return todo.Task{}, false
	}
	return m.tasks[m.cursor], true
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
