package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/todolist-go/internal/persist"
	"github.com/nibzard/todolist-go/internal/store"
	"github.com/nibzard/todolist-go/internal/todo"
	"github.com/nibzard/todolist-go/internal/view"
)

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T, seed ...todo.Draft) (*model, *store.Store, *persist.MemoryBackend) {
	t.Helper()
	backend := persist.NewMemory()
	clock := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	n := 0
	s := store.New(backend,
		store.WithClock(func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}),
		store.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("task-%d", n)
		}),
	)
	for _, d := range seed {
		s.Create(context.Background(), d)
	}
	m := newModel(s, Options{
		DefaultSort: view.SortDateCreated,
		Location:    time.UTC,
		Now:         func() time.Time { return testNow },
	})
	return m, s, backend
}

func seedTasks() []todo.Draft {
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return []todo.Draft{
		{Title: "Pay rent", Priority: todo.PriorityHigh, Category: "Home", DueDate: &due},
		{Title: "Buy milk", Priority: todo.PriorityLow, Category: "Groceries"},
		{Title: "Call mom", Category: "Home"},
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(m *model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(keyMsg(k))
	}
	return cmd
}

func typeText(m *model, s string) {
	for _, r := range s {
		m.Update(keyMsg(string(r)))
	}
}

func titles(tasks []todo.Task) string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return strings.Join(out, "|")
}

func TestInitialView(t *testing.T) {
	m, _, _ := newTestModel(t, seedTasks()...)
	if got := titles(m.tasks); got != "Call mom|Buy milk|Pay rent" {
		t.Fatalf("tasks = %s", got)
	}
	out := m.View()
	for _, want := range []string{"Todo List", "Sort: Date Created", "Category: All", "Call mom", "due 2024-05-01 overdue", "High", "Groceries"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestEmptyView(t *testing.T) {
	m, _, _ := newTestModel(t)
	if out := m.View(); !strings.Contains(out, "No tasks yet") {
		t.Errorf("view = %s", out)
	}
}

func TestAddTask(t *testing.T) {
	m, s, backend := newTestModel(t)
	press(m, "a")
	if m.mode != modeForm || m.form == nil || m.form.editing() {
		t.Fatalf("mode = %v form = %+v", m.mode, m.form)
	}
	typeText(m, "Buy milk")
	press(m, "enter")
	typeText(m, "2024-05-03")
	press(m, "enter", "enter")
	typeText(m, "Groceries")
	press(m, "enter")

	if m.mode != modeList {
		t.Fatalf("mode = %v, form err %v", m.mode, m.form.err)
	}
	tasks := s.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("tasks = %+v", tasks)
	}
	got := tasks[0]
	want := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)
	if got.Title != "Buy milk" || got.Priority != todo.PriorityMedium || got.Category != "Groceries" ||
		got.DueDate == nil || !got.DueDate.Equal(want) {
		t.Errorf("created = %+v", got)
	}
	if backend.Saves() != 1 {
		t.Errorf("saves = %d", backend.Saves())
	}
	if !strings.HasPrefix(m.status, "Added") {
		t.Errorf("status = %q", m.status)
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		title string
		due   string
		want  error
	}{
		{"blank title", "   ", "", todo.ErrEmptyTitle},
		{"bad due", "Walk", "next week", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s, _ := newTestModel(t)
			press(m, "a")
			typeText(m, tt.title)
			press(m, "enter")
			typeText(m, tt.due)
			press(m, "enter", "enter", "enter")

			if m.mode != modeForm || m.form.err == nil {
				t.Fatalf("mode = %v err = %v", m.mode, m.form.err)
			}
			if tt.want != nil && !errors.Is(m.form.err, tt.want) {
				t.Errorf("err = %v, want %v", m.form.err, tt.want)
			}
			if s.Len() != 0 {
				t.Errorf("store len = %d", s.Len())
			}
			press(m, "esc")
			if m.mode != modeList || m.form != nil {
				t.Errorf("esc did not close the form")
			}
		})
	}
}

func TestEditTask(t *testing.T) {
	m, s, _ := newTestModel(t, seedTasks()...)
	press(m, "down", "down")
	sel, _ := m.selected()
	if sel.Title != "Pay rent" {
		t.Fatalf("selected = %q", sel.Title)
	}
	press(m, "e")
	if !m.form.editing() || m.form.inputs[fieldDue].Value() != "2024-05-01" || m.form.inputs[fieldPriority].Value() != "High" {
		t.Fatalf("form not prefilled: %+v", m.form)
	}
	typeText(m, "!")
	press(m, "enter", "enter", "enter", "enter")

	got, _ := s.Get(sel.ID)
	if got.Title != "Pay rent!" || got.Priority != todo.PriorityHigh || got.Category != "Home" {
		t.Errorf("edited = %+v", got)
	}
	if !got.DateCreated.Equal(sel.DateCreated) || s.Len() != 3 {
		t.Errorf("edit changed identity: %+v", got)
	}
}

func TestToggleAndDelete(t *testing.T) {
	m, s, _ := newTestModel(t, seedTasks()...)
	sel, _ := m.selected()

	press(m, " ")
	if got, _ := s.Get(sel.ID); !got.IsCompleted {
		t.Fatal("space did not toggle")
	}
	if out := m.View(); !strings.Contains(out, "[x]") {
		t.Errorf("completed mark missing:\n%s", out)
	}

	press(m, "d")
	if m.mode != modeConfirmDelete || m.pendingID != sel.ID {
		t.Fatalf("mode = %v pending = %q", m.mode, m.pendingID)
	}
	press(m, "n")
	if s.Len() != 3 || m.mode != modeList {
		t.Fatalf("cancelled delete removed a task")
	}

	press(m, "d", "y")
	if _, ok := s.Get(sel.ID); ok {
		t.Error("task still present after delete")
	}
	if got := titles(m.tasks); got != "Buy milk|Pay rent" {
		t.Errorf("tasks = %s", got)
	}
}

func TestSearch(t *testing.T) {
	m, _, _ := newTestModel(t, seedTasks()...)
	press(m, "/")
	if m.mode != modeSearch {
		t.Fatalf("mode = %v", m.mode)
	}
	typeText(m, "MILK")
	if got := titles(m.tasks); got != "Buy milk" {
		t.Fatalf("filtered = %s", got)
	}
	press(m, "enter")
	if m.mode != modeList || m.params.Search != "MILK" {
		t.Fatalf("enter lost the search: mode %v search %q", m.mode, m.params.Search)
	}
	press(m, "esc")
	if m.params.Search != "" || len(m.tasks) != 3 {
		t.Errorf("esc did not clear search: %q %s", m.params.Search, titles(m.tasks))
	}
}

func TestCycleCategory(t *testing.T) {
	m, _, _ := newTestModel(t, seedTasks()...)
	steps := []struct {
		label string
		want  string
	}{
		{"Groceries", "Buy milk"},
		{"Home", "Call mom|Pay rent"},
		{"All", "Call mom|Buy milk|Pay rent"},
	}
	for _, step := range steps {
		press(m, "c")
		if m.categoryLabel() != step.label {
			t.Fatalf("category = %q, want %q", m.categoryLabel(), step.label)
		}
		if got := titles(m.tasks); got != step.want {
			t.Errorf("%s: tasks = %s, want %s", step.label, got, step.want)
		}
	}
}

func TestCycleSort(t *testing.T) {
	m, _, _ := newTestModel(t, seedTasks()...)
	want := []struct {
		sort  view.SortOption
		order string
	}{
		{view.SortDueDate, "Pay rent|Buy milk|Call mom"},
		{view.SortPriority, "Pay rent|Call mom|Buy milk"},
		{view.SortAlphabetical, "Buy milk|Call mom|Pay rent"},
		{view.SortDateCreated, "Call mom|Buy milk|Pay rent"},
	}
	for _, w := range want {
		press(m, "s")
		if m.params.Sort != w.sort {
			t.Fatalf("sort = %v, want %v", m.params.Sort, w.sort)
		}
		if got := titles(m.tasks); got != w.order {
			t.Errorf("%v: %s, want %s", w.sort, got, w.order)
		}
	}
}

func TestCursorFollowsTask(t *testing.T) {
	m, _, _ := newTestModel(t, seedTasks()...)
	press(m, "down")
	sel, _ := m.selected()
	press(m, "s", "s", "s")
	got, _ := m.selected()
	if got.ID != sel.ID {
		t.Errorf("cursor moved from %q to %q", sel.Title, got.Title)
	}
}

func TestPersistFailureShown(t *testing.T) {
	m, _, backend := newTestModel(t, seedTasks()...)
	backend.SetSaveError(errors.New("disk full"))
	press(m, " ")
	if !strings.Contains(m.status, "Not saved: disk full") {
		t.Errorf("status = %q", m.status)
	}
}

func TestHelpAndQuit(t *testing.T) {
	m, _, _ := newTestModel(t)
	press(m, "?")
	if m.mode != modeHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help not shown")
	}
	press(m, "x")
	if m.mode != modeList {
		t.Fatalf("help not dismissed")
	}

	for _, k := range []string{"q", "ctrl+c"} {
		cmd := press(m, k)
		if cmd == nil {
			t.Fatalf("%s: no command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s did not quit", k)
		}
	}
}
