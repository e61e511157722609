package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/todolist-go/internal/todo"
)

const (
	fieldTitle = iota
	fieldDue
	fieldPriority
	fieldCategory
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Due", "Priority", "Category"}

// taskForm edits the fields of a new or existing task. editID is empty when
// the form creates a task.
type taskForm struct {
	editID string
	inputs [fieldCount]textinput.Model
	focus  int
	err    error
}

func newTaskForm(defaultPriority todo.Priority) *taskForm {
	f := &taskForm{}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 256
		in.Width = 40
		f.inputs[i] = in
	}
	f.inputs[fieldTitle].Placeholder = "What needs doing?"
	f.inputs[fieldDue].Placeholder = todo.DateLayout + " (optional)"
	f.inputs[fieldDue].CharLimit = 32
	f.inputs[fieldPriority].Placeholder = "High, Medium or Low"
	f.inputs[fieldPriority].SetValue(defaultPriority.String())
	f.inputs[fieldPriority].CharLimit = 8
	f.inputs[fieldCategory].Placeholder = todo.DefaultCategory
	f.inputs[fieldTitle].Focus()
	return f
}

func editTaskForm(t todo.Task, loc *time.Location) *taskForm {
	f := newTaskForm(t.Priority)
	f.editID = t.ID
	f.inputs[fieldTitle].SetValue(t.Title)
	if t.DueDate != nil {
		f.inputs[fieldDue].SetValue(t.DueDate.In(loc).Format(todo.DateLayout))
	}
	f.inputs[fieldCategory].SetValue(t.Category)
	return f
}

func (f *taskForm) editing() bool {
	return f.editID != ""
}

func (f *taskForm) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	return f.inputs[f.focus].Focus()
}

func (f *taskForm) last() bool {
	return f.focus == fieldCount-1
}

func (f *taskForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// draft validates the form. Empty priority falls back to def.
func (f *taskForm) draft(def todo.Priority, loc *time.Location) (todo.Draft, error) {
	title, err := todo.ValidateTitle(f.inputs[fieldTitle].Value())
	if err != nil {
		return todo.Draft{}, err
	}
	due, err := todo.ParseDueDate(f.inputs[fieldDue].Value(), loc)
	if err != nil {
		return todo.Draft{}, err
	}
	priority := def
	if raw := strings.TrimSpace(f.inputs[fieldPriority].Value()); raw != "" {
		if priority, err = todo.ParsePriority(raw); err != nil {
			return todo.Draft{}, err
		}
	}
	return todo.Draft{
		Title:    title,
		DueDate:  due,
		Priority: priority,
		Category: strings.TrimSpace(f.inputs[fieldCategory].Value()),
	}, nil
}

func (f *taskForm) view() string {
	var b strings.Builder
	heading := "New task"
	if f.editing() {
		heading = "Edit task"
	}
	b.WriteString(titleStyle.Render(heading) + "\n\n")
	for i, in := range f.inputs {
		label := fieldLabels[i]
		if i == f.focus {
			label = cursorStyle.Render("> " + label)
		} else {
			label = "  " + label
		}
		b.WriteString(label + "\n  " + in.View() + "\n")
	}
	if f.err != nil {
		b.WriteString("\n" + errorStyle.Render(f.err.Error()) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("tab/shift+tab move • enter next/save • esc cancel"))
	return formStyle.Render(b.String())
}
