package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/nibzard/todolist-go/internal/todo"
)

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Todo List") + "\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("Sort: %s  Category: %s  Tasks: %d/%d",
		m.params.Sort.Label(), m.categoryLabel(), len(m.tasks), m.store.Len())) + "\n")
	if m.mode == modeSearch || m.params.Search != "" {
		b.WriteString(m.search.View() + "\n")
	}
	b.WriteString("\n")

	switch m.mode {
	case modeHelp:
		writeHelp(&b)
		return b.String()
	case modeForm:
		b.WriteString(m.form.view() + "\n")
		return b.String()
	}

	writeTasks(&b, m)
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	b.WriteString(helpStyle.Render("/ search • c category • s sort • space toggle • a add • e edit • d delete • ? help • q quit"))
	return b.String()
}

func writeTasks(b *strings.Builder, m *model) {
	if len(m.tasks) == 0 {
		if m.store.Len() == 0 {
			b.WriteString("  No tasks yet. Press a to add one.\n")
		} else {
			b.WriteString("  No tasks match.\n")
		}
		return
	}
	now := m.opts.Now()
	for i, t := range m.tasks {
		b.WriteString(formatRow(t, i == m.cursor, now, m.opts.Location))
		b.WriteString("\n")
	}
}

func formatRow(t todo.Task, selected bool, now time.Time, loc *time.Location) string {
	cursor := "  "
	if selected {
		cursor = cursorStyle.Render("> ")
	}
	check := "[ ]"
	title := t.Title
	if t.IsCompleted {
		check = "[x]"
		title = doneStyle.Render(title)
	}
	parts := []string{cursor + check, title}
	if t.DueDate != nil {
		due := "due " + t.DueDate.In(loc).Format(todo.DateLayout)
		if t.IsOverdue(now) {
			parts = append(parts, overdueStyle.Render(due+" overdue"))
		} else {
			parts = append(parts, dueStyle.Render(due))
		}
	}
	parts = append(parts, priorityBadge(t.Priority), categoryStyle.Render(t.Category))
	return strings.Join(parts, " ")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  up/k, down/j  Move\n")
	b.WriteString("  /             Search titles (enter keeps, esc clears)\n")
	b.WriteString("  c             Cycle category filter\n")
	b.WriteString("  s             Cycle sort order\n")
	b.WriteString("  space         Toggle completed\n")
	b.WriteString("  a             Add task\n")
	b.WriteString("  e, enter      Edit task\n")
	b.WriteString("  d             Delete task\n")
	b.WriteString("  ?             Toggle this help\n")
	b.WriteString("  q, ctrl+c     Quit\n\n")
	b.WriteString(helpStyle.Render("Press any key to return"))
}
