package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/todolist-go/internal/todo"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("241"))
	dueStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	overdueStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Padding(0, 1)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	formStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)

	priorityColors = map[todo.Priority]lipgloss.Color{
		todo.PriorityHigh:   lipgloss.Color("9"),
		todo.PriorityMedium: lipgloss.Color("214"),
		todo.PriorityLow:    lipgloss.Color("12"),
	}
)

func priorityBadge(p todo.Priority) string {
	style := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if c, ok := priorityColors[p]; ok {
		style = style.Foreground(lipgloss.Color("0")).Background(c)
	}
	return style.Render(p.String())
}
