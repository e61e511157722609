package todo

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultCategory is assigned when a task is created or edited without one.
const DefaultCategory = "Default"

// ErrEmptyTitle is returned by ValidateTitle for blank titles.
var ErrEmptyTitle = errors.New("title must not be empty")

// Priority is the severity label of a task.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities returns every priority, highest first.
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// ParsePriority parses a priority label case-insensitively. It also accepts
// the single-letter forms h, m and l. An empty string yields PriorityMedium.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return PriorityMedium, nil
	case "high", "h":
		return PriorityHigh, nil
	case "medium", "med", "m":
		return PriorityMedium, nil
	case "low", "l":
		return PriorityLow, nil
	default:
		return "", fmt.Errorf("invalid priority %q, must be one of: High, Medium, Low", s)
	}
}

// Valid reports whether p is one of the three known labels.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Rank orders priorities by severity: High 3, Medium 2, Low 1.
// Unknown labels rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func (p Priority) String() string {
	return string(p)
}

// Task is a single item in the collection.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	IsCompleted bool       `json:"is_completed"`
	DateCreated time.Time  `json:"date_created"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    Priority   `json:"priority"`
	Category    string     `json:"category"`
}

// HasDueDate reports whether the task has a due date.
func (t Task) HasDueDate() bool {
	return t.DueDate != nil
}

// IsOverdue reports whether the due date lies before now.
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now)
}

// Equal compares two tasks field by field, using time.Time.Equal for
// timestamps so that decoded values compare equal to their originals.
func (t Task) Equal(o Task) bool {
	if t.ID != o.ID || t.Title != o.Title || t.IsCompleted != o.IsCompleted ||
		t.Priority != o.Priority || t.Category != o.Category {
		return false
	}
	if !t.DateCreated.Equal(o.DateCreated) {
		return false
	}
	if (t.DueDate == nil) != (o.DueDate == nil) {
		return false
	}
	return t.DueDate == nil || t.DueDate.Equal(*o.DueDate)
}

// Clone returns a copy that shares no memory with t.
func (t Task) Clone() Task {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return t
}

// Draft carries the user-editable fields of a task.
type Draft struct {
	Title    string
	DueDate  *time.Time
	Priority Priority
	Category string
}

// Normalize fills in the default priority and category.
func (d Draft) Normalize() Draft {
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	if d.Category == "" {
		d.Category = DefaultCategory
	}
	if d.DueDate != nil {
		due := *d.DueDate
		d.DueDate = &due
	}
	return d
}

// ValidateTitle trims title and rejects it when nothing is left.
func ValidateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", ErrEmptyTitle
	}
	return trimmed, nil
}

// CloneTasks copies a slice of tasks.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// DateLayout is the short due date form accepted on input.
const DateLayout = "2006-01-02"

// ParseDueDate parses a due date given as YYYY-MM-DD (midnight in loc) or
// RFC 3339. An empty string means no due date.
func ParseDueDate(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q, use YYYY-MM-DD or RFC 3339", s)
	}
	return &t, nil
}
