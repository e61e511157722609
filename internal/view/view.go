// Package view derives the displayed task list from a collection.
//
// Derivation is pure: filter by category, then by search text, then sort.
// The input slice is never modified and the result never aliases it.
package view

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/nibzard/todolist-go/internal/todo"
)

// SortOption selects one of the total orderings of the view.
type SortOption int

const (
	// SortDateCreated orders newest first.
	SortDateCreated SortOption = iota
	// SortDueDate orders dated tasks ascending, then undated tasks.
	SortDueDate
	// SortPriority orders High, Medium, Low.
	SortPriority
	// SortAlphabetical orders titles by code point.
	SortAlphabetical
)

var sortNames = map[SortOption]string{
	SortDateCreated:  "date-created",
	SortDueDate:      "due-date",
	SortPriority:     "priority",
	SortAlphabetical: "alphabetical",
}

var sortLabels = map[SortOption]string{
	SortDateCreated:  "Date Created",
	SortDueDate:      "Due Date",
	SortPriority:     "Priority",
	SortAlphabetical: "Alphabetical",
}

var sortAliases = map[string]SortOption{
	"date-created": SortDateCreated,
	"datecreated":  SortDateCreated,
	"created":      SortDateCreated,
	"due-date":     SortDueDate,
	"duedate":      SortDueDate,
	"due":          SortDueDate,
	"priority":     SortPriority,
	"prio":         SortPriority,
	"alphabetical": SortAlphabetical,
	"alpha":        SortAlphabetical,
	"title":        SortAlphabetical,
}

// SortOptions returns every sort option in cycling order.
func SortOptions() []SortOption {
	return []SortOption{SortDateCreated, SortDueDate, SortPriority, SortAlphabetical}
}

// ParseSortOption parses a sort name or alias. Empty selects SortDateCreated.
func ParseSortOption(s string) (SortOption, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "_", "-")
	key = strings.ReplaceAll(key, " ", "-")
	if key == "" {
		return SortDateCreated, nil
	}
	if opt, ok := sortAliases[key]; ok {
		return opt, nil
	}
	return SortDateCreated, fmt.Errorf("unknown sort %q (want date-created, due-date, priority or alphabetical)", s)
}

// String returns the canonical name used in config and on the command line.
func (s SortOption) String() string {
	if name, ok := sortNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SortOption(%d)", int(s))
}

// Label returns the display name.
func (s SortOption) Label() string {
	if label, ok := sortLabels[s]; ok {
		return label
	}
	return s.String()
}

// Next returns the following option, wrapping around.
func (s SortOption) Next() SortOption {
	opts := SortOptions()
	i := slices.Index(opts, s)
	return opts[(i+1)%len(opts)]
}

// Params are the view parameters.
type Params struct {
	// Search keeps tasks whose title contains it, ignoring case and
	// diacritics. Empty disables the filter.
	Search string
	// Category keeps tasks whose category equals it exactly. Nil disables
	// the filter.
	Category *string
	Sort     SortOption
}

// Derive returns the filtered, sorted view of tasks.
func Derive(tasks []todo.Task, p Params) []todo.Task {
	needle := ""
	if p.Search != "" {
		needle = Fold(p.Search)
	}

	out := make([]todo.Task, 0, len(tasks))
	for _, t := range tasks {
		if p.Category != nil && t.Category != *p.Category {
			continue
		}
		if p.Search != "" && !strings.Contains(Fold(t.Title), needle) {
			continue
		}
		out = append(out, t.Clone())
	}

	slices.SortStableFunc(out, comparator(p.Sort))
	return out
}

func comparator(s SortOption) func(a, b todo.Task) int {
	switch s {
	case SortDueDate:
		return compareDueDate
	case SortPriority:
		return comparePriority
	case SortAlphabetical:
		return compareTitle
	default:
		return compareDateCreated
	}
}

func compareDateCreated(a, b todo.Task) int {
	return b.DateCreated.Compare(a.DateCreated)
}

func compareDueDate(a, b todo.Task) int {
	switch {
	case a.HasDueDate() && b.HasDueDate():
		return a.DueDate.Compare(*b.DueDate)
	case a.HasDueDate():
		return -1
	case b.HasDueDate():
		return 1
	default:
		return 0
	}
}

// comparePriority orders by severity rank, High first. Label text order
// would put Medium before Low before High.
func comparePriority(a, b todo.Task) int {
	return cmp.Compare(b.Priority.Rank(), a.Priority.Rank())
}

func compareTitle(a, b todo.Task) int {
	return strings.Compare(a.Title, b.Title)
}

// Fold maps s to a form where case and diacritics are ignored, for
// substring matching.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}

// Categories returns the distinct categories in tasks, sorted.
func Categories(tasks []todo.Task) []string {
	cats := make([]string, 0, len(tasks))
	for _, t := range tasks {
		cats = append(cats, t.Category)
	}
	slices.Sort(cats)
	return slices.Compact(cats)
}
