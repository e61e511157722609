// Package export renders a task list as JSON, CSV or PDF.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nibzard/todolist-go/internal/todo"
)

// Format is an export format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// Formats returns the supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatCSV, FormatPDF}
}

// ParseFormat parses a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatJSON, FormatCSV, FormatPDF:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json, csv or pdf)", s)
	}
}

// Options configures rendering.
type Options struct {
	// Title heads the PDF report.
	Title string
	// Now marks overdue tasks in the PDF report. Zero means time.Now.
	Now time.Time
}

// Write renders tasks in format f to w. JSON output is a snapshot that
// todo.Decode reads back.
func Write(w io.Writer, f Format, tasks []todo.Task, opts Options) error {
	switch f {
	case FormatJSON:
		data, err := todo.Encode(tasks)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatCSV:
		return writeCSV(w, tasks)
	case FormatPDF:
		return writePDF(w, tasks, opts)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

var csvHeader = []string{"id", "title", "completed", "date_created", "due_date", "priority", "category"}

func writeCSV(w io.Writer, tasks []todo.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Format(time.RFC3339)
		}
		row := []string{
			t.ID,
			t.Title,
			strconv.FormatBool(t.IsCompleted),
			t.DateCreated.Format(time.RFC3339),
			due,
			t.Priority.String(),
			t.Category,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writePDF(w io.Writer, tasks []todo.Task, opts Options) error {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	title := opts.Title
	if title == "" {
		title = "Tasks"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.Cell(0, 6, fmt.Sprintf("%d tasks, exported %s", len(tasks), now.Format("2006-01-02 15:04")))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	for _, t := range tasks {
		mark := "[ ]"
		if t.IsCompleted {
			mark = "[x]"
		}
		due := "no due date"
		if t.DueDate != nil {
			due = "due " + t.DueDate.Format("2006-01-02")
		}
		r, g, b := 0, 0, 0
		if !t.IsCompleted && t.IsOverdue(now) {
			r = 200
			due += " (overdue)"
		}
		pdf.SetTextColor(r, g, b)
		line := fmt.Sprintf("%s %s  |  %s  |  %s  |  %s", mark, t.Title, t.Priority, t.Category, due)
		pdf.MultiCell(0, 6, tr(line), "0", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
