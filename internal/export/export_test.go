package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/nibzard/todolist-go/internal/todo"
)

func sample() []todo.Task {
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	due := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	return []todo.Task{
		{ID: "a", Title: "Buy milk, eggs", DateCreated: created, DueDate: &due, Priority: todo.PriorityLow, Category: "Home"},
		{ID: "b", Title: "Réunion", IsCompleted: true, DateCreated: created, Priority: todo.PriorityHigh, Category: "Work"},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"CSV", FormatCSV, false},
		{" pdf ", FormatPDF, false},
		{"", FormatJSON, false},
		{"xlsx", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("got %q, %v", got, err)
			}
		})
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, sample(), Options{}); err != nil {
		t.Fatal(err)
	}
	got, err := todo.Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("decode export: %v", err)
	}
	want := sample()
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("task %d: got %+v", i, got[i])
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, sample(), Options{}); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records", len(records))
	}
	if strings.Join(records[0], ",") != "id,title,completed,date_created,due_date,priority,category" {
		t.Errorf("header: %v", records[0])
	}
	if records[1][1] != "Buy milk, eggs" || records[1][4] != "2024-01-10T00:00:00Z" {
		t.Errorf("row 1: %v", records[1])
	}
	if records[2][2] != "true" || records[2][4] != "" {
		t.Errorf("row 2: %v", records[2])
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, FormatPDF, sample(), Options{Title: "My tasks", Now: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output is not a PDF: %q", buf.Bytes()[:min(16, buf.Len())])
	}
}

func TestWriteEmpty(t *testing.T) {
	for _, f := range Formats() {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, f, nil, Options{}); err != nil {
				t.Fatal(err)
			}
			if buf.Len() == 0 {
				t.Error("empty output")
			}
		})
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, Format("xml"), nil, Options{}); err == nil {
		t.Fatal("expected error")
	}
}
