package todo

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func sampleTasks() []Task {
	created := time.Date(2024, 1, 1, 9, 30, 0, 123456789, time.UTC)
	due := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	return []Task{
		{
			ID:          "0b6c6f0e-5c0e-4a53-9b8e-2f8e8f4c1c11",
			Title:       "Buy milk",
			DateCreated: created,
			DueDate:     &due,
			Priority:    PriorityLow,
			Category:    "Home",
		},
		{
			ID:          "7d1f3c44-9a20-4a0e-8f57-1f4c7b8ad001",
			Title:       "Ship release",
			IsCompleted: true,
			DateCreated: created.Add(time.Minute),
			Priority:    PriorityHigh,
			Category:    "Work",
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		tasks []Task
	}{
		{"empty", []Task{}},
		{"nil", nil},
		{"with and without due date", sampleTasks()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.tasks)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			decoded, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if decoded == nil {
				t.Fatal("Decode returned nil slice")
			}
			if len(decoded) != len(tt.tasks) {
				t.Fatalf("Tasks count: got %d, want %d", len(decoded), len(tt.tasks))
			}
			for i := range tt.tasks {
				if !decoded[i].Equal(tt.tasks[i]) {
					t.Errorf("task %d: got %+v, want %+v", i, decoded[i], tt.tasks[i])
				}
			}
		})
	}
}

func TestEncodeFormat(t *testing.T) {
	data, err := Encode(sampleTasks())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.HasSuffix(data, []byte("}\n")) {
		t.Error("snapshot should end with a trailing newline")
	}
	if !bytes.Contains(data, []byte("\n  \"schema_version\": 1,")) {
		t.Errorf("expected 2-space indentation, got:\n%s", data)
	}
	if strings.Count(string(data), "due_date") != 1 {
		t.Error("due_date should be omitted for the task without one")
	}

	empty, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode(nil) failed: %v", err)
	}
	if !bytes.Contains(empty, []byte(`"tasks": []`)) {
		t.Errorf("empty collection should encode as an empty array, got:\n%s", empty)
	}
}

func TestDecodeLegacyArray(t *testing.T) {
	legacy := `[
  {"id": "a", "title": "One", "is_completed": false, "date_created": "2024-01-01T00:00:00Z", "priority": "High", "category": "Work"},
  {"id": "b", "title": "Two", "is_completed": true, "date_created": "2024-01-02T00:00:00Z", "due_date": null, "priority": "Low", "category": "Home"}
]`
	result := Validate([]byte(legacy))
	if !result.Valid {
		t.Fatalf("legacy array should validate: %v", result.Err())
	}
	if !result.Legacy {
		t.Error("expected Legacy to be set")
	}

	tasks, err := Decode([]byte(legacy))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != "a" || tasks[1].ID != "b" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
	if tasks[1].DueDate != nil {
		t.Error("null due_date should decode as absent")
	}
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantPath string
	}{
		{"empty", "", ""},
		{"not json", "{tasks", ""},
		{"wrong version", `{"schema_version": 2, "tasks": []}`, "schema_version"},
		{"missing tasks", `{"schema_version": 1}`, ""},
		{"bad priority", `{"schema_version": 1, "tasks": [
			{"id": "a", "title": "x", "is_completed": false, "date_created": "2024-01-01T00:00:00Z", "priority": "Urgent", "category": "Work"}]}`, "tasks[0].priority"},
		{"bad date", `{"schema_version": 1, "tasks": [
			{"id": "a", "title": "x", "is_completed": false, "date_created": "yesterday", "priority": "Low", "category": "Work"}]}`, "tasks[0].date_created"},
		{"missing id", `{"schema_version": 1, "tasks": [
			{"title": "x", "is_completed": false, "date_created": "2024-01-01T00:00:00Z", "priority": "Low", "category": "Work"}]}`, "tasks[0]"},
		{"duplicate id", `{"schema_version": 1, "tasks": [
			{"id": "a", "title": "x", "is_completed": false, "date_created": "2024-01-01T00:00:00Z", "priority": "Low", "category": "Work"},
			{"id": "a", "title": "y", "is_completed": false, "date_created": "2024-01-01T00:00:00Z", "priority": "Low", "category": "Work"}]}`, "tasks[1].id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := Decode([]byte(tt.data))
			if err == nil {
				t.Fatalf("expected error, got tasks %+v", tasks)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError in chain, got %T: %v", err, err)
			}
			if tt.wantPath != "" && !strings.Contains(err.Error(), tt.wantPath) {
				t.Errorf("error %q should mention path %q", err, tt.wantPath)
			}
		})
	}
}

func TestValidationErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &ValidationError{Path: "tasks[0].id", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("ValidationError should unwrap to its cause")
	}
	if err.Error() != "tasks[0].id: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
	if (&ValidationError{Err: inner}).Error() != "boom" {
		t.Error("Error() without path should be the cause")
	}
}

func TestSchemaJSONIsCopy(t *testing.T) {
	a := SchemaJSON()
	a[0] = 'x'
	if SchemaJSON()[0] == 'x' {
		t.Error("SchemaJSON should return a copy")
	}
}
