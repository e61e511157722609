package todo

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/todolist-go/internal/utils"
)

// SchemaVersion is the snapshot format version written by Encode.
const SchemaVersion = 1

const schemaURL = "https://github.com/nibzard/todolist-go/schema/todos.schema.json"

//go:embed schema.json
var schemaJSON []byte

// SchemaJSON returns the embedded JSON Schema for snapshots.
func SchemaJSON() []byte {
	return bytes.Clone(schemaJSON)
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add snapshot schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile snapshot schema: %w", err)
	}
	return schema, nil
})

// File is the on-disk shape of a snapshot.
type File struct {
	SchemaVersion int    `json:"schema_version"`
	Tasks         []Task `json:"tasks"`
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // dotted path to the offending value, e.g. tasks[0].priority
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid  bool
	Errors []error
	Legacy bool // true if the snapshot was a bare task array
}

// Err joins all validation errors, or returns nil for a valid snapshot.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return errors.Join(r.Errors...)
}

// Encode serializes tasks as a snapshot with 2-space indentation.
func Encode(tasks []Task) ([]byte, error) {
	f := File{
		SchemaVersion: SchemaVersion,
		Tasks:         tasks,
	}
	if f.Tasks == nil {
		f.Tasks = []Task{}
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	// Add trailing newline
	return append(data, '\n'), nil
}

// Decode validates and parses a snapshot. The returned slice is never nil.
func Decode(data []byte) ([]Task, error) {
	result, doc := validate(data)
	if !result.Valid {
		return nil, fmt.Errorf("invalid snapshot: %w", result.Err())
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("normalize snapshot: %w", err)
	}
	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if f.Tasks == nil {
		f.Tasks = []Task{}
	}
	return f.Tasks, nil
}

// Validate checks a snapshot without decoding it.
func Validate(data []byte) *ValidationResult {
	result, _ := validate(data)
	return result
}

// validate runs schema and uniqueness checks. It returns the parsed document
// wrapped into the current envelope so legacy arrays decode like files.
func validate(data []byte) (*ValidationResult, any) {
	result := &ValidationResult{
		Valid:  true,
		Errors: make([]error, 0),
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		result.fail(&ValidationError{Err: errors.New("snapshot is empty")})
		return result, nil
	}
	if !json.Valid(data) {
		result.fail(&ValidationError{Err: errors.New("snapshot is not valid JSON")})
		return result, nil
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		result.fail(&ValidationError{Err: fmt.Errorf("parse snapshot: %w", err)})
		return result, nil
	}
	if list, ok := doc.([]any); ok {
		result.Legacy = true
		doc = map[string]any{
			"schema_version": float64(SchemaVersion),
			"tasks":          list,
		}
	}

	schema, err := compiledSchema()
	if err != nil {
		result.fail(err)
		return result, nil
	}
	if err := schema.Validate(doc); err != nil {
		appendSchemaErrors(result, err)
		return result, nil
	}

	checkUniqueIDs(result, doc)
	return result, doc
}

func (r *ValidationResult) fail(err error) {
	r.Valid = false
	r.Errors = append(r.Errors, err)
}

func checkUniqueIDs(result *ValidationResult, doc any) {
	obj, _ := doc.(map[string]any)
	tasks, _ := obj["tasks"].([]any)
	seen := make(map[string]int, len(tasks))
	for i, item := range tasks {
		task, _ := item.(map[string]any)
		id, _ := task["id"].(string)
		if first, dup := seen[id]; dup {
			result.fail(&ValidationError{
				Path: fmt.Sprintf("tasks[%d].id", i),
				Err:  fmt.Errorf("duplicate id %q (first used by tasks[%d])", id, first),
			})
			continue
		}
		seen[id] = i
	}
}

func appendSchemaErrors(result *ValidationResult, err error) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.fail(err)
		return
	}
	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.fail(&ValidationError{
			Path: utils.JSONPointerToPath(err.InstanceLocation),
			Err:  errors.New(strings.TrimSpace(err.Message)),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}
