// Package todo defines the task record and its snapshot file format.
//
// A snapshot holds the whole collection in insertion order:
//
//	{
//	  "schema_version": 1,
//	  "tasks": [
//	    {
//	      "id": "0b6c6f0e-5c0e-4a53-9b8e-2f8e8f4c1c11",
//	      "title": "Buy milk",
//	      "is_completed": false,
//	      "date_created": "2024-01-01T09:30:00Z",
//	      "due_date": "2024-01-02T00:00:00Z",
//	      "priority": "Low",
//	      "category": "Home"
//	    }
//	  ]
//	}
//
// # Validation
//
// Decode validates every snapshot against the embedded JSON Schema
// (draft 2020-12) before decoding it. Violations are reported as
// *ValidationError values carrying a dotted path such as tasks[2].priority.
// Duplicate task ids are rejected as well.
//
// A bare JSON array of task records is accepted as a legacy snapshot.
//
// # Priority Values
//
//   - "High"
//   - "Medium" (default)
//   - "Low"
//
// # File Format
//
// Encode writes 2-space indentation with a trailing newline, and omits
// due_date when a task has none.
package todo
