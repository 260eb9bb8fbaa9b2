// Package todo holds the task model, its pure state transitions, and the
// persisted task format.
//
// The persisted format is a JSON array of task records:
//
//	[
//	  {
//	    "id": "0190f3c2-7a51-7c4e-9d1a-2b3c4d5e6f70",
//	    "text": "Buy milk",
//	    "completed": false,
//	    "priority": "low",
//	    "category": "Shopping",
//	    "createdAt": "2024-01-01T00:00:00Z"
//	  }
//	]
//
// # State transitions
//
// A List is a value. Every operation returns a new List together with a
// flag reporting whether anything changed; the receiver and any slice it
// handed out earlier are never written to. Operations addressing an unknown
// id return the input unchanged.
//
// # Normalization
//
// Task text is trimmed on add and edit. Categories are trimmed and internal
// whitespace is collapsed to a single space. Category identity is
// case-insensitive (Unicode case folding): a category that folds equal to
// one already in the list takes the existing spelling.
//
// # Validation
//
// Decode validates payloads against the embedded JSON Schema
// (tasks.schema.json, draft 2020-12) and always checks for duplicate ids,
// which the schema cannot express. Validate additionally accepts an
// external schema path and falls back to minimal structural checks when
// that schema cannot be used.
//
// # File Format
//
// Encode writes 2-space indentation and a trailing newline.
package todo
