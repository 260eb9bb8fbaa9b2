package todo

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/taskboard/internal/utils"
)

//go:embed tasks.schema.json
var embeddedSchema []byte

const embeddedSchemaURL = "https://github.com/nibzard/taskboard/tasks.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
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

// ValidationOptions controls validation behavior.
type ValidationOptions struct {
	// SchemaPath overrides the embedded JSON Schema with a file.
	// If the file cannot be used, validation falls back to minimal checks.
	SchemaPath string
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid      bool
	Errors     []error
	Warnings   []string
	UsedSchema bool // true if JSON Schema validation was performed
}

// Validate checks a persisted payload.
func Validate(data []byte, opts ValidationOptions) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{Err: fmt.Errorf("invalid JSON: %w", err)})
		return result
	}

	schema, warning := loadSchema(opts.SchemaPath)
	if warning != "" {
		result.Warnings = append(result.Warnings, warning)
	}
	if schema != nil {
		result.UsedSchema = true
		if err := schema.Validate(doc); err != nil {
			result.Valid = false
			appendSchemaErrors(result, err)
		}
	} else {
		result.Warnings = append(result.Warnings, "JSON Schema validation not available, using minimal checks")
		validateMinimal(doc, result)
	}

	// Duplicate ids are invisible to the schema.
	validateUniqueIDs(doc, result)
	return result
}

func loadSchema(path string) (*jsonschema.Schema, string) {
	if path == "" {
		schemaOnce.Do(func() {
			compiledSchema, schemaErr = compileSchema(embeddedSchemaURL, embeddedSchema)
		})
		if schemaErr != nil {
			return nil, fmt.Sprintf("invalid embedded schema: %v", schemaErr)
		}
		return compiledSchema, ""
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Sprintf("invalid schema path: %v", err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Sprintf("schema file not found: %s", absPath)
		}
		return nil, fmt.Sprintf("failed to read schema file: %v", err)
	}
	schema, err := compileSchema("file://"+filepath.ToSlash(absPath), data)
	if err != nil {
		return nil, fmt.Sprintf("invalid schema file: %v", err)
	}
	return schema, ""
}

func compileSchema(url string, data []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

// validateMinimal performs structural checks without JSON Schema.
func validateMinimal(doc interface{}, result *ValidationResult) {
	items, ok := doc.([]interface{})
	if !ok {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{Err: fmt.Errorf("expected an array of tasks")})
		return
	}
	for i, item := range items {
		path := fmt.Sprintf("[%d]", i)
		obj, ok := item.(map[string]interface{})
		if !ok {
			result.Valid = false
			result.Errors = append(result.Errors, &ValidationError{Path: path, Err: fmt.Errorf("expected an object")})
			continue
		}
		if err := validateTaskMinimal(obj, path); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err)
		}
	}
}

// validateTaskMinimal performs minimal task validation.
func validateTaskMinimal(obj map[string]interface{}, path string) *ValidationError {
	for _, field := range []string{"id", "text"} {
		if s, _ := obj[field].(string); s == "" {
			return &ValidationError{Path: path + "." + field, Err: fmt.Errorf("missing required field")}
		}
	}
	if _, ok := obj["completed"].(bool); !ok {
		return &ValidationError{Path: path + ".completed", Err: fmt.Errorf("must be a boolean")}
	}
	p, _ := obj["priority"].(string)
	if !Priority(p).Valid() {
		return &ValidationError{
			Path: path + ".priority",
			Err:  fmt.Errorf("invalid priority %q, must be one of: low, medium, high", p),
		}
	}
	if v, ok := obj["category"]; ok {
		if _, ok := v.(string); !ok {
			return &ValidationError{Path: path + ".category", Err: fmt.Errorf("must be a string")}
		}
	}
	if _, ok := obj["createdAt"].(string); !ok {
		return &ValidationError{Path: path + ".createdAt", Err: fmt.Errorf("missing required field")}
	}
	return nil
}

func validateUniqueIDs(doc interface{}, result *ValidationResult) {
	items, ok := doc.([]interface{})
	if !ok {
		return
	}
	seen := make(map[string]int)
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		id, _ := obj["id"].(string)
		if id == "" {
			continue
		}
		if first, dup := seen[id]; dup {
			result.Valid = false
			result.Errors = append(result.Errors, &ValidationError{
				Path: fmt.Sprintf("[%d].id", i),
				Err:  fmt.Errorf("duplicate id %q (first seen at [%d])", id, first),
			})
			continue
		}
		seen[id] = i
	}
}

func appendSchemaErrors(result *ValidationResult, err error) {
	if err == nil {
		return
	}

	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.Errors = append(result.Errors, err)
		return
	}

	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: utils.JSONPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}
