package todo

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Encode serializes the list with 2-space indentation and a trailing newline.
func Encode(l List) ([]byte, error) {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tasks: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses and validates a persisted task list.
func Decode(data []byte) (List, error) {
	var l List
	if err := json.Unmarshal(data, &l); err != nil {
		return List{}, fmt.Errorf("parse tasks: %w", err)
	}

	result := Validate(data, ValidationOptions{})
	if !result.Valid {
		return List{}, fmt.Errorf("validate tasks: %w", errors.Join(result.Errors...))
	}

	for i := range l.tasks {
		l.tasks[i].CreatedAt = l.tasks[i].CreatedAt.UTC()
	}
	return l, nil
}
