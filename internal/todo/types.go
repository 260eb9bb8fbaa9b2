package todo

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when an id or id prefix matches no task.
	ErrNotFound = errors.New("task not found")
	// ErrAmbiguousID is returned when an id prefix matches more than one task.
	ErrAmbiguousID = errors.New("ambiguous task id")
	// ErrInvalidPriority is returned by ParsePriority for unknown values.
	ErrInvalidPriority = errors.New("invalid priority")
)

// Priority represents a task priority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultPriority is used when a draft does not name one.
const DefaultPriority = PriorityMedium

// Priorities returns every priority from lowest to highest.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// Valid reports whether p is one of the defined priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Next returns the following priority, wrapping from high back to low.
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityLow
	}
}

// ParsePriority parses user input into a Priority.
// Accepts low|medium|high (any case) and the short forms l|m|h.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "l":
		return PriorityLow, nil
	case "medium", "med", "m":
		return PriorityMedium, nil
	case "high", "h":
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("%w %q, must be one of: low, medium, high", ErrInvalidPriority, s)
}

// Task represents a single to-do item.
type Task struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Priority  Priority  `json:"priority"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

// Uncategorized reports whether the task belongs to no category.
// A category that is blank after normalization counts as none.
func (t Task) Uncategorized() bool {
	return CategoryKey(t.Category) == ""
}

// Draft is the user input for a new task.
type Draft struct {
	Text     string
	Priority Priority
	Category string
}

// NewTask builds a task from a draft. It returns false when the trimmed
// text or the id is empty, or when the draft names an invalid priority.
func NewTask(d Draft, id string, now time.Time) (Task, bool) {
	text := NormalizeText(d.Text)
	if text == "" || id == "" {
		return Task{}, false
	}
	priority := d.Priority
	if priority == "" {
		priority = DefaultPriority
	}
	if !priority.Valid() {
		return Task{}, false
	}
	return Task{
		ID:        id,
		Text:      text,
		Priority:  priority,
		Category:  NormalizeCategory(d.Category),
		CreatedAt: now.UTC(),
	}, true
}
