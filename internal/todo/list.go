package todo

import (
	"encoding/json"
	"fmt"
	"strings"
)

// List is an ordered, immutable sequence of tasks.
// The zero value is an empty list.
type List struct {
	tasks []Task
}

// NewList returns a list holding a copy of tasks.
func NewList(tasks []Task) List {
	if len(tasks) == 0 {
		return List{}
	}
	cp := make([]Task, len(tasks))
	copy(cp, tasks)
	return List{tasks: cp}
}

// Tasks returns a copy of the tasks in order.
func (l List) Tasks() []Task {
	cp := make([]Task, len(l.tasks))
	copy(cp, l.tasks)
	return cp
}

// Len returns the number of tasks.
func (l List) Len() int {
	return len(l.tasks)
}

// At returns the task at index i.
func (l List) At(i int) Task {
	return l.tasks[i]
}

// Index returns the position of the task with id, or -1.
func (l List) Index(id string) int {
	for i := range l.tasks {
		if l.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns the task with id.
func (l List) Get(id string) (Task, bool) {
	if i := l.Index(id); i >= 0 {
		return l.tasks[i], true
	}
	return Task{}, false
}

// Equal reports whether both lists hold the same tasks in the same order.
func (l List) Equal(other List) bool {
	if len(l.tasks) != len(other.tasks) {
		return false
	}
	for i := range l.tasks {
		a, b := l.tasks[i], other.tasks[i]
		if a.ID != b.ID || a.Text != b.Text || a.Completed != b.Completed ||
			a.Priority != b.Priority || a.Category != b.Category ||
			!a.CreatedAt.Equal(b.CreatedAt) {
			return false
		}
	}
	return true
}

// Resolve finds the id of the single task whose id starts with prefix.
// An exact match always wins.
func (l List) Resolve(prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrNotFound)
	}
	if l.Index(prefix) >= 0 {
		return prefix, nil
	}
	var match string
	for _, t := range l.tasks {
		if !strings.HasPrefix(t.ID, prefix) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("%w: %q", ErrAmbiguousID, prefix)
		}
		match = t.ID
	}
	if match == "" {
		return "", fmt.Errorf("%w: %q", ErrNotFound, prefix)
	}
	return match, nil
}

// Add appends task. It is a no-op when the task has no id or its id is
// already present.
func (l List) Add(task Task) (List, bool) {
	if task.ID == "" || l.Index(task.ID) >= 0 {
		return l, false
	}
	task.Category = l.canonicalCategory(NormalizeCategory(task.Category), "")
	next := make([]Task, len(l.tasks), len(l.tasks)+1)
	copy(next, l.tasks)
	return List{tasks: append(next, task)}, true
}

// ToggleComplete flips the completed flag of the task with id.
func (l List) ToggleComplete(id string) (List, bool) {
	return l.update(id, func(t *Task) bool {
		t.Completed = !t.Completed
		return true
	})
}

// Delete removes the task with id, keeping the order of the rest.
func (l List) Delete(id string) (List, bool) {
	i := l.Index(id)
	if i < 0 {
		return l, false
	}
	next := make([]Task, 0, len(l.tasks)-1)
	next = append(next, l.tasks[:i]...)
	next = append(next, l.tasks[i+1:]...)
	return List{tasks: next}, true
}

// EditText replaces the text of the task with id. Text is trimmed; empty
// text leaves the list unchanged.
func (l List) EditText(id, text string) (List, bool) {
	text = NormalizeText(text)
	if text == "" {
		return l, false
	}
	return l.update(id, func(t *Task) bool {
		if t.Text == text {
			return false
		}
		t.Text = text
		return true
	})
}

// SetPriority replaces the priority of the task with id.
// Invalid priorities leave the list unchanged.
func (l List) SetPriority(id string, p Priority) (List, bool) {
	if !p.Valid() {
		return l, false
	}
	return l.update(id, func(t *Task) bool {
		if t.Priority == p {
			return false
		}
		t.Priority = p
		return true
	})
}

// SetCategory replaces the category of the task with id. The empty string
// moves the task to the uncategorized group.
func (l List) SetCategory(id, category string) (List, bool) {
	category = l.canonicalCategory(NormalizeCategory(category), id)
	return l.update(id, func(t *Task) bool {
		if t.Category == category {
			return false
		}
		t.Category = category
		return true
	})
}

// Categories returns the distinct non-empty categories in order of first
// appearance. Categories differing only in case are reported once, with
// the first-seen spelling.
func (l List) Categories() []string {
	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, t := range l.tasks {
		if t.Uncategorized() {
			continue
		}
		key := CategoryKey(t.Category)
		if seen[key] {
			continue
		}
		seen[key] = true
		categories = append(categories, t.Category)
	}
	return categories
}

// Group is the tasks sharing one category.
type Group struct {
	Category string
	Tasks    []Task
}

// Grouping partitions a list for presentation.
type Grouping struct {
	Groups        []Group
	Uncategorized []Task
}

// Len returns the number of tasks across all groups.
func (g Grouping) Len() int {
	n := len(g.Uncategorized)
	for _, group := range g.Groups {
		n += len(group.Tasks)
	}
	return n
}

// GroupByCategory partitions the list by category. Groups follow the order
// of Categories; tasks keep their list order within a group.
func (l List) GroupByCategory() Grouping {
	var grouping Grouping
	index := make(map[string]int)
	for _, t := range l.tasks {
		if t.Uncategorized() {
			grouping.Uncategorized = append(grouping.Uncategorized, t)
			continue
		}
		key := CategoryKey(t.Category)
		i, ok := index[key]
		if !ok {
			i = len(grouping.Groups)
			index[key] = i
			grouping.Groups = append(grouping.Groups, Group{Category: t.Category})
		}
		grouping.Groups[i].Tasks = append(grouping.Groups[i].Tasks, t)
	}
	return grouping
}

// Counts summarizes a list.
type Counts struct {
	Total      int
	Completed  int
	ByPriority map[Priority]int
}

// Pending returns the number of tasks not yet completed.
func (c Counts) Pending() int {
	return c.Total - c.Completed
}

// Counts tallies the list.
func (l List) Counts() Counts {
	c := Counts{
		Total: len(l.tasks),
		ByPriority: map[Priority]int{
			PriorityLow:    0,
			PriorityMedium: 0,
			PriorityHigh:   0,
		},
	}
	for _, t := range l.tasks {
		if t.Completed {
			c.Completed++
		}
		c.ByPriority[t.Priority]++
	}
	return c
}

// MarshalJSON encodes the list as a JSON array.
func (l List) MarshalJSON() ([]byte, error) {
	if l.tasks == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.tasks)
}

// UnmarshalJSON decodes a JSON array of tasks without validation.
func (l *List) UnmarshalJSON(data []byte) error {
	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return err
	}
	l.tasks = tasks
	return nil
}

// update copies the list and applies fn to the task with id.
// fn reports whether it changed the task.
func (l List) update(id string, fn func(*Task) bool) (List, bool) {
	i := l.Index(id)
	if i < 0 {
		return l, false
	}
	task := l.tasks[i]
	if !fn(&task) {
		return l, false
	}
	next := make([]Task, len(l.tasks))
	copy(next, l.tasks)
	next[i] = task
	return List{tasks: next}, true
}

// canonicalCategory returns the spelling already used in the list for a
// category folding equal to category, ignoring the task with excludeID.
func (l List) canonicalCategory(category, excludeID string) string {
	if category == "" {
		return ""
	}
	key := CategoryKey(category)
	for _, t := range l.tasks {
		if t.ID == excludeID || t.Uncategorized() {
			continue
		}
		if CategoryKey(t.Category) == key {
			return t.Category
		}
	}
	return category
}
