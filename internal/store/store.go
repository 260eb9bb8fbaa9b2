// Package store owns the current task list.
//
// A Store applies transitions from the todo package, saves the full list
// after every change and tells subscribers what happened. Saving is best
// effort: a failed write is reported but the in-memory list stays current.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskboard/internal/logging"
	"github.com/nibzard/taskboard/internal/todo"
)

// Op names a mutation.
type Op string

const (
	OpAdd      Op = "add"
	OpToggle   Op = "toggle"
	OpDelete   Op = "delete"
	OpEdit     Op = "edit"
	OpPriority Op = "priority"
	OpCategory Op = "category"
)

// Change describes one applied mutation. List is the snapshot after it.
type Change struct {
	Op     Op
	TaskID string
	List   todo.List
}

// Persister loads and saves a task list.
type Persister interface {
	Load(ctx context.Context) (todo.List, bool)
	Save(ctx context.Context, list todo.List) error
}

// Options configures a Store.
type Options struct {
	Persister Persister
	IDs       todo.IDGenerator
	Now       func() time.Time
	Logger    *log.Logger
	// OnSaveError is called after a save fails. The change is kept.
	OnSaveError func(error)
}

// Store is the single owner of the task list.
type Store struct {
	ctx         context.Context
	persister   Persister
	ids         todo.IDGenerator
	now         func() time.Time
	logger      *log.Logger
	onSaveError func(error)

	mu        sync.Mutex
	list      todo.List
	subs      []subscription
	nextSubID int
}

type subscription struct {
	id int
	fn func(Change)
}

// observer is implemented by generators that must skip ids already in use.
type observer interface {
	Observe(todo.List)
}

// New builds a store and loads the persisted list once.
// Without a Persister the store starts empty and keeps changes in memory.
func New(ctx context.Context, opts Options) *Store {
	s := &Store{
		ctx:         ctx,
		persister:   opts.Persister,
		ids:         opts.IDs,
		now:         opts.Now,
		logger:      opts.Logger,
		onSaveError: opts.OnSaveError,
	}
	if s.ids == nil {
		s.ids = todo.UUIDGenerator{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.persister != nil {
		s.list, _ = s.persister.Load(ctx)
	}
	if o, ok := s.ids.(observer); ok {
		o.Observe(s.list)
	}
	return s
}

// Snapshot returns the current list.
func (s *Store) Snapshot() todo.List {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list
}

// Categories returns the distinct categories of the current list.
func (s *Store) Categories() []string {
	return s.Snapshot().Categories()
}

// GroupByCategory groups the current list.
func (s *Store) GroupByCategory() todo.Grouping {
	return s.Snapshot().GroupByCategory()
}

// Add creates a task from draft. It returns false when the draft text is
// empty after trimming or the priority is invalid.
func (s *Store) Add(d todo.Draft) (todo.Task, bool) {
	task, ok := todo.NewTask(d, s.ids.NewID(), s.now())
	if !ok {
		return todo.Task{}, false
	}
	var added todo.Task
	changed := s.apply(OpAdd, task.ID, func(l todo.List) (todo.List, bool) {
		next, ok := l.Add(task)
		if ok {
			added, _ = next.Get(task.ID)
		}
		return next, ok
	})
	return added, changed
}

// ToggleComplete flips the completed flag of the task with id.
func (s *Store) ToggleComplete(id string) bool {
	return s.apply(OpToggle, id, func(l todo.List) (todo.List, bool) {
		return l.ToggleComplete(id)
	})
}

// Delete removes the task with id.
func (s *Store) Delete(id string) bool {
	return s.apply(OpDelete, id, func(l todo.List) (todo.List, bool) {
		return l.Delete(id)
	})
}

// EditText replaces the text of the task with id.
func (s *Store) EditText(id, text string) bool {
	return s.apply(OpEdit, id, func(l todo.List) (todo.List, bool) {
		return l.EditText(id, text)
	})
}

// SetPriority replaces the priority of the task with id.
func (s *Store) SetPriority(id string, p todo.Priority) bool {
	return s.apply(OpPriority, id, func(l todo.List) (todo.List, bool) {
		return l.SetPriority(id, p)
	})
}

// SetCategory replaces the category of the task with id.
func (s *Store) SetCategory(id, category string) bool {
	return s.apply(OpCategory, id, func(l todo.List) (todo.List, bool) {
		return l.SetCategory(id, category)
	})
}

// Subscribe registers fn to run after every applied change, in
// registration order. The returned function removes it.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// apply runs fn against the current list. On change it replaces the
// snapshot, saves, then notifies subscribers.
func (s *Store) apply(op Op, id string, fn func(todo.List) (todo.List, bool)) bool {
	s.mu.Lock()
	next, changed := fn(s.list)
	if !changed {
		s.mu.Unlock()
		s.logger.Debug("no change", "op", op, "id", id)
		return false
	}
	s.list = next
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	s.logger.Debug("applied", "op", op, "id", id, "count", next.Len())
	s.save(next)

	change := Change{Op: op, TaskID: id, List: next}
	for _, sub := range subs {
		sub.fn(change)
	}
	return true
}

func (s *Store) save(list todo.List) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(s.ctx, list); err != nil {
		s.logger.Error("failed to save tasks", "err", err)
		if s.onSaveError != nil {
			s.onSaveError(err)
		}
	}
}
