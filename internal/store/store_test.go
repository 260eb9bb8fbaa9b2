package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/nibzard/taskboard/internal/persist"
	"github.com/nibzard/taskboard/internal/storage"
	"github.com/nibzard/taskboard/internal/todo"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

// fakePersister records saves and can be told to fail.
type fakePersister struct {
	initial todo.List
	loads   int
	saves   []todo.List
	err     error
}

func (f *fakePersister) Load(context.Context) (todo.List, bool) {
	f.loads++
	return f.initial, f.initial.Len() > 0
}

func (f *fakePersister) Save(_ context.Context, l todo.List) error {
	f.saves = append(f.saves, l)
	return f.err
}

func newTestStore(t *testing.T, p Persister) *Store {
	t.Helper()
	return New(context.Background(), Options{
		Persister: p,
		IDs:       todo.NewSequenceGenerator("T"),
		Now:       func() time.Time { return fixedNow },
	})
}

func TestNewLoadsOnce(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)
	s.Add(todo.Draft{Text: "x"})
	s.Snapshot()
	if p.loads != 1 {
		t.Errorf("loads = %d, want 1", p.loads)
	}
}

func TestAddBuyMilk(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)

	task, ok := s.Add(todo.Draft{Text: "Buy milk", Priority: todo.PriorityLow, Category: "Shopping"})
	if !ok {
		t.Fatal("Add reported no change")
	}
	want := todo.Task{ID: "T1", Text: "Buy milk", Priority: todo.PriorityLow, Category: "Shopping", CreatedAt: fixedNow}
	if !reflect.DeepEqual(task, want) {
		t.Errorf("task = %+v, want %+v", task, want)
	}
	if s.Snapshot().Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Snapshot().Len())
	}
	if len(p.saves) != 1 || !p.saves[0].Equal(s.Snapshot()) {
		t.Errorf("saves = %d, want one save of the new list", len(p.saves))
	}
	if !reflect.DeepEqual(s.Categories(), []string{"Shopping"}) {
		t.Errorf("Categories = %v", s.Categories())
	}
}

func TestAddRejectsEmptyText(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)
	if _, ok := s.Add(todo.Draft{Text: "   "}); ok {
		t.Error("empty text accepted")
	}
	if len(p.saves) != 0 {
		t.Errorf("saves = %d, want 0", len(p.saves))
	}
}

func TestSequenceContinuesAfterLoadedIDs(t *testing.T) {
	task, _ := todo.NewTask(todo.Draft{Text: "old"}, "T7", fixedNow)
	initial, _ := todo.List{}.Add(task)
	s := newTestStore(t, &fakePersister{initial: initial})

	added, ok := s.Add(todo.Draft{Text: "new"})
	if !ok || added.ID != "T8" {
		t.Errorf("Add = (%+v, %v), want id T8", added, ok)
	}
}

func TestMutationsNotifyAndSave(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)
	task, _ := s.Add(todo.Draft{Text: "Write report"})

	var changes []Change
	unsubscribe := s.Subscribe(func(c Change) { changes = append(changes, c) })
	defer unsubscribe()

	steps := []struct {
		op Op
		fn func() bool
	}{
		{OpToggle, func() bool { return s.ToggleComplete(task.ID) }},
		{OpEdit, func() bool { return s.EditText(task.ID, "Write final report") }},
		{OpPriority, func() bool { return s.SetPriority(task.ID, todo.PriorityHigh) }},
		{OpCategory, func() bool { return s.SetCategory(task.ID, "Work") }},
		{OpDelete, func() bool { return s.Delete(task.ID) }},
	}
	for i, step := range steps {
		if !step.fn() {
			t.Fatalf("%s reported no change", step.op)
		}
		if len(changes) != i+1 {
			t.Fatalf("after %s: %d notifications, want %d", step.op, len(changes), i+1)
		}
		c := changes[i]
		if c.Op != step.op || c.TaskID != task.ID {
			t.Errorf("change = %+v, want op %s", c, step.op)
		}
		if !c.List.Equal(s.Snapshot()) {
			t.Errorf("change list differs from snapshot after %s", step.op)
		}
	}
	if len(p.saves) != 1+len(steps) {
		t.Errorf("saves = %d, want %d", len(p.saves), 1+len(steps))
	}
	if s.Snapshot().Len() != 0 {
		t.Errorf("list not empty after delete: %+v", s.Snapshot().Tasks())
	}
}

func TestNoOpMutationsNeitherSaveNorNotify(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)
	task, _ := s.Add(todo.Draft{Text: "x", Priority: todo.PriorityHigh})
	saves := len(p.saves)

	notified := 0
	s.Subscribe(func(Change) { notified++ })

	results := []bool{
		s.ToggleComplete("missing"),
		s.Delete("missing"),
		s.EditText(task.ID, "   "),
		s.EditText("missing", "y"),
		s.SetPriority(task.ID, todo.PriorityHigh),
		s.SetPriority(task.ID, "urgent"),
		s.SetPriority("missing", todo.PriorityLow),
		s.SetCategory(task.ID, ""),
	}
	for i, changed := range results {
		if changed {
			t.Errorf("call %d reported a change", i)
		}
	}
	if notified != 0 || len(p.saves) != saves {
		t.Errorf("notified = %d, saves = %d, want none", notified, len(p.saves)-saves)
	}
}

func TestSaveFailureKeepsChange(t *testing.T) {
	p := &fakePersister{err: errors.New("disk full")}
	var saveErrs []error
	s := New(context.Background(), Options{
		Persister:   p,
		OnSaveError: func(err error) { saveErrs = append(saveErrs, err) },
	})

	notified := false
	s.Subscribe(func(Change) { notified = true })

	task, ok := s.Add(todo.Draft{Text: "still here"})
	if !ok {
		t.Fatal("Add should succeed despite save failure")
	}
	if _, found := s.Snapshot().Get(task.ID); !found {
		t.Error("task missing after failed save")
	}
	if len(saveErrs) != 1 || saveErrs[0].Error() != "disk full" {
		t.Errorf("OnSaveError calls = %v", saveErrs)
	}
	if !notified {
		t.Error("subscribers should be notified after a failed save")
	}
}

func TestQuotaFailureWithRealAdapter(t *testing.T) {
	a, err := persist.New(storage.NewMemory(64), "", nil)
	if err != nil {
		t.Fatal(err)
	}
	var saveErr error
	s := New(context.Background(), Options{
		Persister:   a,
		OnSaveError: func(err error) { saveErr = err },
	})

	s.Add(todo.Draft{Text: "this task description is long enough to blow the quota"})
	if !errors.Is(saveErr, storage.ErrQuotaExceeded) {
		t.Errorf("save error = %v, want ErrQuotaExceeded", saveErr)
	}
	if s.Snapshot().Len() != 1 {
		t.Error("in-memory list should keep the task")
	}
}

func TestPersistRoundTripThroughStore(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory(0)
	a, _ := persist.New(kv, "", nil)

	s1 := New(ctx, Options{Persister: a})
	s1.Add(todo.Draft{Text: "one", Category: "Work"})
	s1.Add(todo.Draft{Text: "two"})

	s2 := New(ctx, Options{Persister: a})
	if !s2.Snapshot().Equal(s1.Snapshot()) {
		t.Errorf("reloaded = %+v, want %+v", s2.Snapshot().Tasks(), s1.Snapshot().Tasks())
	}
}

func TestUnsubscribe(t *testing.T) {
	s := newTestStore(t, nil)
	var a, b int
	unsubA := s.Subscribe(func(Change) { a++ })
	s.Subscribe(func(Change) { b++ })

	s.Add(todo.Draft{Text: "one"})
	unsubA()
	unsubA()
	s.Add(todo.Draft{Text: "two"})

	if a != 1 || b != 2 {
		t.Errorf("a = %d, b = %d, want 1 and 2", a, b)
	}
}

func TestSnapshotIsStable(t *testing.T) {
	s := newTestStore(t, nil)
	task, _ := s.Add(todo.Draft{Text: "one"})
	snap := s.Snapshot()

	s.ToggleComplete(task.ID)
	s.EditText(task.ID, "changed")

	got, _ := snap.Get(task.ID)
	if got.Completed || got.Text != "one" {
		t.Errorf("earlier snapshot was mutated: %+v", got)
	}
}

func TestGroupByCategory(t *testing.T) {
	s := newTestStore(t, nil)
	s.Add(todo.Draft{Text: "one", Category: "Work"})
	s.Add(todo.Draft{Text: "two"})
	s.Add(todo.Draft{Text: "three", Category: "Work"})

	g := s.GroupByCategory()
	if len(g.Groups) != 1 || len(g.Groups[0].Tasks) != 2 || len(g.Uncategorized) != 1 {
		t.Errorf("grouping = %+v", g)
	}
}
