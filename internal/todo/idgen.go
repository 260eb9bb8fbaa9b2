package todo

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ID schemes accepted by NewIDGenerator.
const (
	IDSchemeUUID     = "uuid"
	IDSchemeSequence = "sequence"
)

// IDGenerator produces task ids.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator produces time-ordered UUIDv7 ids.
type UUIDGenerator struct{}

// NewID returns a new UUID string.
func (UUIDGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// SequenceGenerator produces monotonically increasing ids such as T1, T2.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	last   int
}

// NewSequenceGenerator returns a generator whose ids start with prefix.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

// Observe advances the sequence past every numeric id already in l, so
// ids loaded from storage are never handed out again.
func (g *SequenceGenerator) Observe(l List) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, t := range l.tasks {
		if !strings.HasPrefix(t.ID, g.prefix) {
			continue
		}
		if n := idSortKey(t.ID); n > g.last {
			g.last = n
		}
	}
}

// NewID returns the next id in the sequence.
func (g *SequenceGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last++
	return g.prefix + strconv.Itoa(g.last)
}

// NewIDGenerator returns the generator for scheme (uuid|sequence).
func NewIDGenerator(scheme string) (IDGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", IDSchemeUUID:
		return UUIDGenerator{}, nil
	case IDSchemeSequence, "seq":
		return NewSequenceGenerator("T"), nil
	}
	return nil, fmt.Errorf("unknown id scheme %q (expected uuid|sequence)", scheme)
}

// idSortKey extracts the numeric value from a task ID.
// For IDs like "T001", "T2", "T10", it returns 1, 2, 10 respectively.
// If the ID doesn't end in a number, it returns -1.
func idSortKey(id string) int {
	i := 0
	for i < len(id) && (id[i] < '0' || id[i] > '9') {
		i++
	}
	if i == len(id) {
		return -1
	}
	num, err := strconv.Atoi(id[i:])
	if err != nil {
		return -1
	}
	return num
}
