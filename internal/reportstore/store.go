package reportstore

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/radgo/internal/witness"
)

// Store records pipeline outcomes by request name.
type Store interface {
	// Put records o as the latest outcome of its request.
	Put(ctx context.Context, o *witness.Outcome) error
	// Get returns the latest outcome of a request.
	Get(ctx context.Context, name string) (*witness.Outcome, bool, error)
	// List returns the latest outcome of every request, ordered by name.
	List(ctx context.Context) ([]*witness.Outcome, error)
	// Runs returns how many outcomes were recorded for a request.
	Runs(ctx context.Context, name string) (int64, error)
}

// Memory is an in-memory Store.
type Memory struct {
	latest sync.Map // request name -> *witness.Outcome
	runs   sync.Map // request name -> *atomic.Int64
}

// New creates an empty in-memory store.
func New() *Memory {
	return &Memory{}
}

var _ Store = (*Memory)(nil)

// Put implements Store.
func (m *Memory) Put(_ context.Context, o *witness.Outcome) error {
	m.latest.Store(o.Request, o)
	counter, _ := m.runs.LoadOrStore(o.Request, new(atomic.Int64))
	counter.(*atomic.Int64).Add(1)
	return nil
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, name string) (*witness.Outcome, bool, error) {
	v, ok := m.latest.Load(name)
	if !ok {
		return nil, false, nil
	}
	return v.(*witness.Outcome), true, nil
}

// List implements Store.
func (m *Memory) List(_ context.Context) ([]*witness.Outcome, error) {
	var out []*witness.Outcome
	m.latest.Range(func(_, v any) bool {
		out = append(out, v.(*witness.Outcome))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Request < out[j].Request })
	return out, nil
}

// Runs implements Store.
func (m *Memory) Runs(_ context.Context, name string) (int64, error) {
	v, ok := m.runs.Load(name)
	if !ok {
		return 0, nil
	}
	return v.(*atomic.Int64).Load(), nil
}
