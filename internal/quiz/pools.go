package quiz

import (
	"errors"
	"fmt"
	"sync"

	"github.com/abhisek/mcqprep/internal/bank"
	"github.com/abhisek/mcqprep/internal/question"
)

// ErrPoolNotReady is returned when a session is requested against a pool
// whose load has not completed.
var ErrPoolNotReady = errors.New("question pool not loaded yet")

// PoolStatus is the load state of one pool.
type PoolStatus int

const (
	PoolUnknown PoolStatus = iota
	PoolLoading
	PoolReady
	PoolFailed
)

func (s PoolStatus) String() string {
	switch s {
	case PoolLoading:
		return "loading"
	case PoolReady:
		return "ready"
	case PoolFailed:
		return "unavailable"
	default:
		return "not loaded"
	}
}

type poolSlot struct {
	status  PoolStatus
	pool    *question.Pool
	err     error
	latest  uint64 // newest BeginLoad sequence
	applied uint64 // sequence of the result currently held
}

// Registry holds the loaded pools. Loads may complete out of order; the
// result with the highest sequence number wins. Safe for concurrent use.
type Registry struct {
	mu    sync.Mutex
	seq   uint64
	slots map[string]*poolSlot
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{slots: make(map[string]*poolSlot)}
}

func (r *Registry) slot(id string) *poolSlot {
	s, ok := r.slots[id]
	if !ok {
		s = &poolSlot{}
		r.slots[id] = s
	}
	return s
}

// BeginLoad records that a load for id has started and returns its
// sequence number. A pool that already holds data stays usable.
func (r *Registry) BeginLoad(id string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	s := r.slot(id)
	s.latest = r.seq
	if s.status != PoolReady {
		s.status = PoolLoading
	}
	return r.seq
}

// CompleteLoad stores the outcome of load seq. It reports false when a
// later load has already been applied. A failure never replaces a pool
// that loaded successfully.
func (r *Registry) CompleteLoad(id string, seq uint64, pool *question.Pool, err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.slot(id)
	if seq < s.applied {
		return false
	}
	s.applied = seq
	if err != nil {
		if s.status != PoolReady {
			s.status, s.err = PoolFailed, err
		}
		return true
	}
	s.status, s.pool, s.err = PoolReady, pool, nil
	return true
}

// Set installs a pool directly, as a completed load.
func (r *Registry) Set(pool *question.Pool) {
	r.CompleteLoad(pool.ID, r.BeginLoad(pool.ID), pool, nil)
}

// Status returns the load state of id.
func (r *Registry) Status(id string) PoolStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.slots[id]; ok {
		return s.status
	}
	return PoolUnknown
}

// Get returns the pool for id, or ErrPoolNotReady while loading, or an
// error wrapping bank.ErrSourceUnavailable when the load failed.
func (r *Registry) Get(id string) (*question.Pool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrPoolNotReady)
	}
	switch s.status {
	case PoolReady:
		return s.pool, nil
	case PoolFailed:
		if errors.Is(s.err, bank.ErrSourceUnavailable) {
			return nil, s.err
		}
		return nil, fmt.Errorf("%s: %w: %w", id, bank.ErrSourceUnavailable, s.err)
	default:
		return nil, fmt.Errorf("%s: %w", id, ErrPoolNotReady)
	}
}

// Len returns the question count of a ready pool, 0 otherwise.
func (r *Registry) Len(id string) int {
	p, err := r.Get(id)
	if err != nil {
		return 0
	}
	return p.Len()
}
