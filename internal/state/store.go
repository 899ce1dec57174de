package state

import "sync"

// Store guards the save state behind a single mutex and funnels every
// mutation through Commit. The simulation is turn-based and effectively
// single-threaded, but the HTTP layer can interleave a purchase with a
// clock-driven refresh; the lock plus the commit discipline below make each
// operation one indivisible transition.
//
// Commit functions must check every precondition before touching the state:
// a non-nil error return promises the state was left unchanged.
type Store struct {
	mu sync.Mutex
	st SaveState
}

// NewStore creates a store around an initial state.
func NewStore(st SaveState) *Store {
	st.Normalize()
	return &Store{st: st}
}

// View runs fn with read access to the current state.
// fn must not retain or mutate what it is given.
func (s *Store) View(fn func(st *SaveState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.st)
}

// Commit runs fn with write access to the current state. The guard-first
// contract applies: on error fn must have left the state untouched.
func (s *Store) Commit(fn func(st *SaveState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.st)
}

// Snapshot returns a deep copy of the current state, for persistence.
func (s *Store) Snapshot() SaveState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Clone()
}

// Credits returns the player's current balance.
func (s *Store) Credits() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Player.Credits
}
