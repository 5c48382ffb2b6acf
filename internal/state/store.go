package state

import (
	"fmt"

	"go.uber.org/multierr"
)

// Store is the Joker State Store: per-joker persistent state keyed by joker
// id, living for the whole game session and surviving save/load. One Store
// belongs to exactly one game instance and is not safe for concurrent use.
type Store struct {
	states       map[string]*JokerState
	resetPending map[string]struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		states:       make(map[string]*JokerState),
		resetPending: make(map[string]struct{}),
	}
}

// Get returns a copy of the state for id, creating the default bag if the
// joker has none yet. Mutating the returned copy does not touch the store;
// use Update for that.
func (st *Store) Get(id string) JokerState {
	if s, ok := st.states[id]; ok {
		return s.clone()
	}
	s := DefaultState()
	st.states[id] = &s
	return s
}

// Version returns the current version counter for id, 0 if absent.
func (st *Store) Version(id string) uint64 {
	if s, ok := st.states[id]; ok {
		return s.Version
	}
	return 0
}

// Update applies fn atomically to the state for id (created with defaults
// when absent) and bumps the version counter. It returns the new version.
func (st *Store) Update(id string, fn func(*JokerState)) uint64 {
	s, ok := st.states[id]
	if !ok {
		def := DefaultState()
		s = &def
		st.states[id] = s
	}
	fn(s)
	s.Version++
	return s.Version
}

// Remove purges the state for id. Called from the joker teardown hook on
// sale or destruction.
func (st *Store) Remove(id string) {
	delete(st.states, id)
	delete(st.resetPending, id)
}

// MarkForReset flags a joker whose state was observed to be corrupt (for
// example after a recovered panic in its effect method). The flag takes
// effect on the next ValidatePass.
func (st *Store) MarkForReset(id string) {
	st.resetPending[id] = struct{}{}
}

// ValidatePass resets every flagged or invalid state bag to defaults and
// returns the collected non-fatal warnings. It never fails: a corrupt bag
// degrades to a fresh one.
func (st *Store) ValidatePass() error {
	var warns error
	for id, s := range st.states {
		_, flagged := st.resetPending[id]
		if !flagged {
			err := s.validate()
			if err == nil {
				continue
			}
			warns = multierr.Append(warns, fmt.Errorf("joker %s: %w", id, err))
		}
		v := s.Version
		*s = DefaultState()
		s.Version = v + 1
		delete(st.resetPending, id)
	}
	return warns
}

// Len reports how many jokers have state.
func (st *Store) Len() int {
	return len(st.states)
}

// Range iterates all state bags (copies) until fn returns false. Iteration
// order is unspecified; callers needing determinism sort the ids themselves.
func (st *Store) Range(fn func(id string, s JokerState) bool) {
	for id, s := range st.states {
		if !fn(id, s.clone()) {
			return
		}
	}
}

// Compact drops state belonging to jokers not present in live, returning
// how many entries were purged. Run periodically so sold jokers do not leak
// state across a long session.
func (st *Store) Compact(live map[string]bool) int {
	purged := 0
	for id := range st.states {
		if !live[id] {
			delete(st.states, id)
			delete(st.resetPending, id)
			purged++
		}
	}
	return purged
}
