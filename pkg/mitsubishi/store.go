// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mitsubishi

import "sync"

// Store is an in-memory Climate. Observers run on Publish, outside the lock.
type Store struct {
	mu        sync.RWMutex
	state     State
	observers []func(State)
}

var _ Climate = (*Store)(nil)

// NewStore creates a store holding initial
func NewStore(initial State) *Store {
	return &Store{state: initial}
}

// State returns the current state
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetState replaces the current state without notifying observers
func (s *Store) SetState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// Update applies fn to the current state and returns the result
func (s *Store) Update(fn func(*State)) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	return s.state
}

// OnPublish registers fn to be called with the state on every Publish
func (s *Store) OnPublish(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Publish notifies observers of the current state
func (s *Store) Publish() {
	s.mu.RLock()
	state := s.state
	observers := make([]func(State), len(s.observers))
	copy(observers, s.observers)
	s.mu.RUnlock()

	for _, fn := range observers {
		fn(state)
	}
}
