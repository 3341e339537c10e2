// Package store keeps the fetched dataset of a dashboard page in memory.
package store

import (
	"errors"
	"sync"
)

// ErrStale reports a load whose token was overtaken by a newer one.
var ErrStale = errors.New("store: stale response discarded")

// Token identifies one fetch started through Begin.
type Token uint64

// Store holds a replace-all collection indexed by id.
type Store[T any] struct {
	mu         sync.RWMutex
	idOf       func(T) string
	items      []T
	index      map[string]int
	generation uint64
	issued     Token
	applied    Token
	onReplace  func(count int)
}

// New constructs an empty store using idOf for the secondary index.
func New[T any](idOf func(T) string) *Store[T] {
	return &Store[T]{idOf: idOf, index: map[string]int{}}
}

// Begin issues a token for a fetch about to start.
func (s *Store[T]) Begin() Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Commit applies items fetched under token unless a newer fetch already landed.
func (s *Store[T]) Commit(token Token, items []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token <= s.applied {
		return ErrStale
	}
	s.applied = token
	s.replace(items)
	return nil
}

// Load replaces the collection outright, overtaking any fetch in flight.
func (s *Store[T]) Load(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	s.applied = s.issued
	s.replace(items)
}

func (s *Store[T]) replace(items []T) {
	index := make(map[string]int, len(items))
	for i, item := range items {
		index[s.idOf(item)] = i
	}
	s.items = items
	s.index = index
	s.generation++
	if s.onReplace != nil {
		s.onReplace(len(items))
	}
}

// OnReplace registers fn to run, under the store lock, after every dataset
// replacement. fn must not call back into the store.
func (s *Store[T]) OnReplace(fn func(count int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReplace = fn
}

// Find looks a record up by id.
func (s *Store[T]) Find(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return s.items[i], true
}

// All returns the current collection. Callers must not modify it.
func (s *Store[T]) All() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items
}

// Len returns the number of records held.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Generation changes every time a load is applied; zero means never loaded.
func (s *Store[T]) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Loaded reports whether any dataset has been applied.
func (s *Store[T]) Loaded() bool {
	return s.Generation() > 0
}

// Snapshot returns the collection together with the generation it belongs to.
func (s *Store[T]) Snapshot() ([]T, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items, s.generation
}
