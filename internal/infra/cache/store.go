// Package cache is an in-process keyed store whose entries expire at caller-supplied times.
// Expiry is checked against the "now" passed to each call; nothing runs in the background.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

type Store[V any] struct {
	mu    sync.Mutex
	items map[string]entry[V]
}

func New[V any]() *Store[V] {
	return &Store[V]{items: make(map[string]entry[V])}
}

// Get returns the value for key if it has not expired at now.
func (s *Store[V]) Get(key string, now time.Time) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[key]
	if !ok || !now.Before(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (s *Store[V]) Set(key string, value V, expiresAt time.Time) {
	s.mu.Lock()
	s.items[key] = entry[V]{value: value, expiresAt: expiresAt}
	s.mu.Unlock()
}

// Update applies fn to the live value for key (zero value when absent or expired)
// and stores the result atomically.
func (s *Store[V]) Update(key string, now time.Time, fn func(cur V, found bool) (V, time.Time)) V {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[key]
	if ok && !now.Before(e.expiresAt) {
		ok = false
		e = entry[V]{}
	}
	v, exp := fn(e.value, ok)
	s.items[key] = entry[V]{value: v, expiresAt: exp}
	return v
}

func (s *Store[V]) Delete(key string) {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
}

// Prune drops entries expired at now and returns how many were removed.
func (s *Store[V]) Prune(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, e := range s.items {
		if !now.Before(e.expiresAt) {
			delete(s.items, k)
			n++
		}
	}
	return n
}

func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
