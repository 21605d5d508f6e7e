package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetRespectsExpiry(t *testing.T) {
	s := New[string]()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	s.Set("k", "v", now.Add(time.Minute))

	v, ok := s.Get("k", now)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	_, ok = s.Get("k", now.Add(time.Minute))
	assert.False(t, ok)
}

func TestPrune(t *testing.T) {
	s := New[int]()
	now := time.Now()
	s.Set("old", 1, now.Add(-time.Second))
	s.Set("new", 2, now.Add(time.Hour))

	assert.Equal(t, 1, s.Prune(now))
	assert.Equal(t, 1, s.Len())
}

func TestUpdateResetsExpired(t *testing.T) {
	s := New[int]()
	now := time.Now()
	inc := func(cur int, _ bool) (int, time.Time) { return cur + 1, now.Add(time.Minute) }

	s.Update("k", now, inc)
	assert.Equal(t, 2, s.Update("k", now, inc))
	assert.Equal(t, 1, s.Update("k", now.Add(2*time.Minute), func(cur int, found bool) (int, time.Time) {
		assert.False(t, found)
		return cur + 1, now.Add(3 * time.Minute)
	}))
}

func TestConcurrentUpdate(t *testing.T) {
	s := New[int]()
	now := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update("k", now, func(cur int, _ bool) (int, time.Time) { return cur + 1, now.Add(time.Hour) })
		}()
	}
	wg.Wait()
	v, _ := s.Get("k", now)
	assert.Equal(t, 50, v)
}
