package lockout

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	count    int
	expireAt time.Time
}

// MemoryStore keeps failure counters in process memory. Suitable for a single
// gateway instance; use the Redis store when running more than one.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	window  time.Duration
	now     func() time.Time
}

func NewMemoryStore(window time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		window:  window,
		now:     time.Now,
	}
}

func (s *MemoryStore) Fail(_ context.Context, studentIDNumber string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[studentIDNumber]
	if !ok || s.now().After(e.expireAt) {
		e = entry{}
	}
	e.count++
	e.expireAt = s.now().Add(s.window)
	s.entries[studentIDNumber] = e
	return e.count, nil
}

func (s *MemoryStore) Count(_ context.Context, studentIDNumber string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[studentIDNumber]
	if !ok || s.now().After(e.expireAt) {
		return 0, nil
	}
	return e.count, nil
}

func (s *MemoryStore) Reset(_ context.Context, studentIDNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, studentIDNumber)
	return nil
}
