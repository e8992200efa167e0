package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryWindow struct {
	count    int64
	expireAt time.Time
}

// MemoryStore is an in-process Store implementation. Expired windows are
// dropped lazily on access, so memory stays proportional to active keys.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
}

// NewMemoryStore creates an in-memory counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*memoryWindow)}
}

func (s *MemoryStore) IncrementAndGet(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || now.After(w.expireAt) {
		w = &memoryWindow{expireAt: now.Add(window)}
		s.windows[key] = w
	}
	w.count++

	return w.count, time.Until(w.expireAt), nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
	return nil
}
