package usage

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	count   int
	expires time.Time
}

// MemoryStore keeps counters in process memory. Counters are lost on
// restart and are not shared between replicas.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live(key).count, nil
}

func (s *MemoryStore) IncrementBelow(_ context.Context, key string, limit int, ttl time.Duration) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.live(key)
	if e.count >= limit {
		return e.count, false, nil
	}
	e.count++
	e.expires = s.now().Add(ttl)
	s.entries[key] = e
	return e.count, true, nil
}

func (s *MemoryStore) Decrement(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.live(key)
	if e.count == 0 {
		return nil
	}
	e.count--
	s.entries[key] = e
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// live returns the entry for key, dropping it if it has expired. Callers hold mu.
func (s *MemoryStore) live(key string) memoryEntry {
	e, ok := s.entries[key]
	if !ok {
		return memoryEntry{}
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		delete(s.entries, key)
		return memoryEntry{}
	}
	return e
}
