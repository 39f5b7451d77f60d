package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps counters in process. Expired entries linger until Sweep.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]Counter
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]Counter)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (Counter, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.counters[id]
	return c, ok, nil
}

func (m *MemoryStore) Increment(_ context.Context, id string, now time.Time, window time.Duration) (Counter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.counters[id]
	if !ok || c.expired(now, window) {
		c = Counter{Started: now}
	}
	c.Count++
	m.counters[id] = c
	return c, nil
}

// Sweep drops counters whose window has passed and returns how many went.
func (m *MemoryStore) Sweep(now time.Time, window time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, c := range m.counters {
		if c.expired(now, window) {
			delete(m.counters, id)
			removed++
		}
	}
	return removed
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.counters)
}
