package store

import (
	"sync"
	"time"
)

const sweepInterval = time.Minute

type entry struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process KV with a background sweeper that drops entries
// once they are past expiry. Concurrent Sets on the same key race on
// overwrite; last write wins, which is the intended semantics for
// verification codes.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
}

// NewMemory creates an in-memory store and starts its sweeper.
func NewMemory() *Memory {
	m := &Memory{entries: make(map[string]entry)}
	go m.sweep()
	return m
}

// Set stores value under key, replacing any previous entry.
func (m *Memory) Set(key, value string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
}

// Get returns the entry for key if one is present.
func (m *Memory) Get(key string) (string, time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return "", time.Time{}, false
	}
	return e.value, e.expiresAt, true
}

// Delete removes the entry for key if one is present.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *Memory) sweep() {
	for {
		time.Sleep(sweepInterval)
		now := time.Now()
		m.mu.Lock()
		for k, e := range m.entries {
			if now.After(e.expiresAt) {
				delete(m.entries, k)
			}
		}
		m.mu.Unlock()
	}
}
