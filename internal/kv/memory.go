package kv

import (
	"fmt"
	"sync"
)

// MemoryMedium is an in-memory Medium used by tests and by dry runs that
// must not touch the data file. It honors the same quota semantics as
// FileMedium.
type MemoryMedium struct {
	mu    sync.Mutex
	data  map[string]string
	quota int
	used  int
}

// NewMemory returns an empty MemoryMedium. quota <= 0 means unlimited.
func NewMemory(quota int) *MemoryMedium {
	return &MemoryMedium{data: make(map[string]string), quota: quota}
}

// Get implements Medium.
func (m *MemoryMedium) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

// Set implements Medium.
func (m *MemoryMedium) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.used + len(value) - len(m.data[key])
	if _, ok := m.data[key]; !ok {
		next += len(key)
	}
	if m.quota > 0 && next > m.quota {
		return fmt.Errorf("kv: set %q: %w", key, ErrQuotaExceeded)
	}
	m.data[key] = value
	m.used = next
	return nil
}

// Delete implements Medium. In-memory removal cannot fail.
func (m *MemoryMedium) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		m.used -= len(key) + len(v)
		delete(m.data, key)
	}
	return nil
}

// Keys implements Medium.
func (m *MemoryMedium) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}
