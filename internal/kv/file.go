package kv

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// DefaultQuota mirrors the few-megabyte ceiling of the browser storage the
// data files originate from.
const DefaultQuota = 5 * 1024 * 1024

// FileMedium is a Medium persisted as a single JSON file on disk. The whole
// map is loaded on open and flushed on every mutation, so readers within the
// process never observe a half-written state.
type FileMedium struct {
	path  string
	quota int

	mu   sync.Mutex
	data map[string]string
	used int
}

// OpenFile loads the medium stored at path, creating an empty one if the
// file does not exist yet. quota is the capacity ceiling in bytes; zero or
// negative means DefaultQuota.
func OpenFile(path string, quota int) (*FileMedium, error) {
	if quota <= 0 {
		quota = DefaultQuota
	}
	m := &FileMedium{path: path, quota: quota, data: make(map[string]string)}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("kv: open %s: %w", path, err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&m.data); err != nil {
		return nil, fmt.Errorf("kv: decode %s: %w", path, err)
	}
	for k, v := range m.data {
		m.used += len(k) + len(v)
	}
	return m, nil
}

// Get implements Medium.
func (m *FileMedium) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

// Set implements Medium. It fails with ErrQuotaExceeded before touching the
// map when the write would cross the quota, and reports flush failures
// without retrying (the medium is local, a retry would not change anything).
func (m *FileMedium) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.used + len(key) + len(value) - len(m.data[key])
	if _, ok := m.data[key]; ok {
		next -= len(key)
	}
	if next > m.quota {
		return fmt.Errorf("kv: set %q: %w", key, ErrQuotaExceeded)
	}

	prev, had := m.data[key]
	m.data[key] = value
	if err := m.flush(); err != nil {
		if had {
			m.data[key] = prev
		} else {
			delete(m.data, key)
		}
		return fmt.Errorf("kv: set %q: %w", key, err)
	}
	m.used = next
	return nil
}

// Delete implements Medium. A failed flush restores the in-memory entry, so
// memory and disk stay consistent, and is reported to the caller.
func (m *FileMedium) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil
	}
	delete(m.data, key)
	if err := m.flush(); err != nil {
		m.data[key] = v
		return fmt.Errorf("kv: delete %q: %w", key, err)
	}
	m.used -= len(key) + len(v)
	return nil
}

// Keys implements Medium.
func (m *FileMedium) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}

// flush writes the full map to a temp file and renames it into place.
// Callers must hold mu.
func (m *FileMedium) flush() error {
	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(m.data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, m.path)
}
