// Package kv abstracts the backing medium of the record keeper: a
// synchronous, per-device, string-valued key-value store with a practical
// capacity ceiling. No module outside internal/store and internal/auth
// addresses a Medium directly.
package kv

import "errors"

// ErrQuotaExceeded is returned by Set when a write would push the medium
// past its configured capacity ceiling.
var ErrQuotaExceeded = errors.New("kv: storage quota exceeded")

// Medium is the backing key-value store. Implementations are synchronous;
// Set either persists the pair durably or reports an error.
type Medium interface {
	// Get returns the value stored under key and whether it was present.
	Get(key string) (string, bool)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Delete removes key, reporting any failure to persist the removal.
	// Deleting an absent key is a no-op.
	Delete(key string) error
	// Keys returns every key currently stored, in unspecified order.
	Keys() []string
}
