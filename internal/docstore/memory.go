// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package docstore

import (
	"context"
	"sync"
)

// MemoryBackend keeps documents in memory. Used by tests and as a fake.
type MemoryBackend struct {
	docs map[string][]byte
	mu   sync.RWMutex

	// FailLoad and FailSave, when set, are returned instead of touching the map.
	FailLoad error
	FailSave error
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string][]byte)}
}

// Load returns a copy of the named document.
func (b *MemoryBackend) Load(_ context.Context, name string) ([]byte, error) {
	if b.FailLoad != nil {
		return nil, b.FailLoad
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	body, ok := b.docs[name]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), body...), nil
}

// Save stores a copy of body under name.
func (b *MemoryBackend) Save(_ context.Context, name string, body []byte) error {
	if b.FailSave != nil {
		return b.FailSave
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.docs[name] = append([]byte(nil), body...)
	return nil
}
