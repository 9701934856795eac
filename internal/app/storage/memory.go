package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-process BlobStore. FailSaves makes every subsequent Save fail,
// which lets callers exercise their rollback paths.
type MemoryStore struct {
	mu        sync.Mutex
	data      []byte
	saves     int
	failSaves error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Name implements BlobStore.
func (m *MemoryStore) Name() string {
	return "memory"
}

// Load implements BlobStore.
func (m *MemoryStore) Load(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, ErrBlobNotFound
	}

	return append([]byte(nil), m.data...), nil
}

// Save implements BlobStore.
func (m *MemoryStore) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSaves != nil {
		return m.failSaves
	}

	m.data = append([]byte(nil), data...)
	m.saves++
	return nil
}

// FailSaves sets the error returned by Save. A nil err restores normal behavior.
func (m *MemoryStore) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failSaves = err
}

// Saves returns how many times Save succeeded.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.saves
}
