package persist

import (
	"bytes"
	"context"
	"sync"
)

// MemoryBackend keeps the snapshot in memory. Save and load failures can be
// injected to exercise error paths.
type MemoryBackend struct {
	mu      sync.Mutex
	data    []byte
	stored  bool
	saves   int
	saveErr error
	loadErr error
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *MemoryBackend {
	return &MemoryBackend{}
}

// NewMemoryWith returns a backend that already holds data.
func NewMemoryWith(data []byte) *MemoryBackend {
	return &MemoryBackend{data: bytes.Clone(data), stored: true}
}

// SetSaveError makes subsequent saves fail with err (nil clears it).
func (m *MemoryBackend) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// SetLoadError makes subsequent loads fail with err (nil clears it).
func (m *MemoryBackend) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *MemoryBackend) SaveSnapshot(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = bytes.Clone(data)
	m.stored = true
	m.saves++
	return nil
}

func (m *MemoryBackend) LoadSnapshot(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if !m.stored {
		return nil, ErrNoSnapshot
	}
	return bytes.Clone(m.data), nil
}

// Snapshot returns the stored bytes and whether anything was saved.
func (m *MemoryBackend) Snapshot() ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return bytes.Clone(m.data), m.stored
}

// Saves counts successful saves.
func (m *MemoryBackend) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *MemoryBackend) Describe() string {
	return "memory"
}

func (m *MemoryBackend) Close() error {
	return nil
}
