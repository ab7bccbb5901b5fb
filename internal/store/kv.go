// Package store is the record store: flat keyed persistence of serialized
// record lists, with a change signal fired after every write.
package store

import (
	"context"
	"errors"
	"sync"
)

// ErrContention is returned when an atomic update keeps losing to concurrent writers.
var ErrContention = errors.New("store: too much contention on key")

// UpdateFunc computes the next value of a key from its current one.
// It returns the new value and whether anything changed. It may be called
// more than once when the backend retries an optimistic transaction.
type UpdateFunc func(current []byte, exists bool) (next []byte, changed bool, err error)

// KV is the byte-level storage underneath Records.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	// Update performs an atomic read-modify-write of one key.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Delete(ctx context.Context, key string) error
}

// MemoryKV is a process-local KV guarded by a mutex.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryKV returns an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Update(_ context.Context, key string, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.data[key]
	next, changed, err := fn(append([]byte(nil), cur...), ok)
	if err != nil || !changed {
		return err
	}
	m.data[key] = append([]byte(nil), next...)
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
