package schedule

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Backend.Get when nothing was stored under the key yet
var ErrNotFound = errors.New("not found")

// Backend is durable key/value blob storage grouped by namespace. Set must commit atomically:
// after a crash the previous or the new value is readable, never a mix
type Backend interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Set(ctx context.Context, namespace, key string, value []byte) error
	Erase(ctx context.Context, namespace string) error
	Close() error
}

// MemoryBackend keeps blobs in process memory. Nothing survives a restart
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string]map[string][]byte
}

var _ Backend = &MemoryBackend{}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: map[string]map[string][]byte{}}
}

// Get implements Backend.
func (m *MemoryBackend) Get(_ context.Context, namespace, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.data[namespace][key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set implements Backend.
func (m *MemoryBackend) Set(_ context.Context, namespace, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data[namespace] == nil {
		m.data[namespace] = map[string][]byte{}
	}
	m.data[namespace][key] = append([]byte(nil), value...)
	return nil
}

// Erase implements Backend.
func (m *MemoryBackend) Erase(_ context.Context, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, namespace)
	return nil
}

// Close implements Backend.
func (m *MemoryBackend) Close() error {
	return nil
}
