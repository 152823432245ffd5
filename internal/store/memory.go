package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps preferences in process memory
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryBackend creates a backend seeded with values
func NewMemoryBackend(values map[string]string) *MemoryBackend {
	b := &MemoryBackend{values: make(map[string]string, len(values))}
	for k, v := range values {
		b.values[k] = v
	}
	return b
}

// Get implements Backend
func (b *MemoryBackend) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[key]
	return v, ok, nil
}

// Set implements Backend
func (b *MemoryBackend) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = value
	return nil
}

// Close implements Backend
func (b *MemoryBackend) Close() error { return nil }
