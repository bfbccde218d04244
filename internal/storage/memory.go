package storage

import (
	"context"
	"sync"
)

// Memory keeps everything in process. It is the default driver and the one
// used by tests.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string]string)}
}

func (m *Memory) Get(_ context.Context, ns, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[ns][key]
	return v, ok, nil
}

func (m *Memory) SetMany(_ context.Context, ns string, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.data[ns]
	if !ok {
		bucket = make(map[string]string, len(values))
		m.data[ns] = bucket
	}
	for k, v := range values {
		bucket[k] = v
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, ns string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.data[ns]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(bucket, k)
	}
	if len(bucket) == 0 {
		delete(m.data, ns)
	}
	return nil
}
