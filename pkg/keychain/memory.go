package keychain

import (
	"sync"
)

// Memory is an in-process keychain. Values do not survive a restart.
type Memory struct {
	items map[string]map[string]string
	mu    sync.RWMutex
}

// NewMemory creates an empty in-memory keychain.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]map[string]string)}
}

// Get returns the value stored under key.
func (m *Memory) Get(service, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[service][key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key.
func (m *Memory) Set(service, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	svc, ok := m.items[service]
	if !ok {
		svc = make(map[string]string)
		m.items[service] = svc
	}
	svc[key] = value
	return nil
}

// Delete removes key.
func (m *Memory) Delete(service, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if svc, ok := m.items[service]; ok {
		delete(svc, key)
		if len(svc) == 0 {
			delete(m.items, service)
		}
	}
	return nil
}

// Services returns the number of services holding at least one item.
func (m *Memory) Services() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

var _ Keychain = (*Memory)(nil)
