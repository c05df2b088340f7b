package state

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"
)

// MemoryManager is the in-process implementation of Manager. Values live in
// a private map; TTLs are honored lazily on access.
//
// MemoryManager implements the Manager interface.
type MemoryManager struct {
	mu      sync.RWMutex
	values  map[string]string
	expires map[string]time.Time
}

// NewMemoryManager creates an empty in-process state store.
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		values:  make(map[string]string),
		expires: make(map[string]time.Time),
	}
}

// expired reports whether key has a passed deadline. Caller holds the lock.
func (m *MemoryManager) expired(key string) bool {
	deadline, ok := m.expires[key]
	return ok && time.Now().After(deadline)
}

// Get retrieves the value for key. Returns ErrKeyNotFound when absent.
func (m *MemoryManager) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.expired(key) {
		return "", ErrKeyNotFound
	}
	v, ok := m.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

// Set stores value under key. A ttl of 0 means no expiry.
func (m *MemoryManager) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	if ttl > 0 {
		m.expires[key] = time.Now().Add(ttl)
	} else {
		delete(m.expires, key)
	}
	return nil
}

// GetJSON retrieves the value for key and unmarshals it into dest.
func (m *MemoryManager) GetJSON(ctx context.Context, key string, dest interface{}) error {
	v, err := m.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(v), dest)
}

// SetJSON marshals value and stores it under key.
func (m *MemoryManager) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return m.Set(ctx, key, string(data), ttl)
}

// UpdateChanges stores value only when it differs from the stored value.
func (m *MemoryManager) UpdateChanges(ctx context.Context, key, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.values[key]; ok && !m.expired(key) && current == value {
		return false, nil
	}
	m.values[key] = value
	delete(m.expires, key)
	return true, nil
}

// Delete removes the given keys and reports how many existed.
func (m *MemoryManager) Delete(ctx context.Context, keys ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for _, key := range keys {
		if _, ok := m.values[key]; ok && !m.expired(key) {
			removed++
		}
		delete(m.values, key)
		delete(m.expires, key)
	}
	return removed, nil
}

// Exists reports whether key is present.
func (m *MemoryManager) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.expired(key) {
		return false, nil
	}
	_, ok := m.values[key]
	return ok, nil
}

// Increment adds delta to the integer stored under key.
func (m *MemoryManager) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var current int64
	if v, ok := m.values[key]; ok && !m.expired(key) {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, err
		}
		current = parsed
	}
	current += delta
	m.values[key] = strconv.FormatInt(current, 10)
	delete(m.expires, key)
	return current, nil
}

// Decrement subtracts delta from the integer stored under key.
func (m *MemoryManager) Decrement(ctx context.Context, key string, delta int64) (int64, error) {
	return m.Increment(ctx, key, -delta)
}

// GetAll returns every live key and value.
func (m *MemoryManager) GetAll(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		if m.expired(k) {
			continue
		}
		out[k] = v
	}
	return out, nil
}

// Clear removes every key.
func (m *MemoryManager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values = make(map[string]string)
	m.expires = make(map[string]time.Time)
	return nil
}

// Close is a no-op for the in-process store.
func (m *MemoryManager) Close() error { return nil }
