package state

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by Get and GetJSON when the key is absent.
var ErrKeyNotFound = errors.New("state: key not found")

// IsKeyNotFound checks if the error is a "key does not exist" error.
func IsKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}

// Manager is the shared state-store contract.
//
// Implemented by *MemoryManager and *RedisManager. All methods are safe for
// concurrent use.
type Manager interface {
	// Get retrieves the value for key. Returns ErrKeyNotFound when the
	// key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// GetJSON retrieves the value for key and unmarshals it into dest.
	GetJSON(ctx context.Context, key string, dest interface{}) error

	// SetJSON marshals value and stores it under key.
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// UpdateChanges stores value under key only when it differs from the
	// stored value. Reports whether a write happened.
	UpdateChanges(ctx context.Context, key, value string) (bool, error)

	// Delete removes the given keys and reports how many existed.
	Delete(ctx context.Context, keys ...string) (int64, error)

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Increment adds delta to the integer stored under key, creating it
	// at zero when absent, and returns the new value.
	Increment(ctx context.Context, key string, delta int64) (int64, error)

	// Decrement subtracts delta from the integer stored under key,
	// creating it at zero when absent, and returns the new value.
	Decrement(ctx context.Context, key string, delta int64) (int64, error)

	// GetAll returns every key and value in this store's namespace.
	// Keys are returned without the namespace prefix.
	GetAll(ctx context.Context) (map[string]string, error)

	// Clear removes every key in this store's namespace.
	Clear(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}
