package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cipworks/common/v1/observability"
)

// RedisManager is the Redis-backed implementation of Manager. Every key is
// prefixed with the configured namespace.
//
// RedisManager implements the Manager interface.
type RedisManager struct {
	client    *redis.Client
	namespace string

	// observer provides optional observability hooks
	observer observability.Observer
}

// NewRedisManager creates a Redis-backed state store and validates the
// connection with a ping.
//
// Returns *RedisManager concrete type (following Go best practice: "accept
// interfaces, return structs").
func NewRedisManager(cfg RedisConfig) (*RedisManager, error) {
	cfg.applyDefaults()

	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
		ReadTimeout: cfg.ReadTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("state: failed to connect to redis at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return &RedisManager{
		client:    client,
		namespace: cfg.Namespace,
	}, nil
}

// namespaced prefixes a key with the manager's namespace.
func (r *RedisManager) namespaced(key string) string {
	return r.namespace + ":" + key
}

// Get retrieves the value for key. Returns ErrKeyNotFound when absent.
func (r *RedisManager) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()
	v, err := r.client.Get(ctx, r.namespaced(key)).Result()
	if errors.Is(err, redis.Nil) {
		r.observeOperation("get", key, time.Since(start), ErrKeyNotFound, 0)
		return "", ErrKeyNotFound
	}
	r.observeOperation("get", key, time.Since(start), err, int64(len(v)))
	return v, err
}

// Set stores value under key. A ttl of 0 means no expiry.
func (r *RedisManager) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	start := time.Now()
	err := r.client.Set(ctx, r.namespaced(key), value, ttl).Err()
	r.observeOperation("set", key, time.Since(start), err, int64(len(value)))
	return err
}

// GetJSON retrieves the value for key and unmarshals it into dest.
func (r *RedisManager) GetJSON(ctx context.Context, key string, dest interface{}) error {
	v, err := r.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(v), dest)
}

// SetJSON marshals value and stores it under key.
func (r *RedisManager) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.Set(ctx, key, string(data), ttl)
}

// UpdateChanges stores value only when it differs from the stored value.
// The read and write are not atomic; last writer wins, which is acceptable
// for the liveness flags this is used for.
func (r *RedisManager) UpdateChanges(ctx context.Context, key, value string) (bool, error) {
	current, err := r.Get(ctx, key)
	if err != nil && !IsKeyNotFound(err) {
		return false, err
	}
	if err == nil && current == value {
		return false, nil
	}
	if err := r.Set(ctx, key, value, 0); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the given keys and reports how many existed.
func (r *RedisManager) Delete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	namespaced := make([]string, len(keys))
	for i, k := range keys {
		namespaced[i] = r.namespaced(k)
	}
	start := time.Now()
	n, err := r.client.Del(ctx, namespaced...).Result()
	r.observeOperation("delete", keys[0], time.Since(start), err, n)
	return n, err
}

// Exists reports whether key is present.
func (r *RedisManager) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.namespaced(key)).Result()
	return n > 0, err
}

// Increment adds delta to the integer stored under key.
func (r *RedisManager) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	return r.client.IncrBy(ctx, r.namespaced(key), delta).Result()
}

// Decrement subtracts delta from the integer stored under key.
func (r *RedisManager) Decrement(ctx context.Context, key string, delta int64) (int64, error) {
	return r.client.DecrBy(ctx, r.namespaced(key), delta).Result()
}

// GetAll returns every key and value in the namespace. Keys are SCANned
// rather than KEYS'd so large databases are not blocked.
func (r *RedisManager) GetAll(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string)
	prefix := r.namespace + ":"

	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		full := iter.Val()
		v, err := r.client.Get(ctx, full).Result()
		if errors.Is(err, redis.Nil) {
			continue // expired between scan and get
		}
		if err != nil {
			return nil, err
		}
		out[strings.TrimPrefix(full, prefix)] = v
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Clear removes every key in the namespace.
func (r *RedisManager) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.namespace+":*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= 100 {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return r.client.Del(ctx, batch...).Err()
	}
	return nil
}

// Close releases the underlying Redis client.
func (r *RedisManager) Close() error {
	return r.client.Close()
}

// Ping checks if the Redis server is reachable and responsive.
func (r *RedisManager) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
