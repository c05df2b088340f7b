package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrQueueEmpty is returned by Pop when the queue holds no message.
var ErrQueueEmpty = errors.New("state: queue is empty")

// Queue is a Redis-backed FIFO used to hand work between processes.
// Producers LPUSH, consumers RPOP, so messages come out in arrival order.
type Queue struct {
	client *redis.Client
	key    string
}

// NewQueue creates a queue named name in the manager's namespace, sharing
// its Redis connection.
func NewQueue(m *RedisManager, name string) *Queue {
	return &Queue{
		client: m.client,
		key:    m.namespaced("queue:" + name),
	}
}

// Push appends a message to the queue.
func (q *Queue) Push(ctx context.Context, message string) error {
	return q.client.LPush(ctx, q.key, message).Err()
}

// Pop removes and returns the oldest message. Returns ErrQueueEmpty when
// the queue holds none.
func (q *Queue) Pop(ctx context.Context) (string, error) {
	v, err := q.client.RPop(ctx, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrQueueEmpty
	}
	return v, err
}

// PopBlocking waits up to timeout for a message. Returns ErrQueueEmpty when
// the wait times out.
func (q *Queue) PopBlocking(ctx context.Context, timeout time.Duration) (string, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrQueueEmpty
	}
	if err != nil {
		return "", err
	}
	if len(res) != 2 {
		return "", fmt.Errorf("state: unexpected BRPOP reply of %d elements", len(res))
	}
	return res[1], nil
}

// Length returns the number of queued messages.
func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

// Range returns queued messages without removing them, oldest first.
// Indexes follow LRANGE semantics, so Range(ctx, 0, -1) returns everything.
func (q *Queue) Range(ctx context.Context, start, stop int64) ([]string, error) {
	messages, err := q.client.LRange(ctx, q.key, start, stop).Result()
	if err != nil {
		return nil, err
	}
	// LPUSH stores newest first; present arrival order instead.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// Clear drops every queued message.
func (q *Queue) Clear(ctx context.Context) error {
	return q.client.Del(ctx, q.key).Err()
}
