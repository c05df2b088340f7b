package state

import (
	"time"

	"github.com/cipworks/common/v1/observability"
)

// WithObserver sets the observer and returns the manager for chaining.
func (r *RedisManager) WithObserver(observer observability.Observer) *RedisManager {
	r.observer = observer
	return r
}

// observeOperation notifies the observer about an operation if one is configured.
//
// Notes:
//   - resource: the state key being operated on (without namespace)
func (r *RedisManager) observeOperation(operation, resource string, duration time.Duration, err error, size int64) {
	if r == nil || r.observer == nil {
		return
	}

	r.observer.ObserveOperation(observability.OperationContext{
		Component: "state",
		Operation: operation,
		Resource:  resource,
		Duration:  duration,
		Error:     err,
		Size:      size,
	})
}
