package ingest

import (
	"time"

	"github.com/cipworks/common/v1/observability"
)

// observeOperation notifies the observer about an operation if one is
// configured. This is used internally to track consume and store
// operations for metrics.
func (c *Consumer) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64) {
	if c.observer != nil {
		c.observer.ObserveOperation(observability.OperationContext{
			Component:   "ingest",
			Operation:   operation,
			Resource:    resource,
			SubResource: subResource,
			Duration:    duration,
			Error:       err,
			Size:        size,
			Metadata:    nil,
		})
	}
}
