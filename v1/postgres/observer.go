package postgres

import (
	"time"

	"github.com/cipworks/common/v1/observability"
)

// observeOperation notifies the observer about an operation if one is
// configured.
//
// Notes:
//   - resource: the pool identity the statement ran against
//   - subResource: the connection mode ("auto" or "held")
func (p *Postgres) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64, metadata map[string]interface{}) {
	if p == nil || p.observer == nil {
		return
	}

	p.observer.ObserveOperation(observability.OperationContext{
		Component:   "postgres",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
		Metadata:    metadata,
	})
}
