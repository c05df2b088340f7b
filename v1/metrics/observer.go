package metrics

import (
	"github.com/cipworks/common/v1/observability"
)

// DatabaseObserver bridges database operation events into the built-in
// Prometheus series. Attach it to a backend via WithObserver and every
// statement updates queries_total, query_duration_seconds and the pool
// gauges.
type DatabaseObserver struct {
	m *Metrics
}

// NewDatabaseObserver creates an observer feeding the given Metrics.
func NewDatabaseObserver(m *Metrics) *DatabaseObserver {
	return &DatabaseObserver{m: m}
}

// ObserveOperation implements observability.Observer.
func (o *DatabaseObserver) ObserveOperation(op observability.OperationContext) {
	switch op.Operation {
	case "select", "exec", "exec_returning":
		status := "success"
		if op.Error != nil {
			status = "error"
		}
		o.m.ObserveQuery(op.Component, op.Operation, status, op.Duration)
	}

	available, okAvailable := intMetadata(op.Metadata, "pool_available")
	borrowed, okBorrowed := intMetadata(op.Metadata, "pool_borrowed")
	if okAvailable && okBorrowed {
		o.m.SetPoolGauges(op.Component, op.Resource, available, borrowed)
	}
}

func intMetadata(metadata map[string]interface{}, key string) (int, bool) {
	if metadata == nil {
		return 0, false
	}
	switch v := metadata[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	}
	return 0, false
}
