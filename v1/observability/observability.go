// Package observability defines the shared observer hook used by the client
// packages in this module.
//
// Client packages (postgres, sqlite, state, ingest) accept an optional
// Observer and report every operation they perform through it. This keeps the
// clients decoupled from any concrete metrics or tracing implementation: the
// application decides what to do with the events, typically by installing the
// metrics package's bridge.
//
// # Usage
//
//	type logObserver struct{}
//
//	func (logObserver) ObserveOperation(op observability.OperationContext) {
//	    log.Printf("%s.%s on %s took %s", op.Component, op.Operation, op.Resource, op.Duration)
//	}
//
//	client = client.WithObserver(logObserver{})
package observability

import "time"

// OperationContext carries everything an observer needs to know about a
// single completed operation.
type OperationContext struct {
	// Component identifies the emitting package, for example "postgres",
	// "sqlite", "state" or "ingest".
	Component string

	// Operation is the operation name, for example "select", "exec",
	// "exec_returning", "get" or "consume".
	Operation string

	// Resource is the primary target of the operation. For database
	// operations this is the pool identity, for state operations the key.
	Resource string

	// SubResource carries additional context, such as the execution mode
	// or a routing key. May be empty.
	SubResource string

	// Duration is how long the operation took.
	Duration time.Duration

	// Error is the error the operation returned, or nil on success.
	Error error

	// Size is an operation-specific magnitude: rows returned, rows
	// affected or payload bytes. Zero when not applicable.
	Size int64

	// Metadata holds operation-specific details. May be nil.
	Metadata map[string]interface{}
}

// Observer receives operation events from the client packages.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveOperation(op OperationContext)
}
