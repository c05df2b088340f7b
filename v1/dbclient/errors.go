package dbclient

import (
	"errors"
	"fmt"
)

// Common client errors shared by all backends.
var (
	// ErrPoolExhausted is returned when every connection in the pool is
	// borrowed. The pool fails fast instead of queueing the caller.
	ErrPoolExhausted = errors.New("dbclient: connection pool exhausted")

	// ErrNotConnected is returned when a call opts into the held
	// connection but no Connect preceded it.
	ErrNotConnected = errors.New("dbclient: no held connection, call Connect first")
)

// PoolCreationError indicates that a connection pool could not be
// established for a backend. It wraps the underlying driver error.
type PoolCreationError struct {
	// Identity is the pool identity the creation was attempted for,
	// for example "localhost:5432/cipdb@cipuser" or a sqlite file path.
	Identity string

	// Err is the underlying driver error.
	Err error
}

func (e *PoolCreationError) Error() string {
	return fmt.Sprintf("dbclient: failed to create pool for %s: %v", e.Identity, e.Err)
}

func (e *PoolCreationError) Unwrap() error { return e.Err }

// QueryExecutionError indicates that a statement failed to execute.
// It wraps the underlying driver error and carries the statement text.
type QueryExecutionError struct {
	// Query is the statement as submitted by the caller, before any
	// dialect translation.
	Query string

	// Err is the underlying driver error.
	Err error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("dbclient: query execution failed: %v", e.Err)
}

func (e *QueryExecutionError) Unwrap() error { return e.Err }

// IsPoolExhausted checks if the error indicates an exhausted pool.
func IsPoolExhausted(err error) bool {
	return errors.Is(err, ErrPoolExhausted)
}

// IsNotConnected checks if the error indicates a missing held connection.
func IsNotConnected(err error) bool {
	return errors.Is(err, ErrNotConnected)
}

// IsPoolCreation checks if the error is a pool creation failure.
func IsPoolCreation(err error) bool {
	var pce *PoolCreationError
	return errors.As(err, &pce)
}

// IsQueryExecution checks if the error is a statement execution failure.
func IsQueryExecution(err error) bool {
	var qee *QueryExecutionError
	return errors.As(err, &qee)
}
