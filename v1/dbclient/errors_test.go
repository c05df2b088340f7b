package dbclient

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	wrapped := fmt.Errorf("op failed: %w", ErrPoolExhausted)
	if !IsPoolExhausted(wrapped) {
		t.Error("IsPoolExhausted should match a wrapped ErrPoolExhausted")
	}
	if IsPoolExhausted(ErrNotConnected) {
		t.Error("IsPoolExhausted should not match ErrNotConnected")
	}
	if !IsNotConnected(ErrNotConnected) {
		t.Error("IsNotConnected should match ErrNotConnected")
	}
}

func TestPoolCreationErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := &PoolCreationError{Identity: "localhost:5432/cipdb@cipuser", Err: cause}

	if !IsPoolCreation(err) {
		t.Error("IsPoolCreation should match PoolCreationError")
	}
	if !errors.Is(err, cause) {
		t.Error("PoolCreationError should unwrap to its cause")
	}
	if IsQueryExecution(err) {
		t.Error("IsQueryExecution should not match PoolCreationError")
	}
}

func TestQueryExecutionErrorUnwraps(t *testing.T) {
	cause := errors.New("syntax error")
	err := &QueryExecutionError{Query: "SELECT 1", Err: cause}

	if !IsQueryExecution(err) {
		t.Error("IsQueryExecution should match QueryExecutionError")
	}
	if !errors.Is(err, cause) {
		t.Error("QueryExecutionError should unwrap to its cause")
	}

	var qee *QueryExecutionError
	if !errors.As(err, &qee) || qee.Query != "SELECT 1" {
		t.Error("QueryExecutionError should carry the original query text")
	}
}
