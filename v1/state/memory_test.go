package state

import (
	"context"
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()

	if _, err := m.Get(ctx, "missing"); !IsKeyNotFound(err) {
		t.Errorf("Get(missing) error = %v, want ErrKeyNotFound", err)
	}

	if err := m.Set(ctx, KeyActiveRunID, "42", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := m.Get(ctx, KeyActiveRunID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "42" {
		t.Errorf("Get = %q, want 42", v)
	}
}

func TestMemoryTTLExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()

	if err := m.Set(ctx, "ephemeral", "x", 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ok, _ := m.Exists(ctx, "ephemeral"); !ok {
		t.Fatal("key should exist before expiry")
	}

	time.Sleep(20 * time.Millisecond)
	if _, err := m.Get(ctx, "ephemeral"); !IsKeyNotFound(err) {
		t.Errorf("Get after expiry error = %v, want ErrKeyNotFound", err)
	}
	if ok, _ := m.Exists(ctx, "ephemeral"); ok {
		t.Error("Exists after expiry should be false")
	}
}

func TestMemoryUpdateChanges(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()

	changed, err := m.UpdateChanges(ctx, KeyGatewayOnline, "1")
	if err != nil || !changed {
		t.Fatalf("first UpdateChanges = (%v, %v), want (true, nil)", changed, err)
	}

	changed, err = m.UpdateChanges(ctx, KeyGatewayOnline, "1")
	if err != nil || changed {
		t.Errorf("same-value UpdateChanges = (%v, %v), want (false, nil)", changed, err)
	}

	changed, err = m.UpdateChanges(ctx, KeyGatewayOnline, "0")
	if err != nil || !changed {
		t.Errorf("new-value UpdateChanges = (%v, %v), want (true, nil)", changed, err)
	}
}

func TestMemoryIncrementDecrement(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()

	n, err := m.Increment(ctx, KeyMessageCount, 1)
	if err != nil || n != 1 {
		t.Fatalf("Increment from absent = (%d, %v), want (1, nil)", n, err)
	}
	n, _ = m.Increment(ctx, KeyMessageCount, 4)
	if n != 5 {
		t.Errorf("Increment = %d, want 5", n)
	}
	n, _ = m.Decrement(ctx, KeyMessageCount, 2)
	if n != 3 {
		t.Errorf("Decrement = %d, want 3", n)
	}

	if err := m.Set(ctx, "text", "abc", 0); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Increment(ctx, "text", 1); err == nil {
		t.Error("Increment on a non-integer value should fail")
	}
}

func TestMemoryDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()

	_ = m.Set(ctx, "a", "1", 0)
	_ = m.Set(ctx, "b", "2", 0)

	removed, err := m.Delete(ctx, "a", "b", "missing")
	if err != nil || removed != 2 {
		t.Errorf("Delete = (%d, %v), want (2, nil)", removed, err)
	}

	_ = m.Set(ctx, "c", "3", 0)
	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	all, _ := m.GetAll(ctx)
	if len(all) != 0 {
		t.Errorf("GetAll after Clear = %v, want empty", all)
	}
}

func TestMemoryJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()

	type runMarker struct {
		ID      int64  `json:"id"`
		Station string `json:"station"`
	}

	in := runMarker{ID: 7, Station: "st-01"}
	if err := m.SetJSON(ctx, "run", in, 0); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	var out runMarker
	if err := m.GetJSON(ctx, "run", &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}

	if err := m.GetJSON(ctx, "missing", &out); !IsKeyNotFound(err) {
		t.Errorf("GetJSON(missing) error = %v, want ErrKeyNotFound", err)
	}
}

func TestMemoryGetAll(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()

	_ = m.Set(ctx, "a", "1", 0)
	_ = m.Set(ctx, "b", "2", 0)
	_ = m.Set(ctx, "gone", "3", time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	all, err := m.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 2 || all["a"] != "1" || all["b"] != "2" {
		t.Errorf("GetAll = %v", all)
	}
}

func TestKeyBuilders(t *testing.T) {
	if got := RunKey(42); got != "run:42" {
		t.Errorf("RunKey(42) = %q", got)
	}
	if got := StepKey(42, 7); got != "step:42:7" {
		t.Errorf("StepKey(42, 7) = %q", got)
	}
}

func TestFlattenRestoreList(t *testing.T) {
	in := []string{"gw-01", "gw-02", "value, with comma"}
	restored := RestoreList(FlattenList(in))
	if len(restored) != len(in) {
		t.Fatalf("restored %d items, want %d", len(restored), len(in))
	}
	for i := range in {
		if restored[i] != in[i] {
			t.Errorf("restored[%d] = %q, want %q", i, restored[i], in[i])
		}
	}

	if RestoreList("") != nil {
		t.Error("RestoreList of empty value should be nil")
	}
}
