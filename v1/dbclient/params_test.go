package dbclient

import (
	"testing"
	"time"
)

func TestValueClassification(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	cases := []struct {
		name string
		in   interface{}
		want ParamKind
	}{
		{"nil", nil, KindNull},
		{"string", "hello", KindText},
		{"bool", true, KindBool},
		{"int", 42, KindInt},
		{"int64", int64(42), KindInt},
		{"uint32", uint32(7), KindInt},
		{"float64", 3.14, KindFloat},
		{"float32", float32(1.5), KindFloat},
		{"time", ts, KindTimestamp},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Value(tc.in)
			if err != nil {
				t.Fatalf("Value(%v) returned error: %v", tc.in, err)
			}
			if p.Kind != tc.want {
				t.Errorf("Value(%v) kind = %v, want %v", tc.in, p.Kind, tc.want)
			}
		})
	}
}

func TestValueRejectsUnsupportedTypes(t *testing.T) {
	if _, err := Value(struct{}{}); err == nil {
		t.Error("Value(struct{}{}) should return an error")
	}
	if _, err := Value([]string{"a"}); err == nil {
		t.Error("Value([]string) should return an error")
	}
}

func TestValuePassesParamThrough(t *testing.T) {
	in := Date(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	p, err := Value(in)
	if err != nil {
		t.Fatalf("Value(Param) returned error: %v", err)
	}
	if p.Kind != KindDate {
		t.Errorf("Value(Param) kind = %v, want KindDate", p.Kind)
	}
}

func TestValuesStopsAtFirstBadValue(t *testing.T) {
	_, err := Values("ok", 1, make(chan int))
	if err == nil {
		t.Fatal("Values should fail on unsupported value")
	}
}

func TestNative(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	if got := Text("x").Native(); got != "x" {
		t.Errorf("Text.Native() = %v", got)
	}
	if got := Int(5).Native(); got != int64(5) {
		t.Errorf("Int.Native() = %v", got)
	}
	if got := Float(2.5).Native(); got != 2.5 {
		t.Errorf("Float.Native() = %v", got)
	}
	if got := Bool(true).Native(); got != true {
		t.Errorf("Bool.Native() = %v", got)
	}
	if got := Timestamp(ts).Native(); got != ts {
		t.Errorf("Timestamp.Native() = %v", got)
	}
	if got := Null().Native(); got != nil {
		t.Errorf("Null.Native() = %v, want nil", got)
	}
}
