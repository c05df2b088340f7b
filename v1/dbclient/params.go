package dbclient

import (
	"fmt"
	"time"
)

// ParamKind tags the variant carried by a Param.
type ParamKind int

const (
	// KindNull is the SQL NULL value.
	KindNull ParamKind = iota

	// KindText is a string value.
	KindText

	// KindInt is a signed integer value.
	KindInt

	// KindFloat is a floating point value.
	KindFloat

	// KindBool is a boolean value. The sqlite backend stores it as 0/1.
	KindBool

	// KindTimestamp is a point in time with sub-second precision.
	KindTimestamp

	// KindDate is a calendar date; the time-of-day part is ignored.
	KindDate
)

// Param is a tagged query parameter. Exactly one field besides Kind is
// meaningful, selected by Kind. Backends render a Param into their driver
// representation, so temporal formatting and boolean mapping are decided per
// engine rather than by the caller.
type Param struct {
	Kind  ParamKind
	Str   string
	Int64 int64
	F64   float64
	B     bool
	Time  time.Time
}

// Null returns the SQL NULL parameter.
func Null() Param { return Param{Kind: KindNull} }

// Text returns a string parameter.
func Text(v string) Param { return Param{Kind: KindText, Str: v} }

// Int returns an integer parameter.
func Int(v int64) Param { return Param{Kind: KindInt, Int64: v} }

// Float returns a floating point parameter.
func Float(v float64) Param { return Param{Kind: KindFloat, F64: v} }

// Bool returns a boolean parameter.
func Bool(v bool) Param { return Param{Kind: KindBool, B: v} }

// Timestamp returns a point-in-time parameter.
func Timestamp(v time.Time) Param { return Param{Kind: KindTimestamp, Time: v} }

// Date returns a calendar date parameter.
func Date(v time.Time) Param { return Param{Kind: KindDate, Time: v} }

// Value converts an arbitrary Go value into a Param. It accepts the types a
// JSON decoder or generic ingestion path produces: nil, string, bool, the
// integer and float families, time.Time and Param itself. Unsupported types
// return an error instead of being passed through untyped.
func Value(v interface{}) (Param, error) {
	switch val := v.(type) {
	case nil:
		return Null(), nil
	case Param:
		return val, nil
	case string:
		return Text(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(int64(val)), nil
	case int8:
		return Int(int64(val)), nil
	case int16:
		return Int(int64(val)), nil
	case int32:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil
	case uint:
		return Int(int64(val)), nil
	case uint8:
		return Int(int64(val)), nil
	case uint16:
		return Int(int64(val)), nil
	case uint32:
		return Int(int64(val)), nil
	case float32:
		return Float(float64(val)), nil
	case float64:
		return Float(val), nil
	case time.Time:
		return Timestamp(val), nil
	default:
		return Param{}, fmt.Errorf("dbclient: unsupported parameter type %T", v)
	}
}

// Values converts a list of arbitrary Go values into Params.
// It stops at the first unsupported value.
func Values(vs ...interface{}) ([]Param, error) {
	params := make([]Param, 0, len(vs))
	for i, v := range vs {
		p, err := Value(v)
		if err != nil {
			return nil, fmt.Errorf("dbclient: parameter %d: %w", i, err)
		}
		params = append(params, p)
	}
	return params, nil
}

// Native returns the parameter as the Go value a database driver binds
// directly: nil, string, int64, float64, bool or time.Time. Backends that
// need engine-specific rendering (such as sqlite's temporal strings) apply
// it on top of this.
func (p Param) Native() interface{} {
	switch p.Kind {
	case KindText:
		return p.Str
	case KindInt:
		return p.Int64
	case KindFloat:
		return p.F64
	case KindBool:
		return p.B
	case KindTimestamp, KindDate:
		return p.Time
	default:
		return nil
	}
}
