// Package timeutil converts the loose timestamp formats seen in gateway
// payloads into time.Time values.
//
// Numeric timestamps are Unix epochs, in seconds or milliseconds. The two
// are told apart by magnitude, anything above 1e12 is milliseconds.
// String timestamps are tried against ISO 8601 layouts with and without
// timezone. All results are in UTC.
package timeutil

import (
	"time"
)

// millisecondThreshold separates Unix seconds from Unix milliseconds.
// 1e12 seconds is the year 33658, 1e12 milliseconds is 2001.
const millisecondThreshold = 1e12

var stringLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func fromUnixFloat(v float64) time.Time {
	if v > millisecondThreshold {
		v /= 1000
	}
	sec := int64(v)
	nsec := int64((v - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}

// ToTimestamp converts a payload value to a time.Time. Supported inputs
// are time.Time, integer and float Unix timestamps in seconds or
// milliseconds, and ISO 8601 strings. The second return value is false
// when the input cannot be interpreted.
func ToTimestamp(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, true
	case int:
		return fromUnixFloat(float64(t)), true
	case int64:
		return fromUnixFloat(float64(t)), true
	case float64:
		return fromUnixFloat(t), true
	case string:
		for _, layout := range stringLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.UTC(), true
			}
		}
		return time.Time{}, false
	}
	return time.Time{}, false
}

// Gap returns the whole seconds from a to b. The second return value is
// false when either input cannot be interpreted as a timestamp.
func Gap(a, b interface{}) (int64, bool) {
	t1, ok := ToTimestamp(a)
	if !ok {
		return 0, false
	}
	t2, ok := ToTimestamp(b)
	if !ok {
		return 0, false
	}
	return int64(t2.Sub(t1).Seconds()), true
}
