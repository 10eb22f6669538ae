// Package codec converts Go values that have no JSON form of their own into
// JSON-representable values. The root ejson package uses it from its
// default encoder.
package codec

import (
	"time"
)

// FormatTime renders t in canonical RFC 3339 form: UTC, with fractional
// seconds only when non-zero (Go trims trailing zeros).
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTime accepts RFC3339Nano and plain RFC3339 strings.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

// Encode converts the well-known value types handled by this package. The
// boolean result is false when v is not one of them.
func Encode(v any) (any, bool) {
	switch x := v.(type) {
	case time.Time:
		return FormatTime(x), true
	case *time.Time:
		if x == nil {
			return nil, true
		}
		return FormatTime(*x), true
	case time.Duration:
		return x.String(), true
	case time.Weekday:
		return x.String(), true
	case time.Month:
		return x.String(), true
	}
	return nil, false
}
