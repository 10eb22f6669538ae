package records

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/reoring/ejson"
	"github.com/reoring/ejson/codec"
	eng "github.com/reoring/ejson/internal/engine"
)

// step is one element of a path. Bracketed steps ("[0]") always address
// array elements; dotted digit steps ("a.0") address an element when the
// value at hand is an array and a key otherwise.
type step struct {
	name  string
	index int
	// bracket marks an explicit "[n]" subscript.
	bracket bool
}

func (s step) numeric() bool { return s.index >= 0 }

// parsePath splits "a.b[0].c" and "a.b.0.c" into steps.
func parsePath(path string) ([]step, error) {
	if path == "" {
		return nil, nil
	}
	var steps []step
	for _, piece := range strings.Split(path, ".") {
		name, rest, _ := strings.Cut(piece, "[")
		if name == "" && rest == "" {
			return nil, ejson.NewIssue(ejson.CodeInvalidArgument, "", "empty path segment in "+strconv.Quote(path))
		}
		if name != "" {
			idx := -1
			if n, err := strconv.Atoi(name); err == nil && n >= 0 && isDigits(name) {
				idx = n
			}
			steps = append(steps, step{name: name, index: idx})
		}
		if !strings.Contains(piece, "[") {
			continue
		}
		for sub := "[" + rest; sub != ""; {
			end := strings.IndexByte(sub, ']')
			if sub[0] != '[' || end < 0 {
				return nil, ejson.NewIssue(ejson.CodeInvalidArgument, "", "malformed subscript in "+strconv.Quote(path))
			}
			n, err := strconv.Atoi(sub[1:end])
			if err != nil || n < 0 {
				return nil, ejson.NewIssue(ejson.CodeInvalidArgument, "", "bad index "+strconv.Quote(sub[1:end])+" in "+strconv.Quote(path))
			}
			steps = append(steps, step{name: sub[1:end], index: n, bracket: true})
			sub = sub[end+1:]
		}
	}
	return steps, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// Get returns the value at path under v. A malformed path, a missing key
// and an out-of-range index all report false.
func Get(v any, path string) (any, bool) {
	steps, err := parsePath(path)
	if err != nil {
		return nil, false
	}
	cur := v
	for _, s := range steps {
		switch x := cur.(type) {
		case map[string]any:
			if s.bracket {
				return nil, false
			}
			next, ok := x[s.name]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			if !s.numeric() || s.index >= len(x) {
				return nil, false
			}
			cur = x[s.index]
		default:
			return nil, false
		}
	}
	return cur, true
}

// String returns the string at path.
func String(v any, path string) (string, bool) {
	x, ok := Get(v, path)
	if !ok {
		return "", false
	}
	s, ok := x.(string)
	return s, ok
}

// Int returns the integer at path. Floats qualify only when integral.
func Int(v any, path string) (int64, bool) {
	x, ok := Get(v, path)
	if !ok {
		return 0, false
	}
	switch n := x.(type) {
	case float64:
		return integral(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return integral(f)
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

// integral converts f when it is a whole number inside the int64 range.
// The upper bound is 2^63 itself, which int64 cannot hold.
func integral(f float64) (int64, bool) {
	if f != math.Trunc(f) || f >= 0x1p63 || f < -0x1p63 {
		return 0, false
	}
	return int64(f), true
}

// Float returns the number at path.
func Float(v any, path string) (float64, bool) {
	x, ok := Get(v, path)
	if !ok {
		return 0, false
	}
	switch n := x.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Bool returns the boolean at path.
func Bool(v any, path string) (bool, bool) {
	x, ok := Get(v, path)
	if !ok {
		return false, false
	}
	b, ok := x.(bool)
	return b, ok
}

// Time reads an RFC 3339 string, the form the default encoder writes
// time.Time values in. A time.Time stored directly is returned as is.
func Time(v any, path string) (time.Time, bool) {
	x, ok := Get(v, path)
	if !ok {
		return time.Time{}, false
	}
	switch t := x.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := codec.ParseTime(t)
		return parsed, err == nil
	}
	return time.Time{}, false
}

func StringOr(v any, path, def string) string {
	if s, ok := String(v, path); ok {
		return s
	}
	return def
}

func IntOr(v any, path string, def int64) int64 {
	if n, ok := Int(v, path); ok {
		return n
	}
	return def
}

func FloatOr(v any, path string, def float64) float64 {
	if f, ok := Float(v, path); ok {
		return f
	}
	return def
}

func BoolOr(v any, path string, def bool) bool {
	if b, ok := Bool(v, path); ok {
		return b
	}
	return def
}

// Set stores v at path inside r, creating intermediate records, or arrays
// where the next step is numeric. Arrays grow with nil padding. Walking
// through a scalar is a conflict issue.
func Set(r ejson.Record, path string, v any) error {
	steps, err := parsePath(path)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		return ejson.NewIssue(ejson.CodeInvalidArgument, "", "empty path")
	}
	if steps[0].bracket {
		return ejson.NewIssue(ejson.CodeInvalidType, "", "record root cannot be indexed")
	}
	_, err = set(r, steps, v, "")
	return err
}

func set(cur any, steps []step, v any, at string) (any, error) {
	if len(steps) == 0 {
		return v, nil
	}
	s := steps[0]
	if cur == nil {
		if s.numeric() {
			cur = []any{}
		} else {
			cur = map[string]any{}
		}
	}
	here := eng.JoinJSONPointer(at, s.name)
	switch x := cur.(type) {
	case map[string]any:
		if s.bracket {
			return nil, ejson.NewIssue(ejson.CodeConflict, orRoot(at), "object addressed with an index")
		}
		next, err := set(x[s.name], steps[1:], v, here)
		if err != nil {
			return nil, err
		}
		x[s.name] = next
		return x, nil
	case []any:
		if !s.numeric() {
			return nil, ejson.NewIssue(ejson.CodeConflict, orRoot(at), "array addressed with key "+strconv.Quote(s.name))
		}
		for len(x) <= s.index {
			x = append(x, nil)
		}
		next, err := set(x[s.index], steps[1:], v, here)
		if err != nil {
			return nil, err
		}
		x[s.index] = next
		return x, nil
	}
	return nil, ejson.NewIssue(ejson.CodeConflict, orRoot(at), "cannot descend into a scalar")
}

func orRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

// Delete removes the value at path from r and reports whether it existed.
// Array elements are removed by shifting the tail left.
func Delete(r ejson.Record, path string) bool {
	steps, err := parsePath(path)
	if err != nil || len(steps) == 0 {
		return false
	}
	_, ok := del(r, steps)
	return ok
}

func del(cur any, steps []step) (any, bool) {
	s := steps[0]
	last := len(steps) == 1
	switch x := cur.(type) {
	case map[string]any:
		if s.bracket {
			return cur, false
		}
		child, ok := x[s.name]
		if !ok {
			return cur, false
		}
		if last {
			delete(x, s.name)
			return x, true
		}
		next, ok := del(child, steps[1:])
		if ok {
			x[s.name] = next
		}
		return x, ok
	case []any:
		if !s.numeric() || s.index >= len(x) {
			return cur, false
		}
		if last {
			return append(x[:s.index], x[s.index+1:]...), true
		}
		next, ok := del(x[s.index], steps[1:])
		if ok {
			x[s.index] = next
		}
		return x, ok
	}
	return cur, false
}
