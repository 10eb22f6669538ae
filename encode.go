package ejson

import (
	"bytes"
	"cmp"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/reoring/ejson/codec"
	eng "github.com/reoring/ejson/internal/engine"
)

// ErrUnsupportedType is returned by DefaultEncoder for values it cannot
// convert.
var ErrUnsupportedType = errors.New("ejson: unsupported type")

// Mapper is implemented by mapping types (frozen records, bimaps) that the
// default encoder renders as JSON objects.
type Mapper interface {
	AsMap() map[string]any
}

// Lister is implemented by sequence types rendered as JSON arrays.
type Lister interface {
	AsSlice() []any
}

// maxHookDepth bounds chains of Default hooks returning unsupported values.
const maxHookDepth = 32

// DefaultEncoder converts values the JSON driver cannot represent on its own.
func DefaultEncoder(v any) (any, error) {
	switch x := v.(type) {
	case NullType, *NullType:
		return NullString, nil
	case Mapper:
		return x.AsMap(), nil
	case Lister:
		return x.AsSlice(), nil
	}
	rv := reflect.ValueOf(v)
	if isSet(rv) {
		return setElems(rv), nil
	}
	return nil, fmt.Errorf("%w: cannot serialize %T", ErrUnsupportedType, v)
}

// Marshal encodes v per opts using the current driver.
func Marshal(v any, opts ...DumpOpt) ([]byte, error) {
	opt := lastDumpOpt(opts)
	hook := opt.Default
	if hook == nil && !opt.NoDefault {
		hook = DefaultEncoder
	}
	norm, err := normalize(v, hook, "", 0)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := CurrentJSONDriver().NewEncoder(&buf)
	enc.SetEscapeHTML(opt.EscapeHTML)
	if indent := opt.Indent; indent != "" || opt.Pretty {
		if indent == "" {
			indent = "  "
		}
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(norm); err != nil {
		return nil, AppendIssues(nil, Issue{Code: CodeUnsupportedType, Path: "/", Message: err.Error(), Cause: err, Offset: -1})
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")
	if opt.ASCII {
		out = escapeNonASCII(out)
	}
	if opt.AppendNewline {
		out = append(out, '\n')
	}
	return out, nil
}

// Dumps is Marshal returning a string.
func Dumps(v any, opts ...DumpOpt) (string, error) {
	b, err := Marshal(v, opts...)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

var (
	marshalerType     = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// normalize rewrites v into a tree the driver encodes without surprises:
// generic maps and slices are rebuilt, special values go through hook.
func normalize(v any, hook func(any) (any, error), path string, hops int) (any, error) {
	switch x := v.(type) {
	case nil, bool, string, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, []byte:
		return v, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			n, err := normalize(e, hook, eng.JoinJSONPointer(path, k), 0)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			n, err := normalize(e, hook, eng.JoinJSONPointer(path, strconv.Itoa(i)), 0)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case NullType, *NullType, Mapper, Lister:
		return viaHook(v, hook, path, hops)
	}
	if s, ok := codec.Encode(v); ok {
		return s, nil
	}

	rv := reflect.ValueOf(v)
	t := rv.Type()
	if t.Implements(marshalerType) || t.Implements(textMarshalerType) {
		return v, nil
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return normalize(rv.Elem().Interface(), hook, path, hops)
	case reflect.Map:
		if isSet(rv) {
			return viaHook(v, hook, path, hops)
		}
		if t.Key().Kind() != reflect.String {
			return v, nil
		}
		out := make(map[string]any, rv.Len())
		it := rv.MapRange()
		for it.Next() {
			k := it.Key().String()
			n, err := normalize(it.Value().Interface(), hook, eng.JoinJSONPointer(path, k), 0)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			n, err := normalize(rv.Index(i).Interface(), hook, eng.JoinJSONPointer(path, strconv.Itoa(i)), 0)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Struct:
		return v, nil
	}
	return viaHook(v, hook, path, hops)
}

func viaHook(v any, hook func(any) (any, error), path string, hops int) (any, error) {
	if hook == nil {
		if _, ok := v.(json.Marshaler); ok {
			return v, nil
		}
	}
	if hook == nil || hops >= maxHookDepth {
		return nil, unsupported(v, path, nil)
	}
	out, err := hook(v)
	if err != nil {
		return nil, unsupported(v, path, err)
	}
	return normalize(out, hook, path, hops+1)
}

func unsupported(v any, path string, cause error) Issues {
	if path == "" {
		path = "/"
	}
	msg := fmt.Sprintf("cannot serialize %T", v)
	if cause != nil && !errors.Is(cause, ErrUnsupportedType) {
		msg += ": " + cause.Error()
	}
	return AppendIssues(nil, Issue{Code: CodeUnsupportedType, Path: path, Message: msg, Cause: cause, Offset: -1, Params: map[string]any{"type": fmt.Sprintf("%T", v)}})
}

// isSet reports whether rv is a map used as a set (map[T]struct{}).
func isSet(rv reflect.Value) bool {
	if rv.Kind() != reflect.Map {
		return false
	}
	et := rv.Type().Elem()
	return et.Kind() == reflect.Struct && et.NumField() == 0
}

// setElems returns the members of a set map in ascending order.
func setElems(rv reflect.Value) []any {
	keys := rv.MapKeys()
	slices.SortFunc(keys, compareValues)
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k.Interface()
	}
	return out
}

func compareValues(a, b reflect.Value) int {
	switch a.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(a.Int(), b.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(a.Uint(), b.Uint())
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(a.Float(), b.Float())
	case reflect.String:
		return cmp.Compare(a.String(), b.String())
	}
	return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
}

// escapeNonASCII rewrites every non-ASCII rune of encoded JSON as \uXXXX,
// using surrogate pairs above the BMP. Such runes only occur inside strings.
func escapeNonASCII(in []byte) []byte {
	var out []byte
	for i := 0; i < len(in); {
		c := in[i]
		if c < utf8.RuneSelf {
			if out != nil {
				out = append(out, c)
			}
			i++
			continue
		}
		if out == nil {
			out = make([]byte, 0, len(in)+16)
			out = append(out, in[:i]...)
		}
		r, size := utf8.DecodeRune(in[i:])
		if r >= 0x10000 {
			r1, r2 := utf16.EncodeRune(r)
			out = fmt.Appendf(out, `\u%04x\u%04x`, r1, r2)
		} else {
			out = fmt.Appendf(out, `\u%04x`, r)
		}
		i += size
	}
	if out == nil {
		return in
	}
	return out
}
