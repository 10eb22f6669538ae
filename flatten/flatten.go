// Package flatten turns nested records into single-level records whose keys
// spell the path to each leaf, and back.
//
// With the default options
//
//	{"a": {"b": 1}, "c": [5, {"d": true}]}
//
// flattens to
//
//	{"a.b": 1, "c[0]": 5, "c[1].d": true}
package flatten

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/ejson"
)

// Options configures a Flattener.
type Options struct {
	// RootIdentifier prefixes every produced key.
	RootIdentifier string
	// ObjectSeparator joins object keys. Must not be empty.
	ObjectSeparator string
	// ArraySubscript renders array indices. When it contains %d it is a
	// template appended to the prefix ("[%d]" gives "a[0]"); otherwise it is
	// a separator placed before the index ("_" gives "a_0"). Must not be
	// empty.
	ArraySubscript string
	// KeepArrays leaves arrays in place as leaf values.
	KeepArrays bool
	// NoIndex drops indices from keys ("a[]" or "a_"); elements of one
	// array then collide and the last one wins.
	NoIndex bool
}

// DefaultOptions returns the options of Default.
func DefaultOptions() Options {
	return Options{ObjectSeparator: ".", ArraySubscript: "[%d]"}
}

// Flattener flattens and unflattens values with fixed options. It is safe
// for concurrent use.
type Flattener struct {
	opt Options
	// pre and post surround the index of a template subscript.
	pre, post string
	template  bool
}

// Default uses DefaultOptions.
var Default = mustNew(DefaultOptions())

func mustNew(opt Options) *Flattener {
	f, err := New(opt)
	if err != nil {
		panic(err)
	}
	return f
}

// New validates opt and returns a Flattener.
func New(opt Options) (*Flattener, error) {
	if opt.ObjectSeparator == "" {
		return nil, ejson.NewIssue(ejson.CodeInvalidArgument, "", "object separator cannot be empty")
	}
	if opt.ArraySubscript == "" {
		return nil, ejson.NewIssue(ejson.CodeInvalidArgument, "", "array subscript cannot be empty")
	}
	f := &Flattener{opt: opt}
	if pre, post, ok := strings.Cut(opt.ArraySubscript, "%d"); ok {
		if strings.Contains(pre, "%") || strings.Contains(post, "%") {
			return nil, ejson.NewIssue(ejson.CodeInvalidArgument, "", fmt.Sprintf("array subscript %q has more than one verb", opt.ArraySubscript))
		}
		f.pre, f.post, f.template = pre, post, true
	}
	return f, nil
}

// Options returns the configuration of f.
func (f *Flattener) Options() Options { return f.opt }

// Flatten flattens v. Objects, and arrays unless KeepArrays is set, become a
// map[string]any; any other value is returned unchanged. Empty objects and
// arrays produce no keys.
func (f *Flattener) Flatten(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := map[string]any{}
		f.object(out, x, f.opt.RootIdentifier, false)
		return out
	case []any:
		if f.opt.KeepArrays {
			return v
		}
		out := map[string]any{}
		f.array(out, x, f.opt.RootIdentifier)
		return out
	}
	return v
}

// FlattenRecord flattens a single record.
func (f *Flattener) FlattenRecord(r ejson.Record) ejson.Record {
	out := ejson.Record{}
	f.object(out, r, f.opt.RootIdentifier, false)
	return out
}

// FlattenRecords flattens every record of rs.
func (f *Flattener) FlattenRecords(rs ejson.Records) ejson.Records {
	out := make(ejson.Records, len(rs))
	for i, r := range rs {
		out[i] = f.FlattenRecord(r)
	}
	return out
}

// afterIndex is set when prefix ends with a separator-style subscript, in
// which case keys are joined with the array separator.
func (f *Flattener) keyPrefix(prefix, key string, afterIndex bool) string {
	switch {
	case prefix == "":
		return key
	case afterIndex:
		if strings.HasSuffix(prefix, f.opt.ArraySubscript) {
			return prefix + key
		}
		return prefix + f.opt.ArraySubscript + key
	default:
		return prefix + f.opt.ObjectSeparator + key
	}
}

func (f *Flattener) indexPrefix(prefix string, i int) string {
	switch {
	case f.template && f.opt.NoIndex:
		return prefix + f.pre + f.post
	case f.template:
		return prefix + f.pre + strconv.Itoa(i) + f.post
	case f.opt.NoIndex:
		if prefix != "" && strings.HasSuffix(prefix, f.opt.ArraySubscript) {
			return prefix
		}
		return prefix + f.opt.ArraySubscript
	case prefix == "":
		return strconv.Itoa(i)
	default:
		return prefix + f.opt.ArraySubscript + strconv.Itoa(i)
	}
}

func (f *Flattener) object(out map[string]any, m map[string]any, prefix string, afterIndex bool) {
	for k, v := range m {
		f.value(out, v, f.keyPrefix(prefix, k, afterIndex))
	}
}

func (f *Flattener) array(out map[string]any, a []any, prefix string) {
	for i, v := range a {
		p := f.indexPrefix(prefix, i)
		switch x := v.(type) {
		case map[string]any:
			f.object(out, x, p, !f.template)
		default:
			f.value(out, v, p)
		}
	}
}

func (f *Flattener) value(out map[string]any, v any, key string) {
	switch x := v.(type) {
	case map[string]any:
		f.object(out, x, key, false)
	case []any:
		if f.opt.KeepArrays {
			out[key] = v
			return
		}
		f.array(out, x, key)
	default:
		out[key] = v
	}
}

// Flatten flattens v with Default.
func Flatten(v any) any { return Default.Flatten(v) }

// Unflatten rebuilds a nested value from flat with Default.
func Unflatten(flat map[string]any) (any, error) { return Default.Unflatten(flat) }
