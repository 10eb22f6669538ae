package records

import "github.com/reoring/ejson"

// MergeOpt tunes Merge.
type MergeOpt struct {
	// ConcatArrays appends src arrays to dst arrays instead of replacing
	// them.
	ConcatArrays bool
}

// Merge deep-merges src over dst into a new record. Nested records merge
// key by key; any other src value replaces the dst value. Neither input is
// modified.
func Merge(dst, src ejson.Record, opts ...MergeOpt) ejson.Record {
	var opt MergeOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	out := DeepCopy(dst).(map[string]any)
	if out == nil {
		out = ejson.Record{}
	}
	mergeInto(out, src, opt)
	return out
}

func mergeInto(dst, src map[string]any, opt MergeOpt) {
	for k, sv := range src {
		dv, exists := dst[k]
		switch s := sv.(type) {
		case map[string]any:
			if d, ok := dv.(map[string]any); ok && exists {
				mergeInto(d, s, opt)
				continue
			}
		case []any:
			if d, ok := dv.([]any); ok && exists && opt.ConcatArrays {
				dst[k] = append(d, DeepCopy(s).([]any)...)
				continue
			}
		}
		dst[k] = DeepCopy(sv)
	}
}

// Pick returns a shallow copy of r holding only keys.
func Pick(r ejson.Record, keys ...string) ejson.Record {
	out := make(ejson.Record, len(keys))
	for _, k := range keys {
		if v, ok := r[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Omit returns a shallow copy of r without keys.
func Omit(r ejson.Record, keys ...string) ejson.Record {
	out := make(ejson.Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
