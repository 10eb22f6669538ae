// Package frozen provides an immutable record. Every derivation (With,
// Without, Merge) returns a new Record sharing unchanged nodes with its
// parent through the B-tree's copy-on-write.
package frozen

import (
	"github.com/cespare/xxhash/v2"
	"github.com/tidwall/btree"

	"github.com/reoring/ejson"
	"github.com/reoring/ejson/records"
)

// Record is an immutable string-keyed mapping. The zero value is an empty
// record. Values are deep copied on the way in and on the way out, so no
// caller can reach the stored containers.
type Record struct {
	tr *btree.Map[string, any]
}

// New returns a frozen copy of m.
func New(m map[string]any) Record {
	tr := &btree.Map[string, any]{}
	for k, v := range m {
		tr.Set(k, records.DeepCopy(v))
	}
	return Record{tr: tr}
}

// Empty returns the empty record.
func Empty() Record { return Record{} }

func (r Record) Len() int {
	if r.tr == nil {
		return 0
	}
	return r.tr.Len()
}

func (r Record) Get(key string) (any, bool) {
	if r.tr == nil {
		return nil, false
	}
	v, ok := r.tr.Get(key)
	if !ok {
		return nil, false
	}
	return records.DeepCopy(v), true
}

func (r Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Keys returns the keys in ascending order.
func (r Record) Keys() []string {
	if r.tr == nil {
		return nil
	}
	return r.tr.Keys()
}

// Range calls fn for each pair in key order until fn returns false.
func (r Record) Range(fn func(key string, value any) bool) {
	if r.tr == nil {
		return
	}
	r.tr.Scan(func(k string, v any) bool {
		return fn(k, records.DeepCopy(v))
	})
}

func (r Record) clone() *btree.Map[string, any] {
	if r.tr == nil {
		return &btree.Map[string, any]{}
	}
	return r.tr.Copy()
}

// With returns a record where key maps to value.
func (r Record) With(key string, value any) Record {
	tr := r.clone()
	tr.Set(key, records.DeepCopy(value))
	return Record{tr: tr}
}

// Without returns a record lacking keys.
func (r Record) Without(keys ...string) Record {
	if r.tr == nil {
		return r
	}
	tr := r.tr.Copy()
	for _, k := range keys {
		tr.Delete(k)
	}
	return Record{tr: tr}
}

// Merge returns a record with the pairs of m laid over r.
func (r Record) Merge(m map[string]any) Record {
	tr := r.clone()
	for k, v := range m {
		tr.Set(k, records.DeepCopy(v))
	}
	return Record{tr: tr}
}

// Thaw returns a mutable deep copy.
func (r Record) Thaw() map[string]any {
	out := make(map[string]any, r.Len())
	r.Range(func(k string, v any) bool {
		out[k] = v
		return true
	})
	return out
}

// AsMap lets ejson.Marshal encode the record as an object.
func (r Record) AsMap() map[string]any { return r.Thaw() }

func (r Record) MarshalJSON() ([]byte, error) { return ejson.Marshal(r.Thaw()) }

// UnmarshalJSON replaces *r with the decoded object.
func (r *Record) UnmarshalJSON(data []byte) error {
	m, err := ejson.LoadsRecord(data)
	if err != nil {
		return err
	}
	*r = New(m)
	return nil
}

// Equal reports whether both records encode to the same canonical JSON.
func (r Record) Equal(other Record) bool {
	if r.Len() != other.Len() {
		return false
	}
	a, errA := r.MarshalJSON()
	b, errB := other.MarshalJSON()
	return errA == nil && errB == nil && string(a) == string(b)
}

// Hash is the xxhash of the canonical encoding. Records holding values
// that cannot be encoded hash to 0.
func (r Record) Hash() uint64 {
	b, err := r.MarshalJSON()
	if err != nil {
		return 0
	}
	return xxhash.Sum64(b)
}
