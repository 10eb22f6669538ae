// Package bimap provides an insertion-ordered one-to-one mapping that can
// be looked up by key or by value.
//
// MarshalJSON keeps insertion order. ejson.Dumps and ejson.Marshal encode a
// BiMap through AsMap like every other Mapper, so their output is key-sorted.
package bimap

import (
	"bytes"
	"errors"
	"fmt"
	"iter"

	"github.com/reoring/ejson"
)

var (
	// ErrKeyExists is returned by Put when the key is already bound.
	ErrKeyExists = errors.New("bimap: key already bound")
	// ErrValueExists is returned when the value is bound to another key.
	ErrValueExists = errors.New("bimap: value already bound")
)

// BiMap binds each key to exactly one value and each value to exactly one
// key. The zero value is an empty BiMap ready to use. It is not safe for
// concurrent mutation.
type BiMap[K, V comparable] struct {
	fwd   map[K]V
	inv   map[V]K
	order []K
}

func New[K, V comparable]() *BiMap[K, V] {
	return &BiMap[K, V]{fwd: map[K]V{}, inv: map[V]K{}}
}

// FromMap builds a BiMap from m. Iteration order of the result follows
// Go map order, i.e. it is unspecified. Two keys sharing a value fail with
// ErrValueExists.
func FromMap[K, V comparable](m map[K]V) (*BiMap[K, V], error) {
	b := New[K, V]()
	for k, v := range m {
		if err := b.Put(k, v); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Put binds k to v. Re-putting an existing pair is a no-op.
func (b *BiMap[K, V]) Put(k K, v V) error {
	if old, ok := b.fwd[k]; ok {
		if old == v {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrKeyExists, k)
	}
	if other, ok := b.inv[v]; ok {
		return fmt.Errorf("%w: %v (bound to %v)", ErrValueExists, v, other)
	}
	b.bind(k, v)
	return nil
}

// Set binds k to v, replacing the previous value of k in place.
func (b *BiMap[K, V]) Set(k K, v V) error {
	if other, ok := b.inv[v]; ok && other != k {
		return fmt.Errorf("%w: %v (bound to %v)", ErrValueExists, v, other)
	}
	b.bind(k, v)
	return nil
}

// ForcePut binds k to v, dropping whichever pair held v.
func (b *BiMap[K, V]) ForcePut(k K, v V) {
	if other, ok := b.inv[v]; ok && other != k {
		b.Delete(other)
	}
	b.bind(k, v)
}

func (b *BiMap[K, V]) bind(k K, v V) {
	if b.fwd == nil {
		b.fwd, b.inv = map[K]V{}, map[V]K{}
	}
	if old, ok := b.fwd[k]; ok {
		delete(b.inv, old)
	} else {
		b.order = append(b.order, k)
	}
	b.fwd[k] = v
	b.inv[v] = k
}

func (b *BiMap[K, V]) Get(k K) (V, bool) {
	v, ok := b.fwd[k]
	return v, ok
}

func (b *BiMap[K, V]) GetKey(v V) (K, bool) {
	k, ok := b.inv[v]
	return k, ok
}

func (b *BiMap[K, V]) ContainsKey(k K) bool {
	_, ok := b.fwd[k]
	return ok
}

func (b *BiMap[K, V]) ContainsValue(v V) bool {
	_, ok := b.inv[v]
	return ok
}

// Delete unbinds k and reports whether it was bound.
func (b *BiMap[K, V]) Delete(k K) bool {
	v, ok := b.fwd[k]
	if !ok {
		return false
	}
	delete(b.fwd, k)
	delete(b.inv, v)
	for i, o := range b.order {
		if o == k {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return true
}

// DeleteValue unbinds the key holding v.
func (b *BiMap[K, V]) DeleteValue(v V) bool {
	k, ok := b.inv[v]
	if !ok {
		return false
	}
	return b.Delete(k)
}

func (b *BiMap[K, V]) Len() int { return len(b.order) }

// Keys returns the keys in insertion order.
func (b *BiMap[K, V]) Keys() []K {
	return append([]K(nil), b.order...)
}

// Values returns the values in key insertion order.
func (b *BiMap[K, V]) Values() []V {
	out := make([]V, len(b.order))
	for i, k := range b.order {
		out[i] = b.fwd[k]
	}
	return out
}

// Range calls fn in insertion order until it returns false. fn must not
// mutate b.
func (b *BiMap[K, V]) Range(fn func(k K, v V) bool) {
	for _, k := range b.order {
		if !fn(k, b.fwd[k]) {
			return
		}
	}
}

// All iterates pairs in insertion order.
func (b *BiMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) { b.Range(yield) }
}

// Inverse returns a copy with keys and values swapped, in the same order.
func (b *BiMap[K, V]) Inverse() *BiMap[V, K] {
	out := New[V, K]()
	for _, k := range b.order {
		out.bind(b.fwd[k], k)
	}
	return out
}

// AsMap renders keys with fmt.Sprint. Distinct keys with the same
// rendering collapse into one entry.
func (b *BiMap[K, V]) AsMap() map[string]any {
	out := make(map[string]any, len(b.order))
	for _, k := range b.order {
		out[fmt.Sprint(k)] = b.fwd[k]
	}
	return out
}

// MarshalJSON encodes an object whose members follow insertion order.
func (b *BiMap[K, V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range b.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := ejson.Marshal(fmt.Sprint(k))
		if err != nil {
			return nil, err
		}
		val, err := ejson.Marshal(b.fwd[k])
		if err != nil {
			return nil, fmt.Errorf("bimap: value of %v: %w", k, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
