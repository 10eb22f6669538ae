package flatten

import (
	"slices"
	"strconv"
	"strings"

	"github.com/reoring/ejson"
	eng "github.com/reoring/ejson/internal/engine"
)

type segment struct {
	key   string
	index int // valid when isIdx
	isIdx bool
}

// Unflatten rebuilds the nested value flat was produced from. The root is
// an array when every key starts with an index. Keys whose paths disagree
// (a leaf where another key needs a container, or an index where another
// key needs an object) are reported as conflict issues. Gaps in arrays are
// filled with nil.
//
// Keys are parsed by their separators, so object keys that themselves
// contain a separator, or that consist of digits in separator mode, do not
// round-trip.
func (f *Flattener) Unflatten(flat map[string]any) (any, error) {
	if f.opt.NoIndex {
		return nil, ejson.NewIssue(ejson.CodeInvalidArgument, "", "keys flattened without indices cannot be unflattened")
	}
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	root := &node{}
	var iss ejson.Issues
	for _, k := range keys {
		segs := f.parseKey(k)
		if len(segs) == 0 {
			iss = ejson.AppendIssues(iss, ejson.Issue{Code: ejson.CodeConflict, Path: "/", Message: "key " + strconv.Quote(k) + " addresses the root", Offset: -1})
			continue
		}
		if err := root.insert(segs, flat[k], ""); err != nil {
			iss = ejson.AppendIssues(iss, *err)
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	if root.kind == kindNone {
		return map[string]any{}, nil
	}
	return root.build(), nil
}

// UnflattenRecord rebuilds a record; an array root is an invalid_type issue.
func (f *Flattener) UnflattenRecord(flat ejson.Record) (ejson.Record, error) {
	v, err := f.Unflatten(flat)
	if err != nil {
		return nil, err
	}
	r, ok := v.(map[string]any)
	if !ok {
		return nil, ejson.NewIssue(ejson.CodeInvalidType, "/", "flattened keys describe an array")
	}
	return r, nil
}

func (f *Flattener) parseKey(k string) []segment {
	if root := f.opt.RootIdentifier; root != "" && strings.HasPrefix(k, root) {
		k = k[len(root):]
	}
	if f.template {
		return f.parseTemplateKey(k)
	}
	return f.parseSeparatorKey(k)
}

func (f *Flattener) parseTemplateKey(k string) []segment {
	var segs []segment
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			segs = append(segs, segment{key: cur.String()})
			cur.Reset()
		}
	}
	for i := 0; i < len(k); {
		if idx, n, ok := f.subscriptAt(k[i:]); ok {
			flush()
			segs = append(segs, segment{index: idx, isIdx: true})
			i += n
			continue
		}
		if strings.HasPrefix(k[i:], f.opt.ObjectSeparator) {
			flush()
			i += len(f.opt.ObjectSeparator)
			continue
		}
		cur.WriteByte(k[i])
		i++
	}
	flush()
	return segs
}

// subscriptAt matches pre, digits, post at the start of s.
func (f *Flattener) subscriptAt(s string) (index, n int, ok bool) {
	if !strings.HasPrefix(s, f.pre) {
		return 0, 0, false
	}
	j := len(f.pre)
	start := j
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j == start || !strings.HasPrefix(s[j:], f.post) {
		return 0, 0, false
	}
	idx, err := strconv.Atoi(s[start:j])
	if err != nil {
		return 0, 0, false
	}
	return idx, j + len(f.post), true
}

func (f *Flattener) parseSeparatorKey(k string) []segment {
	seps := []struct {
		s       string
		indexed bool
	}{{f.opt.ArraySubscript, true}, {f.opt.ObjectSeparator, false}}
	if len(f.opt.ObjectSeparator) > len(f.opt.ArraySubscript) {
		seps[0], seps[1] = seps[1], seps[0]
	}

	var segs []segment
	var cur strings.Builder
	// the first piece may be an index only for a root array
	indexed := true
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		s := cur.String()
		cur.Reset()
		if indexed && isDigits(s) {
			n, err := strconv.Atoi(s)
			if err == nil {
				segs = append(segs, segment{index: n, isIdx: true})
				return
			}
		}
		segs = append(segs, segment{key: s})
	}
outer:
	for i := 0; i < len(k); {
		for _, sep := range seps {
			if strings.HasPrefix(k[i:], sep.s) {
				flush()
				indexed = sep.indexed
				i += len(sep.s)
				continue outer
			}
		}
		cur.WriteByte(k[i])
		i++
	}
	flush()
	return segs
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

type nodeKind int

const (
	kindNone nodeKind = iota
	kindLeaf
	kindObject
	kindArray
)

type node struct {
	kind nodeKind
	leaf any
	obj  map[string]*node
	arr  map[int]*node
}

func (n *node) insert(segs []segment, v any, path string) *ejson.Issue {
	if len(segs) == 0 {
		if n.kind != kindNone {
			return conflict(path, "value collides with another key")
		}
		n.kind, n.leaf = kindLeaf, v
		return nil
	}
	s := segs[0]
	want := kindObject
	if s.isIdx {
		want = kindArray
	}
	switch n.kind {
	case kindNone:
		n.kind = want
		n.obj, n.arr = map[string]*node{}, map[int]*node{}
	case kindLeaf:
		return conflict(path, "leaf value also used as a container")
	case want:
	default:
		return conflict(path, "mixes object keys and array indices")
	}
	var child *node
	if s.isIdx {
		path = eng.JoinJSONPointer(path, strconv.Itoa(s.index))
		if child = n.arr[s.index]; child == nil {
			child = &node{}
			n.arr[s.index] = child
		}
	} else {
		path = eng.JoinJSONPointer(path, s.key)
		if child = n.obj[s.key]; child == nil {
			child = &node{}
			n.obj[s.key] = child
		}
	}
	return child.insert(segs[1:], v, path)
}

func (n *node) build() any {
	switch n.kind {
	case kindLeaf:
		return n.leaf
	case kindObject:
		out := make(map[string]any, len(n.obj))
		for k, c := range n.obj {
			out[k] = c.build()
		}
		return out
	case kindArray:
		size := 0
		for i := range n.arr {
			size = max(size, i+1)
		}
		out := make([]any, size)
		for i, c := range n.arr {
			out[i] = c.build()
		}
		return out
	}
	return nil
}

func conflict(path, msg string) *ejson.Issue {
	if path == "" {
		path = "/"
	}
	return &ejson.Issue{Code: ejson.CodeConflict, Path: path, Message: msg, Offset: -1}
}
