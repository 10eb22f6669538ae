package records

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/ejson"
)

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint(ejson.Record{"a": 1.0, "b": []any{"x"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := Fingerprint(ejson.Record{"b": []any{"x"}, "a": 1.0})
	c, _ := Fingerprint(ejson.Record{"a": 2.0, "b": []any{"x"}})
	if a != b || a == c {
		t.Fatalf("fingerprints: %x %x %x", a, b, c)
	}
	if _, err := Fingerprint(map[string]any{"f": func() {}}); err == nil {
		t.Fatalf("expected unsupported value error")
	}
}

func TestDedupe(t *testing.T) {
	list := ejson.Records{{"a": 1.0}, {"a": 2.0}, {"a": 1.0}, {}}
	got, err := Dedupe(list)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(ejson.Records{{"a": 1.0}, {"a": 2.0}, {}}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDedupe_HashCollision(t *testing.T) {
	list := ejson.Records{{"a": 1.0}, {"a": 2.0}, {"a": 1.0}}
	got, err := dedupe(list, func([]byte) uint64 { return 7 })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(ejson.Records{{"a": 1.0}, {"a": 2.0}}, got); diff != "" {
		t.Fatalf("colliding records merged (-want +got):\n%s", diff)
	}
}
