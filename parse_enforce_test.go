package ejson_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/reoring/ejson"
)

func TestDecode_DuplicateKeyPaths(t *testing.T) {
	opt := ejson.LoadOpt{Strictness: ejson.Strictness{OnDuplicateKey: ejson.Error}}
	for in, path := range map[string]string{
		`{"a":1,"a":2}`:             "/a",
		`[{"a":1,"a":2}]`:           "/0/a",
		`{"x":{"y~/z":0,"y~/z":1}}`: "/x/y~0~1z",
	} {
		_, err := ejson.Decode(bytes.NewReader([]byte(in)), opt)
		iss, ok := ejson.AsIssues(err)
		if !ok || iss[0].Code != ejson.CodeDuplicateKey || iss[0].Path != path {
			t.Fatalf("%s: expected duplicate_key at %s, got %v", in, path, err)
		}
	}
}

func TestLoads_DuplicateKey_WarnKeepsLast(t *testing.T) {
	opt := ejson.LoadOpt{Strictness: ejson.Strictness{OnDuplicateKey: ejson.Warn}}
	r, err := ejson.LoadsRecord([]byte(`{"a":1,"a":2}`), opt)
	if err != nil {
		t.Fatalf("warn mode must not fail: %v", err)
	}
	if r["a"] != 2.0 {
		t.Fatalf("expected the last value to win, got %v", r["a"])
	}
}

func TestLoads_MaxDepth_Exceeded(t *testing.T) {
	jsb := []byte(`{"a":{"b":{"c":1}}}`)
	_, err := ejson.Loads(jsb, ejson.LoadOpt{MaxDepth: 2})
	iss, ok := ejson.AsIssues(err)
	if !ok || len(iss) == 0 {
		t.Fatalf("expected Issues, got: %v", err)
	}
	if iss[0].Code != ejson.CodeParseError || iss[0].Path != "/a/b" {
		t.Fatalf("unexpected issue: %+v", iss[0])
	}
	if _, err := ejson.Loads(jsb, ejson.LoadOpt{MaxDepth: 3}); err != nil {
		t.Fatalf("depth 3 should pass: %v", err)
	}
}

func TestLoads_MaxBytes(t *testing.T) {
	jsb := []byte(`{"a":"` + strings.Repeat("x", 64) + `"}`)
	_, err := ejson.Loads(jsb, ejson.LoadOpt{MaxBytes: 16})
	iss, ok := ejson.AsIssues(err)
	if !ok || !iss.HasCode(ejson.CodeTruncated) {
		t.Fatalf("expected truncated, got: %v", err)
	}
	_, err = ejson.Decode(bytes.NewReader(jsb), ejson.LoadOpt{MaxBytes: 16})
	iss, ok = ejson.AsIssues(err)
	if !ok || !iss.HasCode(ejson.CodeTruncated) {
		t.Fatalf("expected truncated from Decode, got: %v", err)
	}
}
