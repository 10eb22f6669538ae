package gojson_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/ejson"
	_ "github.com/reoring/ejson/source"
	"github.com/reoring/ejson/source/gojson"
)

func TestImportingSourceInstallsGoJSON(t *testing.T) {
	if got := ejson.CurrentJSONDriver().Name(); got != "go-json" {
		t.Fatalf("unexpected driver %q", got)
	}
}

func TestDriver_RoundTrip(t *testing.T) {
	ejson.SetJSONDriver(gojson.Driver())
	in := []byte(`{"a":[1,"x",{"b":null}],"c":true}`)
	for _, opt := range []ejson.LoadOpt{{}, {NumberMode: ejson.NumberJSONNumber}, {MaxDepth: 8}} {
		v, err := ejson.Loads(in, opt)
		if err != nil {
			t.Fatalf("load %+v: %v", opt, err)
		}
		out, err := ejson.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if !bytes.Equal(out, in) {
			t.Fatalf("round trip mismatch: %s", out)
		}
	}
}

func TestDriver_Duplicates(t *testing.T) {
	ejson.SetJSONDriver(gojson.Driver())
	iss, err := ejson.DetectJSONDuplicateKeysBytes([]byte(`{"a":{"x":1,"x":2}}`), ejson.Strictness{OnDuplicateKey: ejson.Warn}, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"/a/x"}, paths(iss)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func paths(iss ejson.Issues) []string {
	var out []string
	for _, it := range iss {
		out = append(out, it.Path)
	}
	return out
}
