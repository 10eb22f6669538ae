package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/reoring/ejson"
	"github.com/reoring/ejson/jsonio"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(ejson.UseDefaultJSONDriver)
	t.Setenv("EJSON_CONFIG", "")
	var out, errOut bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFmt(t *testing.T) {
	got, err := run(t, `{"b": 1.50, "a": "<é>"}`, "fmt", "--ascii")
	if err != nil {
		t.Fatalf("fmt: %v", err)
	}
	if got != "{\"a\":\"<\\u00e9>\",\"b\":1.50}\n" {
		t.Fatalf("unexpected output %q", got)
	}

	got, err = run(t, `{"a": [1]}`, "fmt", "--pretty", "--driver", "jsoniter")
	if err != nil {
		t.Fatalf("fmt pretty: %v", err)
	}
	if got != "{\n  \"a\": [\n    1\n  ]\n}\n" {
		t.Fatalf("unexpected output %q", got)
	}

	if _, err := run(t, `{'a': 1}`, "fmt"); err == nil {
		t.Fatalf("expected parse error without --repair")
	}
	got, err = run(t, `{'a': 1}`, "fmt", "--repair")
	if err != nil || got != "{\"a\":1}\n" {
		t.Fatalf("fmt --repair: %q %v", got, err)
	}
}

func TestFmt_OutputFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.json")
	if _, err := run(t, `[3,2]`, "fmt", "-o", p); err != nil {
		t.Fatalf("fmt -o: %v", err)
	}
	raw, _ := os.ReadFile(p)
	if string(raw) != "[3,2]\n" {
		t.Fatalf("unexpected file %q", raw)
	}
}

func TestRepair(t *testing.T) {
	got, err := run(t, `{a: True}`, "repair")
	if err != nil {
		t.Fatalf("repair: %v", err)
	}
	if got != "{\"a\":true}\n" {
		t.Fatalf("unexpected output %q", got)
	}
	if _, err := run(t, `[1 2]`, "repair"); err == nil {
		t.Fatalf("expected unrepairable input to fail")
	}
}

func TestFlattenUnflatten(t *testing.T) {
	got, err := run(t, `{"a":{"b":[1,{"c":2}]}}`, "flatten")
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	if got != "{\"a.b[0]\":1,\"a.b[1].c\":2}\n" {
		t.Fatalf("unexpected output %q", got)
	}

	got, err = run(t, "{\"a\":{\"b\":1}}\n{\"c\":[true]}\n", "flatten", "--ndjson", "--object-separator", "/", "--array-subscript", "_")
	if err != nil {
		t.Fatalf("flatten --ndjson: %v", err)
	}
	if got != "{\"a/b\":1}\n{\"c_0\":true}\n" {
		t.Fatalf("unexpected output %q", got)
	}

	got, err = run(t, `{"a.b[0]":1,"a.b[1].c":2}`, "unflatten")
	if err != nil {
		t.Fatalf("unflatten: %v", err)
	}
	if got != "{\"a\":{\"b\":[1,{\"c\":2}]}}\n" {
		t.Fatalf("unexpected output %q", got)
	}
	if _, err := run(t, `[1]`, "unflatten"); err == nil {
		t.Fatalf("expected invalid_type for a non-object")
	}
}

func TestMapBy(t *testing.T) {
	in := "{\"id\":\"x\",\"v\":1}\n{\"id\":\"y\",\"v\":2}\n{\"v\":3}\n"
	got, err := run(t, in, "mapby", "--field", "id", "--ignore-missing", "--remove-field")
	if err != nil {
		t.Fatalf("mapby: %v", err)
	}
	if got != "{\"x\":{\"v\":1},\"y\":{\"v\":2}}\n" {
		t.Fatalf("unexpected output %q", got)
	}
	if _, err := run(t, in, "mapby", "--field", "id"); err == nil {
		t.Fatalf("expected missing_field error")
	}
	got, err = run(t, ` [{"id":1}]`, "mapby", "--field", "id")
	if err != nil || got != "{\"1\":{\"id\":1}}\n" {
		t.Fatalf("array input: %q %v", got, err)
	}
}

func TestDedupe(t *testing.T) {
	got, err := run(t, "{\"a\":1,\"b\":2}\n{\"b\":2,\"a\":1}\n{\"a\":2}\n", "dedupe")
	if err != nil {
		t.Fatalf("dedupe: %v", err)
	}
	if got != "{\"a\":1,\"b\":2}\n{\"a\":2}\n" {
		t.Fatalf("unexpected output %q", got)
	}

	bad := "{\"a\":1}\nnot json\n{\"a\":1}\n{\"a\":3}\n"
	if _, err := run(t, bad, "dedupe"); err == nil {
		t.Fatalf("expected the bad line to fail under the raise policy")
	}
	got, err = run(t, bad, "--on-error", "ignore", "dedupe")
	if err != nil {
		t.Fatalf("dedupe with ignore: %v", err)
	}
	if got != "{\"a\":1}\n{\"a\":3}\n" {
		t.Fatalf("unexpected output %q", got)
	}
	if _, err := run(t, bad, "--on-error", "sometimes", "dedupe"); err == nil {
		t.Fatalf("expected invalid policy error")
	}
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	nd := filepath.Join(dir, "a.ndjson")
	csv := filepath.Join(dir, "b.csv")
	yml := filepath.Join(dir, "c.yaml")
	must(t, os.WriteFile(nd, []byte("{\"n\":1}\n{\"n\":2}\n"), 0o644))
	must(t, os.WriteFile(csv, []byte("n\n3\n"), 0o644))
	must(t, os.WriteFile(yml, []byte("- n: 4\n"), 0o644))

	out := filepath.Join(dir, "all.jsonl")
	if _, err := run(t, "", "convert", "-o", out, "--batch-size", "1", nd, csv, yml); err != nil {
		t.Fatalf("convert: %v", err)
	}
	got, err := jsonio.ReadNDJSONFile(out, jsonio.ReadOpt{})
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	want := ejson.Records{{"n": 1.0}, {"n": 2.0}, {"n": "3"}, {"n": 4.0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	xlsx := filepath.Join(dir, "all.xlsx")
	if _, err := run(t, "", "convert", "-o", xlsx, nd); err != nil {
		t.Fatalf("convert to xlsx: %v", err)
	}
	back, err := jsonio.ReadAll(jsonio.ExcelBatches(context.Background(), xlsx, 10))
	if err != nil || len(back) != 2 || back[1]["n"] != 2.0 {
		t.Fatalf("xlsx read back: %v %v", back, err)
	}

	if _, err := run(t, "", "convert", "-o", filepath.Join(dir, "x.parquet"), nd); err == nil {
		t.Fatalf("expected unsupported output format")
	}
	if _, err := run(t, "", "convert", "-o", out, filepath.Join(dir, "missing.csv")); err == nil {
		t.Fatalf("expected error for a missing input")
	}
}

func TestGlobalFlagsAndConfig(t *testing.T) {
	p := filepath.Join(t.TempDir(), "ejson.yaml")
	must(t, os.WriteFile(p, []byte("dump:\n  pretty: true\nflatten:\n  object_separator: \"::\"\n"), 0o644))

	got, err := run(t, `{"a":{"b":1}}`, "--config", p, "flatten")
	if err != nil {
		t.Fatalf("flatten with config: %v", err)
	}
	if got != "{\n  \"a::b\": 1\n}\n" {
		t.Fatalf("unexpected output %q", got)
	}
	if _, err := run(t, `{}`, "--driver", "nope", "fmt"); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	if _, err := run(t, `{}`, "--batch-size", "0", "fmt"); err == nil {
		t.Fatalf("expected invalid batch size error")
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
}
