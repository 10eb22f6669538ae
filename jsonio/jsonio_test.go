package jsonio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/reoring/ejson"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return p
}

func collect(t *testing.T, batches func(func(ejson.Records, error) bool)) ([]ejson.Records, error) {
	t.Helper()
	var out []ejson.Records
	for b, err := range batches {
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, nil
}

func TestWriteNDJSON(t *testing.T) {
	var buf bytes.Buffer
	err := WriteNDJSON(&buf, ejson.Records{{"b": 1.0, "a": "x"}, {}}, WriteOpt{})
	if err != nil {
		t.Fatalf("WriteNDJSON: %v", err)
	}
	if got := buf.String(); got != "{\"a\":\"x\",\"b\":1}\n{}\n" {
		t.Fatalf("unexpected output %q", got)
	}

	bad := ejson.Records{{"f": func() {}}}
	if err := WriteNDJSON(&buf, bad, WriteOpt{}); err == nil {
		t.Fatalf("expected encode error")
	}
	if err := WriteNDJSON(&buf, bad, WriteOpt{OnError: OnErrorIgnore}); err != nil {
		t.Fatalf("ignore policy returned %v", err)
	}
}

func TestNDJSONFile_AppendAndRead(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.ndjson")
	if err := WriteNDJSONFile(p, ejson.Records{{"n": 1.0}}, WriteOpt{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WriteNDJSONFile(p, ejson.Records{{"n": 2.0}}, WriteOpt{Append: true}); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err := ReadNDJSONFile(p, ReadOpt{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if diff := cmp.Diff(ejson.Records{{"n": 1.0}, {"n": 2.0}}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	if err := WriteNDJSONFile(p, ejson.Records{{"n": 3.0}}, WriteOpt{}); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	got, _ = ReadNDJSONFile(p, ReadOpt{})
	if len(got) != 1 {
		t.Fatalf("file not truncated: %v", got)
	}
}

func TestReadNDJSONFile_Policies(t *testing.T) {
	p := writeFile(t, "in.ndjson", "{\"a\":1}\n\nnot json\n{\"a\":3}\n")
	if _, err := ReadNDJSONFile(p, ReadOpt{}); err == nil {
		t.Fatalf("expected error under raise")
	}
	got, err := ReadNDJSONFile(p, ReadOpt{OnError: OnErrorIgnore})
	if err != nil {
		t.Fatalf("ignore policy: %v", err)
	}
	if diff := cmp.Diff(ejson.Records{{"a": 1.0}}, got); diff != "" {
		t.Fatalf("reading should stop at the bad line (-want +got):\n%s", diff)
	}
}

func TestJSONFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "doc.json")
	if err := WriteJSONFile(p, map[string]any{"a": []any{1.0}}, WriteOpt{Pretty: true}); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, _ := os.ReadFile(p)
	if string(raw) != "{\n  \"a\": [\n    1\n  ]\n}" {
		t.Fatalf("unexpected file %q", raw)
	}
	v, err := ReadJSONFile(p, ReadOpt{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"a": []any{1.0}}, v); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	bad := writeFile(t, "bad.json", "{")
	if v, err := ReadJSONFile(bad, ReadOpt{OnError: OnErrorLog}); v != nil || err != nil {
		t.Fatalf("log policy: %v %v", v, err)
	}
	if _, err := ReadJSONFile(filepath.Join(dir, "missing.json"), ReadOpt{OnError: OnErrorIgnore}); err == nil {
		t.Fatalf("open errors must be returned")
	}
}

func TestWriteJSONOrNDJSONFile(t *testing.T) {
	dir := t.TempDir()
	lines := filepath.Join(dir, "a")
	if err := WriteJSONOrNDJSONFile(lines, []any{1.0, "x"}, WriteOpt{}); err != nil {
		t.Fatalf("write list: %v", err)
	}
	raw, _ := os.ReadFile(lines)
	if string(raw) != "1\n\"x\"\n" {
		t.Fatalf("unexpected ND-JSON %q", raw)
	}
	doc := filepath.Join(dir, "b")
	if err := WriteJSONOrNDJSONFile(doc, map[string]any{"k": true}, WriteOpt{}); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	raw, _ = os.ReadFile(doc)
	if string(raw) != `{"k":true}` {
		t.Fatalf("unexpected JSON %q", raw)
	}
}

func TestNDJSONBatches(t *testing.T) {
	p := writeFile(t, "in.jsonl", "{\"i\":1}\n{\"i\":2}\n\n[1]\n{\"i\":3}\n")
	got, err := collect(t, NDJSONBatches(context.Background(), p, 2, ReadOpt{OnError: OnErrorLog}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []ejson.Records{{{"i": 1.0}, {"i": 2.0}}, {{"i": 3.0}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	_, err = collect(t, NDJSONBatches(context.Background(), p, 2, ReadOpt{}))
	if iss, ok := ejson.AsIssues(err); !ok || iss[0].Code != ejson.CodeInvalidType {
		t.Fatalf("expected invalid_type under raise, got %v", err)
	}

	_, err = collect(t, NDJSONBatches(context.Background(), p, 0, ReadOpt{}))
	if iss, ok := ejson.AsIssues(err); !ok || iss[0].Code != ejson.CodeInvalidArgument {
		t.Fatalf("expected invalid_argument, got %v", err)
	}
}

func TestBatches_StopAndCancel(t *testing.T) {
	p := writeFile(t, "in.ndjson", strings.Repeat("{\"x\":1}\n", 10))
	n := 0
	for _, err := range NDJSONBatches(context.Background(), p, 3, ReadOpt{}) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		n++
		break
	}
	if n != 1 {
		t.Fatalf("break not honoured")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := collect(t, NDJSONBatches(ctx, p, 3, ReadOpt{}))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCSVBatches(t *testing.T) {
	p := writeFile(t, "in.csv", "id,name,note\n1,ann,\n2,\"bob, jr\"\n3,cy,x,extra\n")
	got, err := collect(t, CSVBatches(context.Background(), p, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []ejson.Records{{
		{"id": "1", "name": "ann", "note": nil},
		{"id": "2", "name": "bob, jr", "note": nil},
		{"id": "3", "name": "cy", "note": "x"},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExcel_WriteThenRead(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.xlsx")
	in := ejson.Records{
		{"id": 1.0, "tags": []any{"a"}, "ok": true, "name": "x"},
		{"id": 2.5, "meta": map[string]any{"k": "v"}, "name": "00123"},
	}
	if err := WriteExcelFile(p, in, ExcelOpt{Sheet: "data"}); err != nil {
		t.Fatalf("WriteExcelFile: %v", err)
	}
	got, err := ReadAll(ExcelBatches(context.Background(), p, 1))
	if err != nil {
		t.Fatalf("ExcelBatches: %v", err)
	}
	want := ejson.Records{
		{"id": 1.0, "meta": nil, "name": "x", "ok": true, "tags": []any{"a"}},
		{"id": 2.5, "meta": map[string]any{"k": "v"}, "name": "00123", "ok": nil, "tags": nil},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExcelBatches_HandBuilt(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]any{
		{"name", "", "flag", "list"},
		{"a", "dropped", "TRUE", "[1,2]"},
		{nil, nil, nil, nil},
		{"b", nil, "False", "{bad}"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	p := filepath.Join(t.TempDir(), "in.xlsx")
	if err := f.SaveAs(p); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	got, err := ReadAll(ExcelBatches(context.Background(), p, 5))
	if err != nil {
		t.Fatalf("ExcelBatches: %v", err)
	}
	want := ejson.Records{
		{"name": "a", "flag": true, "list": []any{1.0, 2.0}},
		{"name": "b", "flag": false, "list": "{bad}"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestYAMLBatches(t *testing.T) {
	p := writeFile(t, "in.yaml", "a: 1\nwhen: 2024-01-02T03:04:05Z\n---\n- b: [x, 2]\n- {1: one}\n---\n---\njust a string\n")
	got, err := ReadAll(YAMLBatches(context.Background(), p, 2, ReadOpt{OnError: OnErrorIgnore}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := ejson.Records{
		{"a": 1.0, "when": "2024-01-02T03:04:05Z"},
		{"b": []any{"x", 2.0}},
		{"1": "one"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if _, err := ReadAll(YAMLBatches(context.Background(), p, 2, ReadOpt{})); err == nil {
		t.Fatalf("expected invalid_type for a scalar document")
	}
}

func TestJSONBatches(t *testing.T) {
	arr := writeFile(t, "a.json", "  [{\"i\":1},{\"i\":2},{\"i\":3}]")
	got, err := collect(t, JSONBatches(context.Background(), arr, 2, ReadOpt{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || len(got[0]) != 2 || got[1][0]["i"] != 3.0 {
		t.Fatalf("unexpected batches %v", got)
	}

	one := writeFile(t, "o.json", "{\"i\":1}")
	all, err := ReadAll(JSONBatches(context.Background(), one, 2, ReadOpt{}))
	if err != nil || len(all) != 1 {
		t.Fatalf("single record: %v %v", all, err)
	}

	mixed := writeFile(t, "m.json", "[{\"i\":1}, 2]")
	if _, err := ReadAll(ArrayBatches(context.Background(), mixed, 2, ReadOpt{})); err == nil {
		t.Fatalf("expected invalid_type for a scalar element")
	}
	all, err = ReadAll(ArrayBatches(context.Background(), mixed, 2, ReadOpt{OnError: OnErrorIgnore}))
	if err != nil || len(all) != 1 {
		t.Fatalf("ignore policy: %v %v", all, err)
	}
}

func TestDispatch(t *testing.T) {
	for _, ext := range []string{"ndjson", ".nl", "JSONL", "csv", "xlsx", "xlsm", "yaml", "yml", "json"} {
		if _, err := ReaderForExtension(ext); err != nil {
			t.Fatalf("%s: %v", ext, err)
		}
	}
	if _, err := ReaderForExtension("xls"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("xls: expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := ReaderForFileType("parquet"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}

	p := writeFile(t, "rows.csv", "a\n1\n")
	batches, err := BatchesFromFile(context.Background(), p, 5, ReadOpt{})
	if err != nil {
		t.Fatalf("BatchesFromFile: %v", err)
	}
	all, err := ReadAll(batches)
	if err != nil || len(all) != 1 || all[0]["a"] != "1" {
		t.Fatalf("csv dispatch: %v %v", all, err)
	}
}

func TestParseOnError(t *testing.T) {
	for in, want := range map[string]OnError{"": OnErrorRaise, "LOG": OnErrorLog, "ignore": OnErrorIgnore} {
		got, err := ParseOnError(in)
		if err != nil || got != want {
			t.Fatalf("%q: %v %v", in, got, err)
		}
	}
	if _, err := ParseOnError("panic"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseCell(t *testing.T) {
	cases := []struct {
		in   string
		want any
	}{
		{"", nil},
		{"TRUE", true},
		{"False", false},
		{"42", "42"},
		{"1.5", "1.5"},
		{"plain", "plain"},
		{`[1, "a"]`, []any{1.0, "a"}},
		{`{"k": null}`, map[string]any{"k": nil}},
		{"[broken", "[broken"},
		{"{not json}", "{not json}"},
	}
	for _, c := range cases {
		if diff := cmp.Diff(c.want, ParseCell(c.in)); diff != "" {
			t.Fatalf("ParseCell(%q) mismatch (-want +got):\n%s", c.in, diff)
		}
	}
}
