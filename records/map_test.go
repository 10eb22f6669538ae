package records

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/ejson"
)

func TestMapByField(t *testing.T) {
	list := ejson.Records{
		{"id": "a", "v": 1.0},
		{"id": 2.0, "v": 2.0},
		{"v": 3.0},
		{"id": "a", "v": 4.0},
	}
	got, err := MapByField("id", list, MapOpt{IgnoreMissing: true, RemoveField: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := ejson.Record{"a": ejson.Record{"v": 4.0}, "2": ejson.Record{"v": 2.0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if _, ok := list[0]["id"]; !ok {
		t.Fatalf("input record was modified")
	}

	kept, err := MapByField("id", list[:2])
	if err != nil || kept["a"].(ejson.Record)["id"] != "a" {
		t.Fatalf("field should be kept: %v %v", kept, err)
	}
}

func TestMapByField_Issues(t *testing.T) {
	_, err := MapByField("id", ejson.Records{{"id": "a"}, {"v": 1.0}})
	iss, ok := ejson.AsIssues(err)
	if !ok || iss[0].Code != ejson.CodeMissingField || iss[0].Path != "/1/id" {
		t.Fatalf("expected missing_field at /1/id, got %v", err)
	}

	_, err = MapByField("id", ejson.Records{{"id": []any{1.0}}})
	iss, ok = ejson.AsIssues(err)
	if !ok || iss[0].Code != ejson.CodeInvalidType || iss[0].Path != "/0/id" {
		t.Fatalf("expected invalid_type at /0/id, got %v", err)
	}
}

func TestGroupByField(t *testing.T) {
	list := ejson.Records{{"k": true, "n": 1.0}, {"k": false}, {"n": 2.0}, {"k": true, "n": 3.0}}
	got, err := GroupByField("k", list)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]ejson.Records{
		"true":  {list[0], list[3]},
		"false": {list[1]},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
