package engine

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// sliceSource replays a fixed token sequence; Offset doubles as Location.
type sliceSource struct {
	toks []Token
	i    int
	loc  int64
}

func (s *sliceSource) NextToken() (Token, error) {
	if s.i >= len(s.toks) {
		return Token{}, io.EOF
	}
	t := s.toks[s.i]
	s.i++
	s.loc = t.Offset
	return t, nil
}

func (s *sliceSource) Location() int64 { return s.loc }

func obj(kv ...Token) []Token {
	out := []Token{{Kind: KindBeginObject}}
	out = append(out, kv...)
	return append(out, Token{Kind: KindEndObject})
}

func key(k string) Token { return Token{Kind: KindKey, String: k} }
func num(n string) Token { return Token{Kind: KindNumber, Number: n} }

func TestDecodeAny_NumberModes(t *testing.T) {
	toks := obj(key("a"), num("1.5"), key("b"), Token{Kind: KindBeginArray}, Token{Kind: KindEndArray})

	got, err := DecodeAny(&sliceSource{toks: toks}, NumberAsJSON)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]any{"a": json.Number("1.5"), "b": []any{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("json.Number mode mismatch (-want +got):\n%s", diff)
	}

	got, err = DecodeAny(&sliceSource{toks: toks}, NumberAsFloat64)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want = map[string]any{"a": 1.5, "b": []any{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("float mode mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeAny_TruncatedObject(t *testing.T) {
	toks := []Token{{Kind: KindBeginObject}, key("a"), num("1")}
	if _, err := DecodeAny(&sliceSource{toks: toks}, NumberAsJSON); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected unexpected EOF, got %v", err)
	}
}

func TestEnforcement_DuplicateError(t *testing.T) {
	toks := obj(key("a"), num("1"), key("a"), num("2"))
	src := WrapWithEnforcement(&sliceSource{toks: toks}, EnforceOptions{OnDuplicate: DupError})
	_, err := DecodeAny(src, NumberAsJSON)
	var ie IssueError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IssueError, got %v", err)
	}
	if ie.Code != CodeDuplicateKey || ie.Path != "/a" {
		t.Fatalf("unexpected issue: %+v", ie.SimpleIssue)
	}
}

func TestEnforcement_MaxDepth(t *testing.T) {
	toks := []Token{
		{Kind: KindBeginArray},
		{Kind: KindBeginArray},
		{Kind: KindBeginArray},
		{Kind: KindEndArray},
		{Kind: KindEndArray},
		{Kind: KindEndArray},
	}
	src := WrapWithEnforcement(&sliceSource{toks: toks}, EnforceOptions{MaxDepth: 2})
	_, err := DecodeAny(src, NumberAsJSON)
	var ie IssueError
	if !errors.As(err, &ie) || ie.Message != "max depth exceeded" {
		t.Fatalf("expected max depth issue, got %v", err)
	}
	if ie.Path != "/0/0" {
		t.Fatalf("unexpected path %q", ie.Path)
	}
}

func TestEnforcement_MaxBytes(t *testing.T) {
	toks := obj(key("a"), Token{Kind: KindString, String: "x", Offset: 40})
	src := WrapWithEnforcement(&sliceSource{toks: toks}, EnforceOptions{MaxBytes: 10})
	_, err := DecodeAny(src, NumberAsJSON)
	var ie IssueError
	if !errors.As(err, &ie) || ie.Code != CodeTruncated {
		t.Fatalf("expected truncated issue, got %v", err)
	}
}

func TestDetectDuplicateKeys_PathsAndLimit(t *testing.T) {
	inner := obj(key("x"), num("1"), key("x"), num("2"))
	toks := obj(key("o"))
	toks = append(toks[:len(toks)-1], inner...)
	toks = append(toks, key("y"), num("1"), key("y"), num("2"), Token{Kind: KindEndObject})

	iss, err := DetectDuplicateKeys(&sliceSource{toks: toks}, DupWarn, -1)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	var paths []string
	for _, i := range iss {
		paths = append(paths, i.Path)
	}
	if diff := cmp.Diff([]string{"/o/x", "/y"}, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}

	iss, _ = DetectDuplicateKeys(&sliceSource{toks: toks}, DupWarn, 1)
	if len(iss) != 2 || iss[1].Code != CodeTruncated {
		t.Fatalf("expected one duplicate plus truncated marker, got %+v", iss)
	}

	iss, _ = DetectDuplicateKeys(&sliceSource{toks: toks}, DupIgnore, -1)
	if iss != nil {
		t.Fatalf("ignore mode must not report, got %+v", iss)
	}
}

func TestDetectDuplicateKeys(t *testing.T) {
	toks := obj(key("a"), num("1"), key("a"), num("2"), key("b"), num("1"), key("b"), num("2"))
	got, err := DetectDuplicateKeys(&sliceSource{toks: toks}, DupWarn, 1)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	want := []SimpleIssue{
		{Code: CodeDuplicateKey, Path: "/a", Message: "key 'a' duplicated"},
		{Code: CodeTruncated, Path: "/", Message: "max issues reached"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	got, _ = DetectDuplicateKeys(&sliceSource{toks: toks[:3]}, DupWarn, -1)
	if len(got) != 1 || got[0].Code != CodeParseError {
		t.Fatalf("expected parse_error for truncated input, got %+v", got)
	}
}
