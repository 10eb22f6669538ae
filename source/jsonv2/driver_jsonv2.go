//go:build jsonv2

// Package jsonv2 provides an ejson.JSONDriver backed by encoding/json/v2.
// It requires building with -tags jsonv2 and GOEXPERIMENT=jsonv2.
package jsonv2

import (
	"bytes"
	"encoding/json"
	v2json "encoding/json/v2"
	"encoding/json/jsontext"
	"io"

	"github.com/reoring/ejson"
	eng "github.com/reoring/ejson/internal/engine"
	jsonsrc "github.com/reoring/ejson/source/json"
)

// Driver returns an ejson.JSONDriver backed by encoding/json/v2.
func Driver() ejson.JSONDriver { return driverV2{} }

type driverV2 struct{}

func (driverV2) Name() string { return "encoding/json/v2" }

func (driverV2) Marshal(v any) ([]byte, error) {
	return v2json.Marshal(v, v2json.Deterministic(true))
}

func (driverV2) MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return v2json.Marshal(v, v2json.Deterministic(true), jsontext.WithIndentPrefix(prefix), jsontext.WithIndent(indent))
}

func (driverV2) Unmarshal(data []byte, v any) error { return v2json.Unmarshal(data, v) }

func (driverV2) NewEncoder(w io.Writer) ejson.Encoder { return &encoder{w: w} }

func (driverV2) NewReader(r io.Reader) ejson.Source {
	return ejson.SourceFromEngine(&source{dec: jsontext.NewDecoder(r)}, ejson.NumberJSONNumber)
}

func (d driverV2) NewBytes(b []byte) ejson.Source { return d.NewReader(bytes.NewReader(b)) }

type encoder struct {
	w              io.Writer
	escapeHTML     bool
	prefix, indent string
}

func (e *encoder) SetEscapeHTML(on bool)           { e.escapeHTML = on }
func (e *encoder) SetIndent(prefix, indent string) { e.prefix, e.indent = prefix, indent }

func (e *encoder) Encode(v any) error {
	opts := []v2json.Options{v2json.Deterministic(true), jsontext.EscapeForHTML(e.escapeHTML)}
	if e.indent != "" || e.prefix != "" {
		opts = append(opts, jsontext.WithIndentPrefix(e.prefix), jsontext.WithIndent(e.indent))
	}
	if err := v2json.MarshalWrite(e.w, v, opts...); err != nil {
		return err
	}
	_, err := e.w.Write([]byte{'\n'})
	return err
}

// source streams jsontext tokens, translated to the json.Token forms the
// shared key tracker understands.
type source struct {
	dec  *jsontext.Decoder
	keys jsonsrc.Keys
	off  int64
}

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.ReadToken()
	if err != nil {
		return eng.Token{}, err
	}
	s.off = s.dec.InputOffset()
	var t any
	switch tok.Kind() {
	case '{', '}', '[', ']':
		t = json.Delim(tok.Kind())
	case '"':
		t = tok.String()
	case '0':
		t = json.Number(tok.String())
	case 't':
		t = true
	case 'f':
		t = false
	}
	return s.keys.Convert(t, s.off), nil
}

func (s *source) Location() int64 { return s.off }
