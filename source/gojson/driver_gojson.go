// Package gojson provides an ejson.JSONDriver backed by goccy/go-json.
package gojson

import (
	"bytes"
	"encoding/json"
	"io"

	j "github.com/goccy/go-json"

	"github.com/reoring/ejson"
	eng "github.com/reoring/ejson/internal/engine"
	jsonsrc "github.com/reoring/ejson/source/json"
)

// Driver returns an ejson.JSONDriver backed by goccy/go-json.
func Driver() ejson.JSONDriver { return driverGoJSON{} }

type driverGoJSON struct{}

func (driverGoJSON) Name() string                  { return "go-json" }
func (driverGoJSON) Marshal(v any) ([]byte, error) { return j.Marshal(v) }
func (driverGoJSON) MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return j.MarshalIndent(v, prefix, indent)
}
func (driverGoJSON) Unmarshal(data []byte, v any) error   { return j.Unmarshal(data, v) }
func (driverGoJSON) NewEncoder(w io.Writer) ejson.Encoder { return j.NewEncoder(w) }
func (driverGoJSON) NewReader(r io.Reader) ejson.Source {
	return ejson.SourceFromEngine(NewReader(r), ejson.NumberJSONNumber)
}
func (driverGoJSON) NewBytes(b []byte) ejson.Source {
	return ejson.SourceFromEngine(NewBytes(b), ejson.NumberJSONNumber)
}

type source struct {
	dec  *j.Decoder
	keys jsonsrc.Keys
}

// NewReader wraps an io.Reader into an engine.TokenSource using go-json's
// streaming decoder.
func NewReader(r io.Reader) eng.TokenSource {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return &source{dec: dec}
}

// NewBytes wraps a byte slice into an engine.TokenSource.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	switch v := tok.(type) {
	case j.Delim:
		tok = json.Delim(v)
	case j.Number:
		tok = json.Number(v)
	}
	return s.keys.Convert(tok, -1), nil
}

// Location is unknown: go-json's decoder does not expose its input offset.
func (s *source) Location() int64 { return -1 }
