// Package json adapts encoding/json's streaming decoder to the engine's
// token interface.
package json

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	eng "github.com/reoring/ejson/internal/engine"
)

type source struct {
	dec        *json.Decoder
	keys       Keys
	lastOffset int64
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON.
func NewReader(r io.Reader) eng.TokenSource {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &source{dec: dec, lastOffset: -1}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	s.lastOffset = s.dec.InputOffset()
	return s.keys.Convert(tok, s.lastOffset), nil
}

func (s *source) Location() int64 { return s.lastOffset }

// Keys tells object keys apart from string values in a json.Token stream.
// Drivers built on other decoders translate their delimiters and numbers to
// json.Delim and json.Number first. The zero value is ready to use.
type Keys struct {
	stack []frame
}

type frame struct {
	object       bool
	expectingKey bool
}

// Convert maps a decoder token to an engine token.
func (k *Keys) Convert(tok any, off int64) eng.Token {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			k.stack = append(k.stack, frame{object: true, expectingKey: true})
			return eng.Token{Kind: eng.KindBeginObject, Offset: off}
		case '[':
			k.stack = append(k.stack, frame{})
			return eng.Token{Kind: eng.KindBeginArray, Offset: off}
		case '}':
			k.pop()
			return eng.Token{Kind: eng.KindEndObject, Offset: off}
		default:
			k.pop()
			return eng.Token{Kind: eng.KindEndArray, Offset: off}
		}
	case string:
		if n := len(k.stack); n > 0 && k.stack[n-1].expectingKey {
			k.stack[n-1].expectingKey = false
			return eng.Token{Kind: eng.KindKey, String: v, Offset: off}
		}
		k.valueDone()
		return eng.Token{Kind: eng.KindString, String: v, Offset: off}
	case bool:
		k.valueDone()
		return eng.Token{Kind: eng.KindBool, Bool: v, Offset: off}
	case json.Number:
		k.valueDone()
		return eng.Token{Kind: eng.KindNumber, Number: string(v), Offset: off}
	case float64:
		k.valueDone()
		return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: off}
	}
	k.valueDone()
	return eng.Token{Kind: eng.KindNull, Offset: off}
}

func (k *Keys) pop() {
	if n := len(k.stack); n > 0 {
		k.stack = k.stack[:n-1]
	}
	k.valueDone()
}

// valueDone flips the enclosing object back to expecting a key.
func (k *Keys) valueDone() {
	if n := len(k.stack); n > 0 && k.stack[n-1].object {
		k.stack[n-1].expectingKey = true
	}
}
