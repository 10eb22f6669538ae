package stream

import (
	"errors"
	"fmt"
	"io"

	eng "github.com/reoring/ejson/internal/engine"
)

// ErrNotArray is returned when the stream does not start with '['.
var ErrNotArray = errors.New("stream: top-level value is not an array")

// ArrayStream walks the elements of a top-level JSON array one at a time
// without materialising the whole array.
type ArrayStream struct {
	src     eng.TokenSource
	conv    eng.NumberConv
	started bool
	done    bool
	index   int
}

// NewArrayStream prepares a stream over src, which must start with '['.
func NewArrayStream(src eng.TokenSource, conv eng.NumberConv) *ArrayStream {
	if conv == nil {
		conv = eng.NumberAsFloat64
	}
	return &ArrayStream{src: src, conv: conv}
}

// Next decodes the next element. It returns io.EOF after the closing ']'.
func (a *ArrayStream) Next() (any, error) {
	if a.done {
		return nil, io.EOF
	}
	if !a.started {
		tok, err := a.src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind != eng.KindBeginArray {
			return nil, ErrNotArray
		}
		a.started = true
	}
	tok, err := a.src.NextToken()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if tok.Kind == eng.KindEndArray {
		a.done = true
		return nil, io.EOF
	}
	v, err := eng.DecodeValue(a.src, tok, a.conv)
	if err != nil {
		return nil, fmt.Errorf("stream: element %d: %w", a.index, err)
	}
	a.index++
	return v, nil
}

// Index returns the number of elements decoded so far.
func (a *ArrayStream) Index() int { return a.index }
