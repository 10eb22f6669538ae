package ejson

import (
	"errors"
	"io"
	"strconv"

	eng "github.com/reoring/ejson/internal/engine"
	"github.com/reoring/ejson/internal/stream"
)

// ArrayDecoder decodes the elements of a top-level JSON array one at a
// time, so arrays larger than memory can be processed.
type ArrayDecoder struct {
	s   *stream.ArrayStream
	err error
}

// NewArrayDecoder reads a JSON array from r with the current driver.
// The enforcement rules of opts apply across the whole array; ErrorHandler
// is ignored.
func NewArrayDecoder(r io.Reader, opts ...LoadOpt) *ArrayDecoder {
	opt := lastLoadOpt(opts)
	src := JSONReader(r)
	if !engineEnforceOptions(opt).Disabled() {
		l := loadLogger()
		src = EnforceSource(src, opt, func(it Issue) {
			l.Warn().Str("code", it.Code).Str("path", it.Path).Msg(it.Message)
		})
	}
	conv := eng.NumberAsFloat64
	if opt.NumberMode == NumberJSONNumber {
		conv = eng.NumberAsJSON
	}
	return &ArrayDecoder{s: stream.NewArrayStream(engineTokenSource(src), conv)}
}

// Next returns the next element, or io.EOF after the closing bracket. After
// any other error the decoder keeps returning that error.
func (d *ArrayDecoder) Next() (any, error) {
	if d.err != nil {
		return nil, d.err
	}
	v, err := d.s.Next()
	switch {
	case err == nil:
		return v, nil
	case err == io.EOF:
		d.err = io.EOF
	case errors.Is(err, stream.ErrNotArray):
		d.err = NewIssue(CodeInvalidType, "/", "expected array")
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		d.err = NewIssue(CodeParseError, "/"+strconv.Itoa(d.s.Index()), "unexpected end of JSON input")
	default:
		d.err = toIssues(err)
	}
	return nil, d.err
}

// Index returns the number of elements decoded so far.
func (d *ArrayDecoder) Index() int { return d.s.Index() }
