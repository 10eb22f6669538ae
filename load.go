package ejson

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/rs/zerolog"

	eng "github.com/reoring/ejson/internal/engine"
	elog "github.com/reoring/ejson/internal/log"
)

// maxLoggedInput caps how much of a bad input is logged.
const maxLoggedInput = 256

func load(data []byte, opt LoadOpt) (any, error) {
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, NewIssue(CodeTruncated, "/", "max bytes exceeded")
	}
	eo := engineEnforceOptions(opt)
	if eo.Disabled() && opt.NumberMode == NumberFloat64 {
		var v any
		if err := CurrentJSONDriver().Unmarshal(data, &v); err != nil {
			return nil, toIssues(err)
		}
		return v, nil
	}

	src := JSONBytes(data)
	if !eo.Disabled() {
		l := loadLogger()
		src = EnforceSource(src, opt, func(it Issue) {
			l.Warn().Str("code", it.Code).Str("path", it.Path).Msg(it.Message)
		})
	}
	conv := eng.NumberAsFloat64
	if opt.NumberMode == NumberJSONNumber {
		conv = eng.NumberAsJSON
	}
	ts := engineTokenSource(src)
	v, err := eng.DecodeAny(ts, conv)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, NewIssue(CodeParseError, "/", "unexpected end of JSON input")
		}
		return nil, toIssues(err)
	}
	if _, err := ts.NextToken(); err != io.EOF {
		if err == nil {
			return nil, NewIssue(CodeParseError, "/", "invalid character after top-level value")
		}
		return nil, toIssues(err)
	}
	return v, nil
}

func loadLogger() zerolog.Logger { return elog.WithComponent("ejson") }

func clip(data []byte) []byte {
	if len(data) > maxLoggedInput {
		return data[:maxLoggedInput]
	}
	return data
}

// syntaxOffset extracts the byte offset of a syntax error, or -1.
func syntaxOffset(err error) int64 {
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return se.Offset
	}
	return -1
}
