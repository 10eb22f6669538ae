package ejson

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Loads decodes one JSON value from data. Objects decode to map[string]any,
// arrays to []any. When decoding fails and opts carry an ErrorHandler, its
// result is returned instead of the failure.
func Loads(data []byte, opts ...LoadOpt) (any, error) {
	opt := lastLoadOpt(opts)
	v, err := load(data, opt)
	if err == nil {
		return v, nil
	}
	l := loadLogger()
	l.Debug().Err(err).Bytes("input", clip(data)).Msg("bad json")
	if opt.ErrorHandler != nil {
		return opt.ErrorHandler(data, err)
	}
	return nil, err
}

// LoadsString is Loads for string input.
func LoadsString(s string, opts ...LoadOpt) (any, error) { return Loads([]byte(s), opts...) }

// LoadsRecord decodes data and requires a JSON object.
func LoadsRecord(data []byte, opts ...LoadOpt) (Record, error) {
	v, err := Loads(data, opts...)
	if err != nil {
		return nil, err
	}
	r, ok := v.(map[string]any)
	if !ok {
		return nil, NewIssue(CodeInvalidType, "/", "expected object, got "+kindOf(v))
	}
	return r, nil
}

// LoadsRecords decodes data and requires a JSON array of objects.
func LoadsRecords(data []byte, opts ...LoadOpt) (Records, error) {
	v, err := Loads(data, opts...)
	if err != nil {
		return nil, err
	}
	return AsRecords(v)
}

// AsRecords converts a decoded []any of objects into Records.
func AsRecords(v any) (Records, error) {
	switch x := v.(type) {
	case Records:
		return x, nil
	case []any:
		out := make(Records, 0, len(x))
		var iss Issues
		for i, e := range x {
			r, ok := e.(map[string]any)
			if !ok {
				iss = AppendIssues(iss, Issue{Code: CodeInvalidType, Path: "/" + strconv.Itoa(i), Message: "expected object, got " + kindOf(e), Offset: -1})
				continue
			}
			out = append(out, r)
		}
		if len(iss) > 0 {
			return nil, iss
		}
		return out, nil
	}
	return nil, NewIssue(CodeInvalidType, "/", "expected array, got "+kindOf(v))
}

// Decode reads one JSON value from r. MaxBytes is enforced before decoding.
func Decode(r io.Reader, opts ...LoadOpt) (any, error) {
	opt := lastLoadOpt(opts)
	if opt.MaxBytes > 0 {
		r = io.LimitReader(r, opt.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, AppendIssues(nil, Issue{Code: CodeParseError, Path: "/", Message: err.Error(), Cause: err, Offset: -1})
	}
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, NewIssue(CodeTruncated, "/", "max bytes exceeded")
	}
	return Loads(data, opts...)
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32, json.Number:
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
