// Package records holds helpers for ejson records and record lists:
// indexing by field, path access, merging, key casing, copying,
// fingerprinting and gjson queries over encoded documents.
package records

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/reoring/ejson"
	eng "github.com/reoring/ejson/internal/engine"
)

// MapOpt tunes MapByField.
type MapOpt struct {
	// IgnoreMissing skips records that lack the field instead of failing.
	IgnoreMissing bool
	// RemoveField drops the field from the indexed records. Input records
	// are never modified; a shallow copy is indexed instead.
	RemoveField bool
}

// MapByField indexes list by the value of field. The value's string form
// becomes the key, so 1 and "1" collide; later records win on collisions.
// A record without the field is a missing_field issue unless IgnoreMissing
// is set, and an object or array value is an invalid_type issue.
func MapByField(field string, list ejson.Records, opts ...MapOpt) (ejson.Record, error) {
	var opt MapOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	out := make(ejson.Record, len(list))
	err := eachKeyed(field, list, opt.IgnoreMissing, func(key string, r ejson.Record) {
		if opt.RemoveField {
			r = Omit(r, field)
		}
		out[key] = r
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GroupByField buckets list by the string form of field, keeping record
// order within each bucket. Records without the field are skipped.
func GroupByField(field string, list ejson.Records) (map[string]ejson.Records, error) {
	out := map[string]ejson.Records{}
	err := eachKeyed(field, list, true, func(key string, r ejson.Record) {
		out[key] = append(out[key], r)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func eachKeyed(field string, list ejson.Records, ignoreMissing bool, fn func(string, ejson.Record)) error {
	var iss ejson.Issues
	for i, r := range list {
		path := eng.JoinJSONPointer("/"+strconv.Itoa(i), field)
		v, ok := r[field]
		if !ok {
			if !ignoreMissing {
				iss = ejson.AppendIssues(iss, ejson.Issue{Code: ejson.CodeMissingField, Path: path, Message: "field " + strconv.Quote(field) + " is missing", Offset: -1})
			}
			continue
		}
		key, ok := scalarKey(v)
		if !ok {
			iss = ejson.AppendIssues(iss, ejson.Issue{Code: ejson.CodeInvalidType, Path: path, Message: fmt.Sprintf("cannot index by %T", v), Offset: -1})
			continue
		}
		fn(key, r)
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

func scalarKey(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case nil:
		return "null", true
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case json.Number:
		return x.String(), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	}
	return "", false
}
