package records

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/reoring/ejson"
)

// ErrPathNotFound is returned by Raw accessors when path matches nothing.
var ErrPathNotFound = errors.New("records: path not found")

// Raw is an encoded JSON document queried in place with gjson path syntax
// ("a.b.0.c", "items.#.id", "name|@reverse"), without decoding the whole
// document.
type Raw []byte

// Valid reports whether r is well-formed JSON.
func (r Raw) Valid() bool { return gjson.ValidBytes(r) }

func (r Raw) lookup(path string) (gjson.Result, error) {
	res := gjson.GetBytes(r, path)
	if !res.Exists() {
		return res, fmt.Errorf("%w: %q", ErrPathNotFound, path)
	}
	return res, nil
}

// Get decodes the value at path with the current driver.
func (r Raw) Get(path string, opts ...ejson.LoadOpt) (any, error) {
	res, err := r.lookup(path)
	if err != nil {
		return nil, err
	}
	return ejson.LoadsString(res.Raw, opts...)
}

func (r Raw) String(path string) (string, error) {
	res, err := r.lookup(path)
	if err != nil {
		return "", err
	}
	return res.String(), nil
}

// Int truncates non-integral numbers; strings holding numbers convert.
func (r Raw) Int(path string) (int64, error) {
	res, err := r.lookup(path)
	if err != nil {
		return 0, err
	}
	return res.Int(), nil
}

func (r Raw) Float(path string) (float64, error) {
	res, err := r.lookup(path)
	if err != nil {
		return 0, err
	}
	return res.Float(), nil
}

func (r Raw) Bool(path string) (bool, error) {
	res, err := r.lookup(path)
	if err != nil {
		return false, err
	}
	return res.Bool(), nil
}

func (r Raw) StringOrDefault(path, def string) string {
	if s, err := r.String(path); err == nil {
		return s
	}
	return def
}

func (r Raw) IntOrDefault(path string, def int64) int64 {
	if n, err := r.Int(path); err == nil {
		return n
	}
	return def
}

func (r Raw) FloatOrDefault(path string, def float64) float64 {
	if f, err := r.Float(path); err == nil {
		return f
	}
	return def
}

func (r Raw) BoolOrDefault(path string, def bool) bool {
	if b, err := r.Bool(path); err == nil {
		return b
	}
	return def
}
