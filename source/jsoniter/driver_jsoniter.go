// Package jsoniter provides an ejson.JSONDriver whose codec is
// json-iterator/go configured for encoding/json compatibility. Token
// streaming is delegated to go-json, since jsoniter's decoder has no token
// API.
package jsoniter

import (
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/reoring/ejson"
	drvgojson "github.com/reoring/ejson/source/gojson"
)

var api = jsoniter.ConfigCompatibleWithStandardLibrary

// Driver returns the json-iterator backed driver.
func Driver() ejson.JSONDriver { return driver{} }

type driver struct{}

func (driver) Name() string                  { return "jsoniter" }
func (driver) Marshal(v any) ([]byte, error) { return api.Marshal(v) }
func (driver) MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return api.MarshalIndent(v, prefix, indent)
}
func (driver) Unmarshal(data []byte, v any) error   { return api.Unmarshal(data, v) }
func (driver) NewEncoder(w io.Writer) ejson.Encoder { return api.NewEncoder(w) }
func (driver) NewReader(r io.Reader) ejson.Source {
	return ejson.SourceFromEngine(drvgojson.NewReader(r), ejson.NumberJSONNumber)
}
func (driver) NewBytes(b []byte) ejson.Source {
	return ejson.SourceFromEngine(drvgojson.NewBytes(b), ejson.NumberJSONNumber)
}
