//go:build !jsonv2

package jsonv2

import "github.com/reoring/ejson"

// Driver falls back to the encoding/json driver when the jsonv2 build tag is
// not enabled.
func Driver() ejson.JSONDriver { return ejson.StdlibDriver() }
