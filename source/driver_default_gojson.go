// Package source installs goccy/go-json as the default ejson driver when
// imported. It lives apart from the root package to avoid an import cycle.
package source

import (
	"github.com/reoring/ejson"
	drvgojson "github.com/reoring/ejson/source/gojson"
)

func init() { ejson.SetJSONDriver(drvgojson.Driver()) }
