package ejson

import (
	"encoding/json"
	"io"
	"sync"

	eng "github.com/reoring/ejson/internal/engine"
	jsonsrc "github.com/reoring/ejson/source/json"
)

// TokenKind classifies the tokens yielded by a Source.
type TokenKind = eng.Kind

const (
	TokenBeginObject = eng.KindBeginObject
	TokenEndObject   = eng.KindEndObject
	TokenBeginArray  = eng.KindBeginArray
	TokenEndArray    = eng.KindEndArray
	TokenKey         = eng.KindKey
	TokenString      = eng.KindString
	TokenNumber      = eng.KindNumber
	TokenBool        = eng.KindBool
	TokenNull        = eng.KindNull
)

// Token is one lexical JSON token. String holds keys and string values and
// Number the literal text of a number. Offset is the byte position after the
// token, or -1 when the driver cannot tell.
type Token = eng.Token

// Source abstracts over polymorphic input sources.
type Source interface {
	NextToken() (Token, error)
	NumberMode() NumberMode
	Location() int64 // byte offset; -1 if unknown
}

// Encoder is the streaming encoder a driver hands out. Encode writes one
// value followed by a newline.
type Encoder interface {
	Encode(v any) error
	SetEscapeHTML(on bool)
	SetIndent(prefix, indent string)
}

// JSONDriver is the pluggable JSON codec. The default implementation is based
// on encoding/json and may be swapped with SetJSONDriver.
type JSONDriver interface {
	Name() string
	Marshal(v any) ([]byte, error)
	MarshalIndent(v any, prefix, indent string) ([]byte, error)
	Unmarshal(data []byte, v any) error
	NewEncoder(w io.Writer) Encoder
	NewReader(r io.Reader) Source
	NewBytes(b []byte) Source
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = defaultJSONDriver{}
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the default encoding/json-backed driver.
func UseDefaultJSONDriver() {
	jsonDriverMu.Lock()
	currentJSONDriver = defaultJSONDriver{}
	jsonDriverMu.Unlock()
}

// CurrentJSONDriver returns the driver in use.
func CurrentJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

// StdlibDriver returns the encoding/json driver regardless of the global
// setting.
func StdlibDriver() JSONDriver { return defaultJSONDriver{} }

// defaultJSONDriver wraps the encoding/json implementation.
type defaultJSONDriver struct{}

func (defaultJSONDriver) Name() string                  { return "encoding/json" }
func (defaultJSONDriver) Marshal(v any) ([]byte, error) { return json.Marshal(v) }
func (defaultJSONDriver) MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(v, prefix, indent)
}
func (defaultJSONDriver) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (defaultJSONDriver) NewEncoder(w io.Writer) Encoder     { return json.NewEncoder(w) }
func (defaultJSONDriver) NewReader(r io.Reader) Source {
	return &engineSourceAdapter{inner: jsonsrc.NewReader(r), numMode: NumberJSONNumber}
}
func (defaultJSONDriver) NewBytes(b []byte) Source {
	return &engineSourceAdapter{inner: jsonsrc.NewBytes(b), numMode: NumberJSONNumber}
}

// JSONReader wraps an io.Reader as a JSON Source.
func JSONReader(r io.Reader) Source { return CurrentJSONDriver().NewReader(r) }

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source { return CurrentJSONDriver().NewBytes(b) }

// SourceFromEngine wraps an engine.TokenSource as an ejson.Source.
func SourceFromEngine(inner eng.TokenSource, mode NumberMode) Source {
	return &engineSourceAdapter{inner: inner, numMode: mode}
}

// EnforceSource wraps a Source with runtime enforcement (duplicate keys, depth,
// bytes) and forwards non-fatal issues to sink when it is non-nil.
func EnforceSource(s Source, opt LoadOpt, sink func(Issue)) Source {
	var forward func(eng.SimpleIssue)
	if sink != nil {
		forward = func(si eng.SimpleIssue) {
			sink(Issue{Path: si.Path, Code: si.Code, Message: si.Message, Offset: s.Location()})
		}
	}
	eo := engineEnforceOptions(opt)
	eo.IssueSink = forward
	return SourceFromEngine(eng.WrapWithEnforcement(engineTokenSource(s), eo), s.NumberMode())
}

func engineEnforceOptions(opt LoadOpt) eng.EnforceOptions {
	return eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
		FailFast:    opt.FailFast,
	}
}

type engineSourceAdapter struct {
	inner   eng.TokenSource
	numMode NumberMode
}

func (s *engineSourceAdapter) NextToken() (Token, error) { return s.inner.NextToken() }
func (s *engineSourceAdapter) NumberMode() NumberMode     { return s.numMode }
func (s *engineSourceAdapter) Location() int64            { return s.inner.Location() }

// engineTokenSource unwraps adapters, or bridges foreign Sources into the
// engine's token interface.
func engineTokenSource(s Source) eng.TokenSource {
	if ea, ok := s.(*engineSourceAdapter); ok {
		return ea.inner
	}
	return sourceBridge{s}
}

// sourceBridge adapts a foreign Source; its tokens are already engine tokens.
type sourceBridge struct{ s Source }

func (b sourceBridge) NextToken() (eng.Token, error) { return b.s.NextToken() }
func (b sourceBridge) Location() int64               { return b.s.Location() }
