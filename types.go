package ejson

// Record is a single JSON object: unique string keys mapped to
// JSON-representable values (nil, bool, numbers, string, []any, nested
// map[string]any).
type Record = map[string]any

// Records is an ordered list of records, the in-memory form of an ND-JSON
// file or of a spreadsheet's rows.
type Records = []Record

// NumberMode dictates how numbers are interpreted while loading.
type NumberMode int

const (
	NumberFloat64    NumberMode = iota // Fast mode (with potential precision loss).
	NumberJSONNumber                   // Preserve json.Number.
)

// Severity expresses the severity level for issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Strictness configures enforcement for duplicate keys.
type Strictness struct {
	OnDuplicateKey Severity // Warn or Error (duplicate JSON keys).
}

// ErrorHandler receives the raw input and the decode error when loading
// fails. Its result replaces the failed decode; returning an error keeps the
// load failed. See the repair package for the stock implementation.
type ErrorHandler func(data []byte, err error) (any, error)

// LoadOpt bundles decoding options.
type LoadOpt struct {
	Strictness Strictness
	MaxDepth   int
	MaxBytes   int64
	FailFast   bool
	NumberMode NumberMode
	// ErrorHandler is consulted when decoding fails; nil means fail.
	ErrorHandler ErrorHandler
}

// DumpOpt bundles encoding options.
type DumpOpt struct {
	// Pretty indents with two spaces.
	Pretty bool
	// Indent overrides the indent string used when Pretty is set or when
	// non-empty on its own.
	Indent string
	// AppendNewline terminates the output with '\n'.
	AppendNewline bool
	// EscapeHTML keeps '<', '>' and '&' escaped as \u003c and friends.
	EscapeHTML bool
	// ASCII escapes every non-ASCII rune as \uXXXX.
	ASCII bool
	// Default converts values the encoder cannot represent. When nil the
	// built-in DefaultEncoder is used, unless NoDefault is set.
	Default func(v any) (any, error)
	// NoDefault disables the built-in default encoder.
	NoDefault bool
}

func lastLoadOpt(opts []LoadOpt) LoadOpt {
	if len(opts) > 0 {
		return opts[len(opts)-1]
	}
	return LoadOpt{}
}

func lastDumpOpt(opts []DumpOpt) DumpOpt {
	if len(opts) > 0 {
		return opts[len(opts)-1]
	}
	return DumpOpt{}
}
