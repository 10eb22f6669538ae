package ejson

import (
	"errors"
	"fmt"
	"strings"

	eng "github.com/reoring/ejson/internal/engine"
)

// Issue codes.
const (
	CodeParseError      = eng.CodeParseError
	CodeDuplicateKey    = eng.CodeDuplicateKey
	CodeTruncated       = eng.CodeTruncated
	CodeInvalidType     = "invalid_type"
	CodeUnsupportedType = "unsupported_type"
	CodeMissingField    = "missing_field"
	CodeConflict        = "conflict"
	CodeInvalidArgument = "invalid_argument"
	CodeRepairFailed    = "repair_failed"
)

// Issue is one problem found while loading, encoding or transforming
// records.
type Issue struct {
	// Path is a JSON Pointer such as /items/2/price; "" and "/" name the root.
	Path    string
	Code    string
	Message string
	Hint    string
	Cause   error
	// Offset is the byte offset in the input, or -1.
	Offset int64
	Params map[string]any
}

// Issues is an error made of one or more Issue values.
type Issues []Issue

const shownIssues = 3

// Error renders the first few issues as "code at path: message".
func (iss Issues) Error() string {
	var b strings.Builder
	for i, it := range iss {
		if i == shownIssues {
			fmt.Fprintf(&b, "; ... (total %d)", len(iss))
			break
		}
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(it.Code + " at " + it.pathOrRoot())
		if it.Message != "" {
			b.WriteString(": " + it.Message)
		}
	}
	return b.String()
}

// Unwrap exposes the causes so errors.Is/As can see through Issues.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// HasCode reports whether any issue carries code.
func (iss Issues) HasCode(code string) bool {
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

func (it Issue) pathOrRoot() string {
	if it.Path == "" {
		return "/"
	}
	return it.Path
}

// AppendIssues appends more to dst. The result is never nil.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = make(Issues, 0, len(more))
	}
	return append(dst, more...)
}

// AsIssues finds Issues in err's chain.
func AsIssues(err error) (Issues, bool) {
	var iss Issues
	ok := err != nil && errors.As(err, &iss)
	return iss, ok
}

// NewIssue builds a single-issue error.
func NewIssue(code, path, msg string) Issues {
	return Issues{{Code: code, Path: path, Message: msg, Offset: -1}}
}

// toIssues maps engine and driver errors into Issues.
func toIssues(err error) Issues {
	if err == nil {
		return nil
	}
	if ii, ok := AsIssues(err); ok {
		return ii
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return AppendIssues(nil, Issue{Code: ie.Code, Path: ie.Path, Message: ie.Message, Offset: -1})
	}
	return AppendIssues(nil, Issue{Code: CodeParseError, Path: "/", Message: err.Error(), Cause: err, Offset: syntaxOffset(err)})
}
