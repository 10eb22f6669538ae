package repair

import (
	"encoding/json"
	"errors"
	"strings"
)

// Case names a class of malformation the repairer knows how to attack.
type Case int

const (
	CaseUnknown Case = iota
	// CaseMissingName: an object key is not a double-quoted string.
	CaseMissingName
	// CaseInvalidValue: a value does not start like any JSON value.
	CaseInvalidValue
	// CaseControlCharacter: a raw control character inside a string.
	CaseControlCharacter
	// CaseMissingComma: something other than ',' or '}' follows a member,
	// usually an unescaped double quote inside a value.
	CaseMissingComma
)

func (c Case) String() string {
	switch c {
	case CaseMissingName:
		return "missing name for object member"
	case CaseInvalidValue:
		return "invalid value"
	case CaseControlCharacter:
		return "control character in string"
	case CaseMissingComma:
		return "missing comma or '}' after object member"
	}
	return "unknown"
}

// Diagnosis is the outcome of re-validating a document.
type Diagnosis struct {
	Case   Case
	Offset int   // byte offset of the offending character, -1 when unknown
	Err    error // the syntax error found, nil when the input is valid
}

// Diagnose classifies the first syntax error in data. Errors from any
// driver are re-derived with encoding/json so the classification does not
// depend on driver wording; hint is consulted for an offset only when the
// document turns out to be valid for encoding/json.
func Diagnose(data []byte, hint error) Diagnosis {
	d := Diagnosis{Offset: -1}
	var v any
	err := json.Unmarshal(data, &v)
	if err == nil {
		if hint != nil {
			if off, ok := offsetFromMessage(hint.Error()); ok {
				d.Offset = off
			}
		}
		return d
	}
	d.Err = err
	var se *json.SyntaxError
	if errors.As(err, &se) {
		// SyntaxError.Offset points just past the offending byte.
		d.Offset = int(se.Offset) - 1
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "looking for beginning of object key string"):
		d.Case = CaseMissingName
	case strings.Contains(msg, "in string literal"):
		d.Case = CaseControlCharacter
	case strings.Contains(msg, "looking for beginning of value"):
		d.Case = CaseInvalidValue
	case strings.Contains(msg, "after object key:value pair"):
		d.Case = CaseMissingComma
	}
	return d
}

// excerpt returns up to ten bytes either side of off.
func excerpt(data []byte, off int) string {
	lo, hi := max(off-10, 0), min(off+10, len(data))
	if lo >= hi {
		return ""
	}
	return string(data[lo:hi])
}

// caret marks off within excerpt(data, off).
func caret(off int) string {
	return strings.Repeat(".", min(off, 10)) + "^"
}
