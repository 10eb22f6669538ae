package engine

import (
	"strconv"
	"strings"
)

// Issue codes produced by the engine. The root package re-exports the same
// strings as Code* constants.
const (
	CodeParseError   = "parse_error"
	CodeDuplicateKey = "duplicate_key"
	CodeTruncated    = "truncated"
)

// EnforceOptions selects the checks WrapWithEnforcement applies.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	// MaxDepth caps container nesting; 0 is unlimited.
	MaxDepth int
	// MaxBytes caps the consumed input; 0 is unlimited.
	MaxBytes int64
	// IssueSink receives every issue, including the ones that are not fatal.
	IssueSink func(SimpleIssue)
	// FailFast turns warn-level duplicates into errors.
	FailFast bool
}

// Disabled reports whether the options would let every token through unchecked.
func (o EnforceOptions) Disabled() bool {
	return o.OnDuplicate == DupIgnore && o.MaxDepth == 0 && o.MaxBytes == 0
}

// IssueError is the error returned by an enforcing source for a fatal issue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Message }

// WrapWithEnforcement returns a TokenSource that passes inner's tokens through
// while checking them against opt.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	return &enforcer{inner: inner, opt: opt}
}

// scope is one open container.
type scope struct {
	object bool
	path   string
	// objects only
	seen        map[string]struct{}
	awaitingKey bool
	key         string
	// arrays only
	next int
}

type enforcer struct {
	inner  TokenSource
	opt    EnforceOptions
	scopes []scope
}

func (e *enforcer) Location() int64 { return e.inner.Location() }

func (e *enforcer) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	path := e.locate(tok)
	if err := e.track(tok, path); err != nil {
		return Token{}, err
	}
	if limit := e.opt.MaxBytes; limit > 0 {
		if off := e.inner.Location(); off > limit {
			return Token{}, IssueError{e.report(CodeTruncated, path, "max bytes exceeded")}
		}
	}
	return tok, nil
}

func (e *enforcer) top() *scope {
	if len(e.scopes) == 0 {
		return nil
	}
	return &e.scopes[len(e.scopes)-1]
}

// locate returns the JSON Pointer of tok, advancing the array index when tok
// starts an element.
func (e *enforcer) locate(tok Token) string {
	top := e.top()
	switch {
	case top == nil && tok.Kind == KindKey:
		return joinJSONPointer("", tok.String)
	case top == nil:
		return ""
	case tok.Kind == KindEndObject || tok.Kind == KindEndArray:
		return top.path
	case tok.Kind == KindKey:
		return joinJSONPointer(top.path, tok.String)
	case !top.object:
		p := joinJSONPointer(top.path, strconv.Itoa(top.next))
		top.next++
		return p
	case !top.awaitingKey:
		return joinJSONPointer(top.path, top.key)
	}
	return top.path
}

func (e *enforcer) track(tok Token, path string) error {
	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		s := scope{object: tok.Kind == KindBeginObject, path: path}
		if s.object {
			s.seen, s.awaitingKey = map[string]struct{}{}, true
		}
		e.scopes = append(e.scopes, s)
		if e.opt.MaxDepth > 0 && len(e.scopes) > e.opt.MaxDepth {
			return IssueError{e.report(CodeParseError, path, "max depth exceeded")}
		}
	case KindEndObject, KindEndArray:
		if n := len(e.scopes); n > 0 {
			e.scopes = e.scopes[:n-1]
		}
		e.valueDone()
	case KindKey:
		top := e.top()
		if top == nil || !top.object || !top.awaitingKey {
			return nil
		}
		if _, dup := top.seen[tok.String]; dup && e.opt.OnDuplicate != DupIgnore {
			si := e.report(CodeDuplicateKey, path, "key '"+tok.String+"' duplicated")
			if e.opt.OnDuplicate == DupError || e.opt.FailFast {
				return IssueError{si}
			}
		}
		top.seen[tok.String] = struct{}{}
		top.awaitingKey, top.key = false, tok.String
	default:
		e.valueDone()
	}
	return nil
}

// valueDone records that the enclosing object's pending member is complete.
func (e *enforcer) valueDone() {
	if top := e.top(); top != nil && top.object {
		top.awaitingKey, top.key = true, ""
	}
}

func (e *enforcer) report(code, path, msg string) SimpleIssue {
	if path == "" {
		path = "/"
	}
	si := SimpleIssue{Code: code, Path: path, Message: msg}
	if e.opt.IssueSink != nil {
		e.opt.IssueSink(si)
	}
	return si
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// JoinJSONPointer appends an escaped reference token to a JSON Pointer.
func JoinJSONPointer(base, token string) string { return joinJSONPointer(base, token) }

func joinJSONPointer(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}
