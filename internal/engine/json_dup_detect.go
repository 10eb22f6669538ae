package engine

import (
	"errors"
	"io"
)

// DuplicateStrictness controls duplicate key handling in detection helpers.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// SimpleIssue is a minimal issue representation used by internal helpers.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
}

// DetectDuplicateKeys drains src and reports every duplicated object key
// with its JSON Pointer. DupIgnore leaves src untouched and reports nothing.
// maxIssues < 0 is unlimited, 0 reports nothing, and a positive value caps
// the list, after which one truncated issue is appended. DupError stops at
// the first duplicate. Input that ends inside a container, or fails to
// tokenize, ends the scan with a parse_error issue.
func DetectDuplicateKeys(src TokenSource, onDup DuplicateStrictness, maxIssues int) ([]SimpleIssue, error) {
	if onDup == DupIgnore {
		return nil, nil
	}
	c := issueCollector{limit: maxIssues}
	enforced := WrapWithEnforcement(src, EnforceOptions{OnDuplicate: onDup, IssueSink: c.add})

	open := 0
	for {
		tok, err := enforced.NextToken()
		if err == io.EOF && open == 0 {
			break
		}
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		if err != nil {
			var ie IssueError
			if !errors.As(err, &ie) {
				c.add(SimpleIssue{Code: CodeParseError, Path: "/", Message: err.Error()})
			}
			break
		}
		switch tok.Kind {
		case KindBeginObject, KindBeginArray:
			open++
		case KindEndObject, KindEndArray:
			open--
		}
	}
	return c.out, nil
}

type issueCollector struct {
	limit int
	out   []SimpleIssue
	full  bool
}

func (c *issueCollector) add(si SimpleIssue) {
	if c.limit == 0 || c.full {
		return
	}
	c.out = append(c.out, si)
	if c.limit > 0 && len(c.out) >= c.limit {
		c.out = append(c.out, SimpleIssue{Code: CodeTruncated, Path: "/", Message: "max issues reached"})
		c.full = true
	}
}
