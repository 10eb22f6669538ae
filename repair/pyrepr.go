package repair

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

var errNotLiteral = errors.New("not a python literal")

// parsePythonLiteral evaluates the repr() of a Python container or scalar:
// dicts, lists, tuples and sets, single- or double-quoted strings,
// True/False/None and numbers. Tuples and sets become arrays.
func parsePythonLiteral(s string, useNumber bool) (any, error) {
	p := &pyParser{src: s, useNumber: useNumber}
	p.skipSpace()
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("trailing data")
	}
	return v, nil
}

type pyParser struct {
	src       string
	pos       int
	useNumber bool
}

func (p *pyParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at %d: %s", errNotLiteral, p.pos, fmt.Sprintf(format, args...))
}

func (p *pyParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			p.pos++
		default:
			return
		}
	}
}

func (p *pyParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *pyParser) value() (any, error) {
	switch c := p.peek(); {
	case c == '{':
		return p.dictOrSet()
	case c == '[':
		p.pos++
		return p.sequence(']')
	case c == '(':
		return p.tupleOrGroup()
	case c == '\'' || c == '"':
		return p.stringLit()
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	case c >= 'A' && c <= 'Z':
		return p.constant()
	case c == 0:
		return nil, p.errorf("unexpected end of input")
	default:
		return nil, p.errorf("unexpected %q", c)
	}
}

func (p *pyParser) constant() (any, error) {
	for word, v := range map[string]any{"True": true, "False": false, "None": nil} {
		if strings.HasPrefix(p.src[p.pos:], word) && !isIdent(p.at(p.pos+len(word))) {
			p.pos += len(word)
			return v, nil
		}
	}
	return nil, p.errorf("unknown name")
}

func (p *pyParser) at(i int) byte {
	if i < len(p.src) {
		return p.src[i]
	}
	return 0
}

func isIdent(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// sequence reads comma-separated values up to end, the opening bracket
// already consumed. A trailing comma is allowed.
func (p *pyParser) sequence(end byte) ([]any, error) {
	out := []any{}
	for {
		p.skipSpace()
		if p.peek() == end {
			p.pos++
			return out, nil
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case end:
			p.pos++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or %q", end)
		}
	}
}

// tupleOrGroup treats "(x)" as x and "(x,)" or "(x, y)" as a tuple.
func (p *pyParser) tupleOrGroup() (any, error) {
	p.pos++
	p.skipSpace()
	if p.peek() == ')' {
		p.pos++
		return []any{}, nil
	}
	first, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	switch p.peek() {
	case ')':
		p.pos++
		return first, nil
	case ',':
		p.pos++
		rest, err := p.sequence(')')
		if err != nil {
			return nil, err
		}
		return append([]any{first}, rest...), nil
	}
	return nil, p.errorf("expected ',' or ')'")
}

func (p *pyParser) dictOrSet() (any, error) {
	p.pos++
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return map[string]any{}, nil
	}
	first, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() != ':' {
		// set literal
		switch p.peek() {
		case '}':
			p.pos++
			return []any{first}, nil
		case ',':
			p.pos++
			rest, err := p.sequence('}')
			if err != nil {
				return nil, err
			}
			return append([]any{first}, rest...), nil
		}
		return nil, p.errorf("expected ':', ',' or '}'")
	}

	out := map[string]any{}
	key := first
	for {
		p.pos++ // ':'
		p.skipSpace()
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		k, err := p.key(key)
		if err != nil {
			return nil, err
		}
		out[k] = v
		p.skipSpace()
		switch p.peek() {
		case '}':
			p.pos++
			return out, nil
		case ',':
			p.pos++
		default:
			return nil, p.errorf("expected ',' or '}'")
		}
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			return out, nil
		}
		if key, err = p.value(); err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ':' {
			return nil, p.errorf("expected ':'")
		}
	}
}

// key renders a dict key as a JSON object key. Strings are kept, numbers
// and constants use their JSON spelling, containers are rejected.
func (p *pyParser) key(k any) (string, error) {
	switch x := k.(type) {
	case string:
		return x, nil
	case nil:
		return "null", nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case json.Number:
		return string(x), nil
	}
	return "", p.errorf("unhashable dict key")
}

// stringLit reads one or more adjacent string literals, which Python
// concatenates.
func (p *pyParser) stringLit() (any, error) {
	var b strings.Builder
	for {
		s, err := p.str()
		if err != nil {
			return nil, err
		}
		b.WriteString(s)
		save := p.pos
		p.skipSpace()
		if c := p.peek(); c != '\'' && c != '"' {
			p.pos = save
			return b.String(), nil
		}
	}
}

func (p *pyParser) str() (string, error) {
	quote := p.src[p.pos]
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), nil
		case c == '\n':
			return "", p.errorf("newline in string")
		case c == '\\':
			if err := p.escape(&b); err != nil {
				return "", err
			}
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += size
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *pyParser) escape(b *strings.Builder) error {
	p.pos++ // backslash
	if p.pos >= len(p.src) {
		return p.errorf("unterminated escape")
	}
	c := p.src[p.pos]
	p.pos++
	switch c {
	case '\\', '\'', '"':
		b.WriteByte(c)
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case 'a':
		b.WriteByte('\a')
	case '0':
		b.WriteByte(0)
	case '\n':
		// line continuation
	case 'x', 'u', 'U':
		n := map[byte]int{'x': 2, 'u': 4, 'U': 8}[c]
		if p.pos+n > len(p.src) {
			return p.errorf("truncated \\%c escape", c)
		}
		r, err := strconv.ParseUint(p.src[p.pos:p.pos+n], 16, 32)
		if err != nil {
			return p.errorf("bad \\%c escape", c)
		}
		p.pos += n
		b.WriteRune(rune(r))
	default:
		// unknown escapes are kept verbatim
		b.WriteByte('\\')
		b.WriteByte(c)
	}
	return nil
}

func (p *pyParser) number() (any, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == '_' || c == 'e' || c == 'E' ||
			c == 'x' || c == 'X' || c == 'o' || c == 'O' || c == 'b' || c == 'B' ||
			(c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') ||
			((c == '-' || c == '+') && (p.src[p.pos-1] == 'e' || p.src[p.pos-1] == 'E')) {
			p.pos++
			continue
		}
		break
	}
	text := strings.ReplaceAll(p.src[start:p.pos], "_", "")
	if i, err := strconv.ParseInt(text, 0, 64); err == nil {
		return p.num(strconv.FormatInt(i, 10), float64(i)), nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, p.errorf("bad number %q", text)
	}
	return p.num(strconv.FormatFloat(f, 'g', -1, 64), f), nil
}

func (p *pyParser) num(text string, f float64) any {
	if p.useNumber {
		return json.Number(text)
	}
	return f
}
