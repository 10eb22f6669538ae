package repair

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

// The patterns need look-around, which RE2 lacks.
var (
	offsetRe       = regexp2.MustCompile(`offset (\d+):`, regexp2.None)
	offsetCharRe   = regexp2.MustCompile(`\(char (\d+)\)`, regexp2.None)
	unquotedKeyRe  = regexp2.MustCompile(`(?<=[{, ])'?([^'"]+)'?(?=:[ "'])`, regexp2.None)
	singleQuotedRe = regexp2.MustCompile(`(?<=: |:|\[)'([^']*)'(?=[,} \]])`, regexp2.None)
	innerQuoteRe   = regexp2.MustCompile(`(?<=[{: ,])("[^'"]*)"([^'"]*")(?=[,}: ])`, regexp2.None)
	controlCharsRe = regexp2.MustCompile(`(\n|\r|\t|\f|\v|\a)`, regexp2.None)
)

const doubleDoubleQts = `""`

// fixer rewrites a malformed document. match reports whether the pattern it
// targets occurs at all.
type fixer struct {
	name  string
	match func(string) bool
	fix   func(string) (string, error)
}

func regexFixer(name string, re *regexp2.Regexp, repl string) fixer {
	return fixer{
		name:  name,
		match: func(s string) bool { ok, err := re.MatchString(s); return err == nil && ok },
		fix:   func(s string) (string, error) { return re.Replace(s, repl, -1, -1) },
	}
}

var (
	quoteKeys         = regexFixer("quote keys", unquotedKeyRe, `"$1"`)
	doubleQuoteValues = regexFixer("double-quote string values", singleQuotedRe, `"$1"`)
	escapeInnerQuotes = regexFixer("escape inner double quotes", innerQuoteRe, `$1\"$2`)
	blankControls     = fixer{
		name:  "replace control characters",
		match: func(string) bool { return true },
		fix:   func(s string) (string, error) { return controlCharsRe.Replace(s, " ", -1, -1) },
	}
	collapseQuotes = fixer{
		name:  "collapse consecutive double quotes",
		match: func(s string) bool { return strings.Contains(s, doubleDoubleQts) },
		fix:   func(s string) (string, error) { return strings.ReplaceAll(s, doubleDoubleQts, `"`), nil },
	}
)

// offsetFromMessage extracts a character offset embedded in an error
// message, as some decoders report it ("offset 12:" or "(char 12)").
func offsetFromMessage(msg string) (int, bool) {
	for _, re := range []*regexp2.Regexp{offsetRe, offsetCharRe} {
		m, err := re.FindStringMatch(msg)
		if err != nil || m == nil {
			continue
		}
		if g := m.GroupByNumber(1); g != nil {
			if n, err := strconv.Atoi(g.String()); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}
