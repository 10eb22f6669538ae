package ejson

import (
	"io"

	eng "github.com/reoring/ejson/internal/engine"
)

// DetectJSONDuplicateKeysBytes reports duplicate object keys in data.
// maxIssues < 0 means unlimited, 0 disables reporting, and a positive limit
// appends a truncated issue once reached. A parse error ends the scan and is
// reported as a parse_error issue.
func DetectJSONDuplicateKeysBytes(data []byte, strict Strictness, maxIssues int) (Issues, error) {
	return detectDuplicates(JSONBytes(data), strict, maxIssues)
}

// DetectJSONDuplicateKeysReader is the io.Reader variant of
// DetectJSONDuplicateKeysBytes.
func DetectJSONDuplicateKeysReader(r io.Reader, strict Strictness, maxIssues int) (Issues, error) {
	return detectDuplicates(JSONReader(r), strict, maxIssues)
}

func detectDuplicates(src Source, strict Strictness, maxIssues int) (Issues, error) {
	si, err := eng.DetectDuplicateKeys(engineTokenSource(src), toEngineDup(strict.OnDuplicateKey), maxIssues)
	if err != nil {
		return nil, err
	}
	return fromEngineIssues(si), nil
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Error:
		return eng.DupError
	case Warn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}

func fromEngineIssues(si []eng.SimpleIssue) Issues {
	var iss Issues
	for _, s := range si {
		iss = AppendIssues(iss, Issue{Code: s.Code, Path: s.Path, Message: s.Message, Offset: -1})
	}
	return iss
}
