// Package repair fixes common JSON malformations: Python repr() output,
// unquoted or single-quoted keys, single-quoted string values, raw control
// characters in strings and unescaped double quotes inside values.
//
// Use Handler as an ejson.LoadOpt ErrorHandler:
//
//	v, err := ejson.Loads(data, ejson.LoadOpt{ErrorHandler: repair.Handler()})
package repair

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/reoring/ejson"
	elog "github.com/reoring/ejson/internal/log"
)

// DefaultMaxAttempts bounds the chain of successive fixes.
const DefaultMaxAttempts = 20

// ErrUnrepairable is wrapped by every repair failure.
var ErrUnrepairable = errors.New("repair: unable to fix json")

// Options configures a repair run.
type Options struct {
	// MaxAttempts bounds successive fixes; 0 means DefaultMaxAttempts.
	MaxAttempts int
	// Load decodes every candidate. Its ErrorHandler is ignored.
	Load ejson.LoadOpt
	// Logger overrides the package logger.
	Logger *zerolog.Logger
}

// Handler returns an ejson.ErrorHandler running Repair.
func Handler(opts ...Options) ejson.ErrorHandler {
	return func(data []byte, err error) (any, error) { return Repair(data, err, opts...) }
}

// Repair attempts to fix data, which failed to decode with err, and returns
// the decoded value of the first fix that succeeds. A fix that still fails
// to decode is itself repaired, up to MaxAttempts times.
func Repair(data []byte, err error, opts ...Options) (any, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.MaxAttempts <= 0 {
		opt.MaxAttempts = DefaultMaxAttempts
	}
	opt.Load.ErrorHandler = nil
	r := &repairer{opt: opt, log: elog.Or(opt.Logger, "repair")}
	return r.run(string(data), err, 0)
}

type repairer struct {
	opt Options
	log zerolog.Logger
}

func (r *repairer) run(doc string, cause error, depth int) (any, error) {
	d := Diagnose([]byte(doc), cause)
	if d.Err == nil && cause == nil {
		return r.decode(doc)
	}
	if d.Offset >= 0 {
		r.log.Info().Int("offset", d.Offset).Str("context", excerpt([]byte(doc), d.Offset)).Msg("problematic character")
		r.log.Debug().Str("caret", caret(d.Offset)).Msg("problematic character position")
	}
	if d.Err != nil {
		cause = d.Err
	}

	if depth >= r.opt.MaxAttempts {
		r.log.Error().Int("attempts", depth).Msg("too many repair attempts")
		return nil, failure(cause, fmt.Sprintf("gave up after %d attempts", depth))
	}

	var candidates []fixer
	switch d.Case {
	case CaseMissingName:
		r.log.Info().Msg("unable to decode: missing a name for an object member")
		if v, ok := r.pythonLiteral(doc); ok {
			return v, nil
		}
		candidates = []fixer{quoteKeys}
	case CaseInvalidValue:
		r.log.Info().Msg("unable to decode: invalid value")
		if v, ok := r.pythonLiteral(doc); ok {
			return v, nil
		}
		candidates = []fixer{doubleQuoteValues}
	case CaseControlCharacter:
		r.log.Info().Msg("unable to decode: control character in string")
		candidates = []fixer{blankControls}
	case CaseMissingComma:
		r.log.Info().Msg("unable to decode: missing a comma or '}' after an object member")
		candidates = []fixer{collapseQuotes, escapeInnerQuotes}
	default:
		r.log.Error().Err(cause).Msg("unable to fix json: unknown error")
		return nil, failure(cause, "unknown error")
	}

	for _, f := range candidates {
		if !f.match(doc) {
			continue
		}
		r.log.Info().Str("fix", f.name).Msg("attempting fix")
		fixed, err := f.fix(doc)
		if err != nil {
			return nil, failure(err, f.name)
		}
		v, err := r.decode(fixed)
		if err == nil {
			r.log.Info().Str("fix", f.name).Int("attempt", depth+1).Msg("successfully fixed json")
			return v, nil
		}
		if fixed == doc {
			break
		}
		return r.run(fixed, err, depth+1)
	}
	r.log.Error().Err(cause).Str("case", d.Case.String()).Msg("unable to fix json: no fix applies")
	return nil, failure(cause, "no fix applies to "+d.Case.String())
}

func (r *repairer) decode(doc string) (any, error) { return ejson.LoadsString(doc, r.opt.Load) }

func (r *repairer) pythonLiteral(doc string) (any, bool) {
	v, err := parsePythonLiteral(doc, r.opt.Load.NumberMode == ejson.NumberJSONNumber)
	if err != nil {
		return nil, false
	}
	r.log.Info().Msg("input was a python repr() string")
	return v, true
}

func failure(cause error, msg string) error {
	return ejson.AppendIssues(nil, ejson.Issue{
		Code:    ejson.CodeRepairFailed,
		Path:    "/",
		Message: msg,
		Cause:   fmt.Errorf("%w: %w", ErrUnrepairable, cause),
		Offset:  -1,
	})
}
