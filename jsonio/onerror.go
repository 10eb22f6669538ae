// Package jsonio reads and writes records as JSON, ND-JSON, CSV, Excel and
// YAML files. Readers come in two shapes: whole-file functions and batch
// iterators yielding at most a fixed number of records at a time.
package jsonio

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	elog "github.com/reoring/ejson/internal/log"
)

// OnError is the policy applied when a read or write fails.
type OnError int

const (
	// OnErrorRaise returns the error to the caller.
	OnErrorRaise OnError = iota
	// OnErrorLog logs the error and carries on. Whole-file operations stop
	// and return nil; batch readers skip the offending record.
	OnErrorLog
	// OnErrorIgnore behaves like OnErrorLog without logging.
	OnErrorIgnore
)

func (p OnError) String() string {
	switch p {
	case OnErrorLog:
		return "log"
	case OnErrorIgnore:
		return "ignore"
	}
	return "raise"
}

// ParseOnError maps "raise", "log" and "ignore" (any case) to a policy.
func ParseOnError(s string) (OnError, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "raise":
		return OnErrorRaise, nil
	case "log":
		return OnErrorLog, nil
	case "ignore":
		return OnErrorIgnore, nil
	}
	return OnErrorRaise, fmt.Errorf("jsonio: unknown on_error policy %q", s)
}

// fail applies p to a failure that ends the operation.
func (p OnError) fail(l zerolog.Logger, err error, msg string) error {
	switch p {
	case OnErrorLog:
		l.Error().Err(err).Msg(msg)
		return nil
	case OnErrorIgnore:
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// skip applies p to a failure on a single record. A nil result means the
// record should be dropped and reading continues.
func (p OnError) skip(l zerolog.Logger, err error, msg string) error {
	switch p {
	case OnErrorLog:
		l.Warn().Err(err).Msg(msg)
		return nil
	case OnErrorIgnore:
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func logger(l *zerolog.Logger) zerolog.Logger { return elog.Or(l, "jsonio") }
