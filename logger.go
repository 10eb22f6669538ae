package ejson

import (
	"github.com/rs/zerolog"

	elog "github.com/reoring/ejson/internal/log"
)

// SetLogger installs the logger used by ejson and its subpackages. Logging is
// disabled until this is called.
func SetLogger(l zerolog.Logger) { elog.Set(l) }

// Logger returns the logger installed with SetLogger.
func Logger() zerolog.Logger { return elog.Base() }
