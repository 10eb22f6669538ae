// Package log holds the zerolog logger shared by ejson packages.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for configuring the shared logger.
type Config struct {
	Level   string    // optional log level ("debug", "info", etc.)
	Output  io.Writer // optional writer (defaults to os.Stderr)
	Console bool      // human-readable console output instead of JSON lines
}

var (
	mu   sync.RWMutex
	base = zerolog.Nop()
)

// Configure builds a logger from cfg and installs it as the base logger.
// Library code never calls this; the CLI does.
func Configure(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	} else if env := os.Getenv("EJSON_LOG_LEVEL"); env != "" {
		if parsed, err := zerolog.ParseLevel(env); err == nil {
			level = parsed
		}
	}

	writer := cfg.Output
	if writer == nil {
		writer = os.Stderr
	}
	if cfg.Console {
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	Set(l)
	return l
}

// Set replaces the base logger.
func Set(l zerolog.Logger) {
	mu.Lock()
	base = l
	mu.Unlock()
}

// Base returns the current base logger. It is disabled until Set or
// Configure is called.
func Base() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// WithComponent returns a child logger annotated with the given component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}

// Or returns *l when non-nil, otherwise the component logger.
func Or(l *zerolog.Logger, component string) zerolog.Logger {
	if l != nil {
		return *l
	}
	return WithComponent(component)
}
