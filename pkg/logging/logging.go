// Package logging configures the structured logger shared by the marker
// binding, the native bridge and the CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Format selects how log lines are written.
type Format string

const (
	// FormatJSON writes one JSON object per line.
	FormatJSON Format = "json"
	// FormatConsole writes human readable, colorless lines.
	FormatConsole Format = "console"
)

// Options describe a logger.
type Options struct {
	Level  string
	Format Format
	Output io.Writer
}

var (
	mu     sync.RWMutex
	logger = zerolog.Nop()
)

// New builds a logger from opts. An empty level means "info"; an empty
// format means JSON. Output defaults to stderr.
func New(opts Options) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if s := strings.TrimSpace(opts.Level); s != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(s))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("logging: invalid level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	switch opts.Format {
	case "", FormatJSON:
	case FormatConsole:
		out = zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), fmt.Errorf("logging: unknown format %q", opts.Format)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// SetLogger installs l as the package-wide logger.
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	logger = l
	mu.Unlock()
}

// Logger returns the package-wide logger. It discards everything until
// SetLogger is called.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Component returns the package-wide logger tagged with a component field.
func Component(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}
