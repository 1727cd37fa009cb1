// Package logging builds the structured loggers used across lagsim.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w at the named level. An empty level
// means info; an unknown one is reported by the caller's flag parsing.
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, err
		}
		lvl = parsed
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          "lagsim",
		ReportTimestamp: true,
		Level:           lvl,
	}), nil
}

// Stderr is New on standard error, falling back to info on a bad level.
func Stderr(level string) *log.Logger {
	l, err := New(os.Stderr, level)
	if err != nil {
		l, _ = New(os.Stderr, "")
		l.Warn("unknown log level, using info", "level", level)
	}
	return l
}

// Discard drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
