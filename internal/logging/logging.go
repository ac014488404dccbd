// Package logging builds the structured logger shared by the CLI commands.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cleared-dev/analytic/internal/errs"
)

// New returns a text or JSON slog.Logger writing to w at the given level.
// Empty format and level default to text and info.
func New(w io.Writer, format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, errs.ErrConfiguration)
		}
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("log format %q: %w", format, errs.ErrConfiguration)
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
