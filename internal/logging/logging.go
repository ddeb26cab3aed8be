// Package logging installs the process-wide slog handler.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/thiagokokada/storygraph/internal/buildinfo"
)

type Format string

const (
	FormatText   Format = "text"
	FormatJSON   Format = "json"
	FormatLogfmt Format = "logfmt"
)

func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatLogfmt:
		return f, nil
	default:
		return "", fmt.Errorf("unknown log format %q", raw)
	}
}

func (f Format) formatter() log.Formatter {
	switch f {
	case FormatJSON:
		return log.JSONFormatter
	case FormatLogfmt:
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// New returns a slog logger writing to w. verbose enables debug records.
func New(w io.Writer, verbose bool, format Format) *slog.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          buildinfo.Name,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Formatter:       format.formatter(),
	})
	return slog.New(handler)
}

// Setup makes New(w, verbose, format) the default logger and returns it.
func Setup(w io.Writer, verbose bool, format Format) *slog.Logger {
	logger := New(w, verbose, format)
	slog.SetDefault(logger)
	return logger
}
