// Package log builds [slog.Handler] values for the fspath CLI.
//
// Handlers are backed by [github.com/charmbracelet/log], which renders
// human-friendly text on terminals as well as logfmt and JSON.
package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

const (
	JSONFormat   = "json"
	LogfmtFormat = "logfmt"
	TextFormat   = "text"
)

var (
	ErrUnknownFormat = errors.New("unknown log format")
	ErrUnknownLevel  = errors.New("unknown log level")
)

// CreateHandler creates a [slog.Handler] that writes to w, using the named
// level and format. An empty level means "info" and an empty format means
// [TextFormat].
func CreateHandler(w io.Writer, logLevel, logFormat string) (slog.Handler, error) {
	level, err := GetLevel(logLevel)
	if err != nil {
		return nil, err
	}

	formatter, err := GetFormatter(logFormat)
	if err != nil {
		return nil, err
	}

	return charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: formatter != charmlog.TextFormatter,
	}), nil
}

// GetLevel parses a level name. "warning", "fatal" and "trace" are accepted
// as aliases.
func GetLevel(level string) (charmlog.Level, error) {
	switch strings.ToLower(level) {
	case "":
		return charmlog.InfoLevel, nil
	case "warning":
		return charmlog.WarnLevel, nil
	case "fatal", "panic":
		// Handlers are used through slog, which has no level above error.
		return charmlog.ErrorLevel, nil
	case "trace":
		return charmlog.DebugLevel, nil
	}

	l, err := charmlog.ParseLevel(level)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}

	return l, nil
}

// GetFormatter parses a format name.
func GetFormatter(format string) (charmlog.Formatter, error) {
	switch strings.ToLower(format) {
	case TextFormat, "":
		return charmlog.TextFormatter, nil
	case LogfmtFormat:
		return charmlog.LogfmtFormatter, nil
	case JSONFormat:
		return charmlog.JSONFormatter, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
